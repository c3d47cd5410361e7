//go:build !integration

package usecase

import (
	"context"
	"errors"
	"testing"

	"webharbour/internal/domain/model"
	"webharbour/internal/domain/ports/repository"
)

func TestEntitlementUseCase_Grant(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*memUserRepo, *memProductRepo, EntitlementUseCase) {
		t.Helper()
		users := newMemUserRepo()
		products := newMemProductRepo()
		p, err := model.NewProduct("prod-1", "Indie Game", "A game", model.CategoryGame, "dev-1", 999, "t.png", "g.zip", 2048)
		if err != nil {
			t.Fatalf("building product: %v", err)
		}
		_ = products.Save(ctx, repository.NoTX, p)
		return users, products, NewEntitlementUseCase(users, products)
	}

	t.Run("should add the purchase and bump downloads", func(t *testing.T) {
		users, products, uc := setup(t)

		if err := uc.Grant(ctx, repository.NoTX, "user-1", "prod-1"); err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}

		owned, _ := users.HasPurchase(ctx, repository.NoTX, "user-1", "prod-1")
		if !owned {
			t.Error("expected the purchase to be recorded")
		}
		p, _ := products.FindByID(ctx, repository.NoTX, "prod-1")
		if p.Downloads != 1 {
			t.Errorf("expected downloads 1, got %d", p.Downloads)
		}
	})

	t.Run("should be a set: repeat grants keep a single ownership row", func(t *testing.T) {
		users, _, uc := setup(t)

		if err := uc.Grant(ctx, repository.NoTX, "user-1", "prod-1"); err != nil {
			t.Fatalf("first grant: %v", err)
		}
		if err := uc.Grant(ctx, repository.NoTX, "user-1", "prod-1"); err != nil {
			t.Fatalf("second grant: %v", err)
		}

		ids, _ := users.ListPurchases(ctx, repository.NoTX, "user-1")
		if len(ids) != 1 {
			t.Fatalf("expected one owned product, got %v", ids)
		}
	})

	t.Run("should surface a failing purchase insert", func(t *testing.T) {
		users, products, uc := setup(t)
		users.purchErr = errors.New("insert failed")

		err := uc.Grant(ctx, repository.NoTX, "user-1", "prod-1")

		if err == nil {
			t.Fatal("expected an error")
		}
		p, _ := products.FindByID(ctx, repository.NoTX, "prod-1")
		if p.Downloads != 0 {
			t.Errorf("downloads must not move when the purchase insert fails, got %d", p.Downloads)
		}
	})

	t.Run("should surface a failing counter update", func(t *testing.T) {
		_, products, uc := setup(t)
		products.incrErr = errors.New("update failed")

		if err := uc.Grant(ctx, repository.NoTX, "user-1", "prod-1"); err == nil {
			t.Fatal("expected an error")
		}
	})
}
