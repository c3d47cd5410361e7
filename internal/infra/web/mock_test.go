//go:build !integration

package web

import (
	"context"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"webharbour/internal/domain"
	"webharbour/internal/domain/model"
	"webharbour/internal/domain/ports/adapter"
	"webharbour/internal/domain/ports/repository"
	"webharbour/internal/infra/payment"
	"webharbour/internal/usecase"
)

const testWebhookSecret = "whsec_handler_test"

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	return &l
}

// MockAuthUC implements usecase.AuthUseCase with overridable funcs.
type MockAuthUC struct {
	RegisterFunc  func(ctx context.Context, username, email, password, role string) (*model.User, error)
	LoginFunc     func(ctx context.Context, email, password string) (*model.User, error)
	MeFunc        func(ctx context.Context, userID string) (*model.User, error)
	PurchasesFunc func(ctx context.Context, userID string) ([]string, error)
}

func (m *MockAuthUC) Register(ctx context.Context, username, email, password, role string) (*model.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, username, email, password, role)
	}
	return nil, domain.ErrOperationFailed
}

func (m *MockAuthUC) Login(ctx context.Context, email, password string) (*model.User, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, domain.ErrInvalidCredentials
}

func (m *MockAuthUC) Me(ctx context.Context, userID string) (*model.User, error) {
	if m.MeFunc != nil {
		return m.MeFunc(ctx, userID)
	}
	return &model.User{ID: userID, Username: "tester", Email: "t@example.com", Role: model.RoleUser}, nil
}

func (m *MockAuthUC) UpdateProfile(ctx context.Context, userID string, username, email, avatar string) (*model.User, error) {
	return m.Me(ctx, userID)
}

func (m *MockAuthUC) Purchases(ctx context.Context, userID string) ([]string, error) {
	if m.PurchasesFunc != nil {
		return m.PurchasesFunc(ctx, userID)
	}
	return nil, nil
}

// MockProductUC implements usecase.ProductUseCase.
type MockProductUC struct {
	ListFunc func(ctx context.Context, f repository.ProductFilter, role model.Role) ([]*model.Product, int, error)
	GetFunc  func(ctx context.Context, id string) (*model.Product, error)
}

func (m *MockProductUC) List(ctx context.Context, f repository.ProductFilter, role model.Role) ([]*model.Product, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, f, role)
	}
	return nil, 0, nil
}

func (m *MockProductUC) Get(ctx context.Context, id string) (*model.Product, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *MockProductUC) Featured(ctx context.Context) ([]*model.Product, error) { return nil, nil }
func (m *MockProductUC) ByDeveloper(ctx context.Context, developerID string) ([]*model.Product, error) {
	return nil, nil
}
func (m *MockProductUC) Suggest(ctx context.Context, q string) ([]*model.Product, error) {
	return nil, nil
}
func (m *MockProductUC) Submit(ctx context.Context, caller *model.User, title, description, category string, price int64, thumbnail, fileURL string, fileSize int64, tags []string) (*model.Product, error) {
	return nil, domain.ErrForbidden
}
func (m *MockProductUC) Categories(ctx context.Context) ([]*model.Category, error) {
	return nil, nil
}

// MockOrderUC implements usecase.OrderUseCase.
type MockOrderUC struct {
	CreateIntentFunc func(ctx context.Context, userID, productID string) (adapter.Intent, error)
	RefundFunc       func(ctx context.Context, orderID string) error
}

func (m *MockOrderUC) CreateIntent(ctx context.Context, userID, productID string) (adapter.Intent, error) {
	if m.CreateIntentFunc != nil {
		return m.CreateIntentFunc(ctx, userID, productID)
	}
	return adapter.Intent{}, domain.ErrNotFound
}

func (m *MockOrderUC) ListByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	return nil, nil
}

func (m *MockOrderUC) Get(ctx context.Context, callerID string, callerRole model.Role, orderID string) (*model.Order, error) {
	return nil, domain.ErrNotFound
}

func (m *MockOrderUC) Refund(ctx context.Context, orderID string) error {
	if m.RefundFunc != nil {
		return m.RefundFunc(ctx, orderID)
	}
	return domain.ErrNotFound
}

// MockReconcileUC implements usecase.ReconcileUseCase.
type MockReconcileUC struct {
	ReconcileFunc func(ctx context.Context, event adapter.PaymentEvent) (usecase.ReconcileResult, error)
	Events        []adapter.PaymentEvent
}

func (m *MockReconcileUC) Reconcile(ctx context.Context, event adapter.PaymentEvent) (usecase.ReconcileResult, error) {
	m.Events = append(m.Events, event)
	if m.ReconcileFunc != nil {
		return m.ReconcileFunc(ctx, event)
	}
	return usecase.ReconcileCompleted, nil
}

// MockReviewUC implements usecase.ReviewUseCase.
type MockReviewUC struct {
	CreateFunc func(ctx context.Context, userID, productID string, rating int, title, comment string) (*model.Review, error)
}

func (m *MockReviewUC) Create(ctx context.Context, userID, productID string, rating int, title, comment string) (*model.Review, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, productID, rating, title, comment)
	}
	return nil, domain.ErrForbidden
}

func (m *MockReviewUC) ListByProduct(ctx context.Context, productID string) ([]*model.Review, error) {
	return nil, nil
}

// MockModerationUC implements usecase.ModerationUseCase.
type MockModerationUC struct {
	ApproveFunc func(ctx context.Context, adminID, productID string) error
}

func (m *MockModerationUC) PendingProducts(ctx context.Context, offset, limit int) ([]*model.Product, int, error) {
	return nil, 0, nil
}

func (m *MockModerationUC) Approve(ctx context.Context, adminID, productID string) error {
	if m.ApproveFunc != nil {
		return m.ApproveFunc(ctx, adminID, productID)
	}
	return nil
}

func (m *MockModerationUC) Reject(ctx context.Context, adminID, productID, reason string) error {
	return nil
}

func (m *MockModerationUC) ListUsers(ctx context.Context, offset, limit int) ([]*model.User, int, error) {
	return nil, 0, nil
}

func (m *MockModerationUC) UpdateUserRole(ctx context.Context, adminID, userID, role string) error {
	return nil
}

// MockStatsUC implements usecase.StatsUseCase.
type MockStatsUC struct{}

func (m *MockStatsUC) Dashboard(ctx context.Context) (*usecase.DashboardStats, error) {
	return &usecase.DashboardStats{}, nil
}

// serverMocks bundles the mocks a handler test may want to script.
type serverMocks struct {
	auth       *MockAuthUC
	products   *MockProductUC
	orders     *MockOrderUC
	reconcile  *MockReconcileUC
	reviews    *MockReviewUC
	moderation *MockModerationUC
	authMgr    *AuthManager
}

func newTestServer(t *testing.T) (*httptest.Server, *serverMocks) {
	t.Helper()
	m := &serverMocks{
		auth:       &MockAuthUC{},
		products:   &MockProductUC{},
		orders:     &MockOrderUC{},
		reconcile:  &MockReconcileUC{},
		reviews:    &MockReviewUC{},
		moderation: &MockModerationUC{},
		authMgr:    NewAuthManager("test-secret", time.Hour),
	}
	srv := NewServer(
		m.auth,
		m.products,
		m.orders,
		m.reconcile,
		m.reviews,
		m.moderation,
		&MockStatsUC{},
		payment.NewNoopGateway(testWebhookSecret),
		m.authMgr,
		nil, // no rate limiter in unit tests
		newTestLogger(),
	)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, m
}

func mintToken(t *testing.T, mgr *AuthManager, userID string, role model.Role) string {
	t.Helper()
	tok, err := mgr.Mint(&model.User{ID: userID, Role: role})
	if err != nil {
		t.Fatalf("minting token: %v", err)
	}
	return tok
}
