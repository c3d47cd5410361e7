package model

import (
	"time"

	"github.com/google/uuid"

	"webharbour/internal/domain"
)

// Review is one user's rating of one product. The (ProductID, UserID) pair is
// unique at the storage layer.
type Review struct {
	ID        string
	ProductID string
	UserID    string
	Rating    int // 1..5
	Title     string
	Comment   string
	CreatedAt time.Time
}

func NewReview(id, productID, userID string, rating int, title, comment string) (*Review, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if productID == "" || userID == "" || comment == "" {
		return nil, domain.ErrInvalidArgument
	}
	if rating < 1 || rating > 5 {
		return nil, domain.ErrInvalidArgument
	}
	return &Review{
		ID:        id,
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Title:     title,
		Comment:   comment,
		CreatedAt: time.Now(),
	}, nil
}
