package model

import (
	"time"

	"github.com/google/uuid"

	"webharbour/internal/domain"
)

type ProductCategory string

const (
	CategoryApp      ProductCategory = "app"
	CategoryGame     ProductCategory = "game"
	CategorySoftware ProductCategory = "software"
	CategoryPDF      ProductCategory = "pdf"
	CategoryMovie    ProductCategory = "movie"
)

func ParseProductCategory(s string) (ProductCategory, error) {
	switch ProductCategory(s) {
	case CategoryApp, CategoryGame, CategorySoftware, CategoryPDF, CategoryMovie:
		return ProductCategory(s), nil
	}
	return "", domain.ErrInvalidArgument
}

type ProductStatus string

const (
	ProductStatusPending  ProductStatus = "pending"  // awaiting moderation
	ProductStatusApproved ProductStatus = "approved" // visible and purchasable
	ProductStatusRejected ProductStatus = "rejected" // rejected with a reason
)

// Rating is the denormalized review aggregate stored on the product row.
type Rating struct {
	Average float64
	Count   int
}

// Product is a downloadable good uploaded by a developer. Prices are minor
// currency units; DiscountPrice of 0 means no discount.
type Product struct {
	ID              string
	Title           string
	Description     string
	Category        ProductCategory
	DeveloperID     string
	Price           int64
	DiscountPrice   int64
	Thumbnail       string
	FileURL         string
	FileSize        int64
	Downloads       int64 // monotonically increasing sale/delivery counter
	Views           int64
	Featured        bool
	Status          ProductStatus
	RejectionReason string
	ApprovedBy      string
	ApprovedAt      *time.Time
	Rating          Rating
	Tags            []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func NewProduct(id, title, description string, category ProductCategory, developerID string, price int64, thumbnail, fileURL string, fileSize int64) (*Product, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if title == "" || description == "" || developerID == "" || thumbnail == "" || fileURL == "" {
		return nil, domain.ErrInvalidArgument
	}
	if price < 0 {
		return nil, domain.ErrInvalidArgument
	}
	if _, err := ParseProductCategory(string(category)); err != nil {
		return nil, err
	}
	now := time.Now()
	return &Product{
		ID:          id,
		Title:       title,
		Description: description,
		Category:    category,
		DeveloperID: developerID,
		Price:       price,
		Thumbnail:   thumbnail,
		FileURL:     fileURL,
		FileSize:    fileSize,
		Status:      ProductStatusPending, // all uploads go through manual review
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// SaleAmount is the amount charged at checkout.
func (p *Product) SaleAmount() int64 {
	if p.DiscountPrice > 0 && p.DiscountPrice < p.Price {
		return p.DiscountPrice
	}
	return p.Price
}

func (p *Product) Purchasable() bool {
	return p != nil && p.Status == ProductStatusApproved
}
