package model

import "time"

// Category is a taxonomy row for browsing. The Type field ties it back to the
// product category enum.
type Category struct {
	ID          string
	Name        string
	Slug        string
	Type        ProductCategory
	Description string
	Icon        string
	IsActive    bool
	Order       int
	CreatedAt   time.Time
}
