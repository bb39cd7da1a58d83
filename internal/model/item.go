package model

import "github.com/shopspring/decimal"

// Item is one buy/sell transaction for a tracked good. Timestamps are epoch
// milliseconds throughout.
type Item struct {
	ID        string              `json:"id"`
	OwnerID   string              `json:"ownerId"`
	Name      string              `json:"name"`
	BuyPrice  decimal.Decimal     `json:"buyPrice"`
	BuyDate   int64               `json:"buyDate"`
	SoldPrice decimal.NullDecimal `json:"soldPrice"`
	SoldDate  *int64              `json:"soldDate"`
	ImageURL  string              `json:"imageUrl"`
	HasImage  bool                `json:"hasImage"`
	IsDeleted bool                `json:"isDeleted"`
	DeletedAt *int64              `json:"deletedAt"`
	CreatedAt int64               `json:"createdAt"`
	UpdatedAt int64               `json:"updatedAt"`
}

// Sold reports whether both sold fields are set.
func (i *Item) Sold() bool {
	return i.SoldPrice.Valid && i.SoldDate != nil
}

// Profit returns soldPrice - buyPrice, or zero for unsold items.
func (i *Item) Profit() decimal.Decimal {
	if !i.Sold() {
		return decimal.Zero
	}
	return i.SoldPrice.Decimal.Sub(i.BuyPrice)
}

// ItemInput holds item fields as submitted by a client, before validation.
type ItemInput struct {
	Name      Raw `json:"name"`
	BuyPrice  Raw `json:"buyPrice"`
	BuyDate   Raw `json:"buyDate"`
	SoldPrice Raw `json:"soldPrice"`
	SoldDate  Raw `json:"soldDate"`
	ImageURL  Raw `json:"imageUrl"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	TotalItems  int  `json:"totalItems"`
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	PageSize    int  `json:"pageSize"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// NewPagination computes page metadata for total items split into pages of size.
func NewPagination(total, page, size int) Pagination {
	pages := 0
	if size > 0 {
		pages = (total + size - 1) / size
	}
	return Pagination{
		TotalItems:  total,
		CurrentPage: page,
		TotalPages:  pages,
		PageSize:    size,
		HasNextPage: page < pages,
		HasPrevPage: page > 1,
	}
}
