package models

import "time"

// Product is the stored representation of a product record.
type Product struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name          string    `json:"name" gorm:"type:varchar(255);not null" validate:"notblank"`
	Description   *string   `json:"description" gorm:"type:text"`
	Price         float64   `json:"price" gorm:"not null" validate:"gte=0"`
	Category      string    `json:"category" gorm:"type:varchar(255);not null" validate:"notblank"`
	StockQuantity int       `json:"stockQuantity" gorm:"not null" validate:"gte=0"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

// ProductDTO is the wire payload exchanged with API clients.
// Pointer fields distinguish an absent (null) value from a zero value.
type ProductDTO struct {
	ID            *string  `json:"id"`
	Name          string   `json:"name" validate:"notblank"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price" validate:"required,gte=0"`
	Category      string   `json:"category" validate:"notblank"`
	StockQuantity *int     `json:"stockQuantity" validate:"required,gte=0"`
}

// ToProduct converts a validated wire payload into a record.
// The id is copied only when the client sent one.
func (d ProductDTO) ToProduct() *Product {
	p := &Product{
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
	}
	if d.ID != nil {
		p.ID = *d.ID
	}
	if d.Price != nil {
		p.Price = *d.Price
	}
	if d.StockQuantity != nil {
		p.StockQuantity = *d.StockQuantity
	}
	return p
}

// NewProductDTO converts a stored record into its wire payload.
func NewProductDTO(p *Product) ProductDTO {
	id := p.ID
	price := p.Price
	stock := p.StockQuantity
	return ProductDTO{
		ID:            &id,
		Name:          p.Name,
		Description:   p.Description,
		Price:         &price,
		Category:      p.Category,
		StockQuantity: &stock,
	}
}

// NewProductDTOs converts a slice of records. It never returns nil so an
// empty store encodes as [].
func NewProductDTOs(products []Product) []ProductDTO {
	dtos := make([]ProductDTO, 0, len(products))
	for i := range products {
		dtos = append(dtos, NewProductDTO(&products[i]))
	}
	return dtos
}
