package models

import "time"

// Product event types, also used as routing keys.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// ProductEvent announces a change to a stored product.
type ProductEvent struct {
	Type       string      `json:"type"`
	ProductID  string      `json:"productId"`
	Product    *ProductDTO `json:"product,omitempty"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// NewProductEvent builds an event for p. Deletions carry only the id.
func NewProductEvent(eventType string, p *Product) ProductEvent {
	event := ProductEvent{
		Type:       eventType,
		ProductID:  p.ID,
		OccurredAt: time.Now().UTC(),
	}
	if eventType != EventProductDeleted {
		dto := NewProductDTO(p)
		event.Product = &dto
	}
	return event
}
