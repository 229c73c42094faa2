// internal/models/cart.go
package models

// Cart.TotalAmount is materialized by the cart service and is never bound from request input.
type Cart struct {
	BaseModel
	UserID       *uint   `json:"userId" gorm:"uniqueIndex"`
	SessionToken *string `json:"sessionToken" gorm:"uniqueIndex;size:64"`
	TotalAmount  float64 `json:"totalAmount" gorm:"type:decimal(12,2);not null;default:0"`

	// Relationships
	Items []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

type CartItem struct {
	BaseModel
	CartID    uint `json:"cartId" gorm:"not null;uniqueIndex:idx_cart_items_cart_product"`
	ProductID uint `json:"productId" gorm:"not null;uniqueIndex:idx_cart_items_cart_product"`
	Quantity  int  `json:"quantity" gorm:"not null"`

	// Relationships
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
