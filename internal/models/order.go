// internal/models/order.go
package models

type Order struct {
	BaseModel
	UserID       *uint       `json:"userId" gorm:"index"`
	OrderNumber  string      `json:"orderNumber" gorm:"uniqueIndex;size:32;not null"`
	TotalAmount  float64     `json:"totalAmount" gorm:"type:decimal(12,2);not null"`
	Status       OrderStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';index"`
	TrackingCode *string     `json:"trackingCode" gorm:"size:100"`
	PaymentID    *string     `json:"paymentId" gorm:"size:255"`
	FullName     string      `json:"fullName" gorm:"size:255;not null"`
	Email        string      `json:"email" gorm:"size:255;not null"`
	Phone        string      `json:"phone" gorm:"size:50;not null"`
	Address      string      `json:"address" gorm:"type:text;not null"`
	Comment      *string     `json:"comment" gorm:"type:text"`

	// Relationships
	User  *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Items []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem.Price is the product price at the moment the order was placed.
type OrderItem struct {
	BaseModel
	OrderID   uint    `json:"orderId" gorm:"not null;index"`
	ProductID uint    `json:"productId" gorm:"not null;index"`
	Quantity  int     `json:"quantity" gorm:"not null"`
	Price     float64 `json:"price" gorm:"type:decimal(10,2);not null"`

	// Relationships
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
