// internal/models/product.go
package models

type Product struct {
	BaseModel
	Title       string  `json:"title" gorm:"size:255;not null"`
	Description string  `json:"description" gorm:"type:text;not null"`
	Price       float64 `json:"price" gorm:"type:decimal(10,2);not null"`
	Count       int     `json:"count" gorm:"not null;default:0"`
	Visible     bool    `json:"visible" gorm:"not null"`
	TypeID      uint    `json:"typeId" gorm:"not null;index"`

	// Relationships
	Type           *Type           `json:"type,omitempty" gorm:"foreignKey:TypeID"`
	Characteristic *Characteristic `json:"characteristic,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Media          []Media         `json:"media,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

type Type struct {
	BaseModel
	Value string `json:"value" gorm:"uniqueIndex;size:100;not null"`
	Name  string `json:"name" gorm:"size:255;not null"`
}

type Characteristic struct {
	BaseModel
	ProductID uint     `json:"productId" gorm:"not null;uniqueIndex"`
	Height    *float64 `json:"height"`
	Weight    *float64 `json:"weight"`
	Material  *string  `json:"material" gorm:"size:255"`
	Wood      *string  `json:"wood" gorm:"size:255"`
	Master    *string  `json:"master" gorm:"size:255"`
	Country   *string  `json:"country" gorm:"size:255"`
	Parts     *string  `json:"parts" gorm:"size:255"`
}

type Media struct {
	BaseModel
	ProductID uint    `json:"productId" gorm:"not null;index"`
	Type      string  `json:"type" gorm:"size:20;not null"`
	Name      string  `json:"name" gorm:"type:text;not null"`
	PublicID  *string `json:"publicId" gorm:"size:255;index"`
}
