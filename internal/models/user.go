// internal/models/user.go
package models

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var ErrNoPassword = errors.New("account has no password")

type User struct {
	BaseModel
	FullName string     `json:"fullName" gorm:"size:255;not null"`
	Email    string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Password *string    `json:"-" gorm:"size:255"`
	Role     UserRole   `json:"role" gorm:"type:varchar(10);not null;default:'USER'"`
	Verified *time.Time `json:"verified"`

	// Relationships
	VerificationCode *VerificationCode `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Orders           []Order           `json:"orders,omitempty" gorm:"foreignKey:UserID"`
}

type VerificationCode struct {
	BaseModel
	UserID uint   `json:"userId" gorm:"uniqueIndex;not null"`
	Code   string `json:"-" gorm:"size:16;not null"`
}

func (u *User) IsVerified() bool {
	return u.Verified != nil
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	hash := string(hashedPassword)
	u.Password = &hash
	return nil
}

func (u *User) CheckPassword(password string) error {
	if u.Password == nil {
		return ErrNoPassword
	}
	return bcrypt.CompareHashAndPassword([]byte(*u.Password), []byte(password))
}
