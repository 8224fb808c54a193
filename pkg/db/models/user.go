package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/velorashop/storefront-backend/pkg/enums"
)

// User is a storefront account. Carts, wishlists and orders hang off it.
type User struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string           `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string           `gorm:"column:password_hash;not null"`
	FullName     string           `gorm:"column:full_name;not null"`
	Role         enums.MemberRole `gorm:"column:role;not null;default:'customer'"`
	IsVerified   bool             `gorm:"column:is_verified;not null;default:false"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
