package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Listing struct {
	ID        string          `gorm:"primaryKey;size:64;not null" json:"id"`
	Title     string          `gorm:"size:255;not null" json:"title"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"` // major currency unit
	AssetKey  string          `gorm:"size:512;uniqueIndex;not null" json:"file_path"`
	CreatedAt time.Time       `gorm:"index" json:"created_at"`
}

// Entitlement grants a user access to one listing. At most one row per (user, listing).
type Entitlement struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"size:64;not null;uniqueIndex:idx_entitlement_user_listing,priority:1" json:"user_id"`
	ListingID string    `gorm:"size:64;not null;uniqueIndex:idx_entitlement_user_listing,priority:2;index" json:"note_id"`
	PaymentID string    `gorm:"size:64;not null;index" json:"payment_id"`
	CreatedAt time.Time `json:"created_at"`
}

type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}

// AllTables lists every table for AutoMigrate.
func AllTables() []any {
	return []any{
		&Listing{},
		&Entitlement{},
		&WebhookEvent{},
	}
}
