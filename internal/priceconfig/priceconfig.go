package priceconfig

import (
	"time"

	"github.com/wedflix/command-center/internal/docstore"
)

// Collection is the pricing configuration collection name.
const Collection = "price-configurations"

// Defaults used when seeding an empty collection.
const (
	DefaultRegularPrice = 15
	DefaultPremiumPrice = 30

	seedUserID    = "system"
	seedUserEmail = "system@command-center.com"
)

// PriceConfig is one pricing rule set for bookings. The persisted
// field names are camelCase because the collection predates this
// service.
type PriceConfig struct {
	ID           string    `json:"id"`
	RegularPrice float64   `json:"regularPrice"`
	PremiumPrice float64   `json:"premiumPrice"`
	Created      time.Time `json:"created"`
	UserID       string    `json:"userId"`
	UserEmail    string    `json:"userEmail"`
}

func fromDocument(d docstore.Document) PriceConfig {
	return PriceConfig{
		ID:           d.ID,
		RegularPrice: d.Float("regularPrice"),
		PremiumPrice: d.Float("premiumPrice"),
		Created:      d.Time("created"),
		UserID:       d.String("userId"),
		UserEmail:    d.String("userEmail"),
	}
}

func (c PriceConfig) fields() map[string]any {
	return map[string]any{
		"regularPrice": c.RegularPrice,
		"premiumPrice": c.PremiumPrice,
		"created":      c.Created,
		"userId":       c.UserID,
		"userEmail":    c.UserEmail,
	}
}
