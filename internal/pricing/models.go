package pricing

import "time"

// Price book entries are tenant-scoped (company_id required everywhere).
// Amounts are expressed in minor units (e.g., cents) using int64.

type PricingStatus string

const (
	PricingStatusActive  PricingStatus = "active"
	PricingStatusRetired PricingStatus = "retired"
)

// CatalogItem is one priced service or material in a company's price book.
// Estimate line items reference entries by Ref (LineItem.CatalogRef).
type CatalogItem struct {
	ID        string `json:"id" db:"id"`
	CompanyID string `json:"company_id" db:"company_id"`

	// Ref is the stable lookup key line items carry (e.g., "labor.plumbing",
	// "material.water_heater_40gal"). Unique per company per effective window.
	Ref string `json:"ref" db:"ref"`

	Name string `json:"name" db:"name"`

	// ServiceType groups entries by trade (plumbing, hvac, electrical, ...).
	ServiceType string `json:"service_type,omitempty" db:"service_type"`

	// Category examples: labor, material, equipment, fee.
	Category string `json:"category,omitempty" db:"category"`

	// Unit examples: hour, each, sqft.
	Unit string `json:"unit,omitempty" db:"unit"`

	Currency       string `json:"currency" db:"currency"`
	UnitPriceMinor int64  `json:"unit_price_minor" db:"unit_price_minor"`

	// Effective window for the price.
	EffectiveFrom time.Time  `json:"effective_from" db:"effective_from"`
	EffectiveTo   *time.Time `json:"effective_to,omitempty" db:"effective_to"`

	Status PricingStatus `json:"status" db:"status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
