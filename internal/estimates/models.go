package estimates

import "time"

// Estimate is a committed, tenant-scoped estimate record.
//
// Multi-tenant invariant: CompanyID is required on every row.
//
// Once created (typically by the review/accept workflow) the record is owned
// by the wider application; the processing pipeline never mutates it again.
type Estimate struct {
	ID             string `json:"id" db:"id"`
	CompanyID      string `json:"company_id" db:"company_id"`
	CustomerID     string `json:"customer_id,omitempty" db:"customer_id"`
	ConsultationID string `json:"consultation_id,omitempty" db:"consultation_id"`

	Title       string       `json:"title" db:"title"`
	ServiceType string       `json:"service_type" db:"service_type"`
	Pricing     PricingModel `json:"pricing_model" db:"pricing_model"`

	LineItems []LineItem `json:"line_items"`
	Resources Resources  `json:"resources"`

	CustomerNotes string `json:"customer_notes,omitempty" db:"customer_notes"`
	InternalNotes string `json:"internal_notes,omitempty" db:"internal_notes"`

	Status EstimateStatus `json:"status" db:"status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type EstimateStatus string

const (
	EstimateStatusDraft    EstimateStatus = "draft"
	EstimateStatusSent     EstimateStatus = "sent"
	EstimateStatusApproved EstimateStatus = "approved"
	EstimateStatusDeclined EstimateStatus = "declined"
)

type PricingModel string

const (
	PricingFlat       PricingModel = "flat"
	PricingHourly     PricingModel = "hourly"
	PricingPerService PricingModel = "per_service"
)

// LineItem is a single billable line on an estimate.
//
// Invariant: Quantity and UnitPriceMinor are non-negative. The line total is
// always computed as Quantity x UnitPriceMinor; it is never stored as a field
// that could drift from its factors.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`

	// UnitPriceMinor is the unit price in minor units (cents).
	UnitPriceMinor int64 `json:"unit_price_minor"`

	Category string `json:"category,omitempty"`

	// CatalogRef optionally links the line to a price-book entry.
	CatalogRef string `json:"catalog_ref,omitempty"`

	Taxable   bool   `json:"taxable"`
	UnitLabel string `json:"unit_label,omitempty"`
}

// TotalMinor is the line total in minor units, rounded half-up on fractional
// quantities.
func (li LineItem) TotalMinor() int64 {
	return int64(li.Quantity*float64(li.UnitPriceMinor) + 0.5)
}

// Resources captures the crew/equipment plan behind an estimate.
type Resources struct {
	TruckCount     int     `json:"truck_count"`
	TeamSize       int     `json:"team_size"`
	EstimatedHours float64 `json:"estimated_hours"`

	// HourlyRateMinor applies when the pricing model is hourly.
	HourlyRateMinor int64 `json:"hourly_rate_minor"`
}

// Draft is an AI-proposed estimate awaiting human review. It shares the line
// item and resource shapes with Estimate but carries no identity or tenancy;
// it only becomes durable when the reviewer accepts it.
type Draft struct {
	LineItems     []LineItem   `json:"line_items"`
	Resources     Resources    `json:"resources"`
	Pricing       PricingModel `json:"pricing_model"`
	CustomerNotes string       `json:"customer_notes,omitempty"`
	InternalNotes string       `json:"internal_notes,omitempty"`
	ServiceType   string       `json:"service_type,omitempty"`
}

// Validate rejects drafts that violate the non-negative quantity/price
// invariant. Generation output is validated before it is stored.
func (d Draft) Validate() error {
	for _, li := range d.LineItems {
		if li.Quantity < 0 {
			return ErrNegativeQuantity
		}
		if li.UnitPriceMinor < 0 {
			return ErrNegativePrice
		}
	}
	return nil
}

// TotalMinor sums line totals. Hourly pricing additionally bills estimated
// hours at the hourly rate when no line items carry the labor.
func (d Draft) TotalMinor() int64 {
	var total int64
	for _, li := range d.LineItems {
		total += li.TotalMinor()
	}
	if d.Pricing == PricingHourly && len(d.LineItems) == 0 {
		total += int64(d.Resources.EstimatedHours*float64(d.Resources.HourlyRateMinor) + 0.5)
	}
	return total
}
