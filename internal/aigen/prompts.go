package aigen

import (
	"fmt"
	"strings"

	"fieldservice-platform/internal/estimates"
)

func estimatePrompt(req EstimateRequest) string {
	var b strings.Builder
	b.WriteString("You draft field-service estimates from consultation transcripts.\n")
	b.WriteString("Return ONLY a JSON object with keys: line_items (array of {description, quantity, unit_price_minor, category, catalog_ref, taxable, unit_label}), ")
	b.WriteString("resources ({truck_count, team_size, estimated_hours, hourly_rate_minor}), pricing_model (flat|hourly|per_service), ")
	b.WriteString("customer_notes, internal_notes, service_type, summary, scope_notes, pricing_notes.\n")
	b.WriteString("All prices are integer minor units (cents). Quantities and prices must be non-negative.\n\n")
	if req.CompanyName != "" {
		fmt.Fprintf(&b, "Company: %s\n", req.CompanyName)
	}
	if req.CustomerName != "" {
		fmt.Fprintf(&b, "Customer: %s\n", req.CustomerName)
	}
	if req.ServiceHint != "" {
		fmt.Fprintf(&b, "Service type hint: %s\n", req.ServiceHint)
	}
	b.WriteString("\nTranscript:\n")
	b.WriteString(req.Transcript)
	return b.String()
}

func pagePrompt(req PageRequest) string {
	var b strings.Builder
	b.WriteString("You write customer-facing page copy from a consultation transcript.\n")
	b.WriteString("Return ONLY a JSON object mapping each requested section type to a partial content object for that section.\n")
	fmt.Fprintf(&b, "Section types: %s\n", strings.Join(req.SectionTypes, ", "))
	if req.CompanyName != "" {
		fmt.Fprintf(&b, "Company: %s\n", req.CompanyName)
	}
	if req.Summary != "" {
		b.WriteString("\nConsultation summary:\n")
		b.WriteString(req.Summary)
	}
	b.WriteString("\nTranscript:\n")
	b.WriteString(req.Transcript)
	return b.String()
}

func parsePricingModel(s string) estimates.PricingModel {
	switch estimates.PricingModel(strings.ToLower(strings.TrimSpace(s))) {
	case estimates.PricingHourly:
		return estimates.PricingHourly
	case estimates.PricingPerService:
		return estimates.PricingPerService
	default:
		return estimates.PricingFlat
	}
}

func newLineItem(description string, quantity float64, unitPriceMinor int64, category, catalogRef string, taxable bool, unitLabel string) estimates.LineItem {
	// Clamp instead of dropping: a single negative value from the model
	// should not discard the whole line the reviewer could fix.
	if quantity < 0 {
		quantity = 0
	}
	if unitPriceMinor < 0 {
		unitPriceMinor = 0
	}
	return estimates.LineItem{
		Description:    description,
		Quantity:       quantity,
		UnitPriceMinor: unitPriceMinor,
		Category:       category,
		CatalogRef:     catalogRef,
		Taxable:        taxable,
		UnitLabel:      unitLabel,
	}
}
