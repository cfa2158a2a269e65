// Package models defines the request and result shapes of the screening API.
//
// Request types are decoded with validation.Decode, which reads the schema, default
// and validate struct tags declared here.
package models

import "time"

// Screening types recognised by the prompt and parser. Other values are accepted.
const (
	ScreeningTypeStandard = "standard"
	ScreeningTypeEnhanced = "enhanced"
	ScreeningTypeOngoing  = "ongoing"
)

// Risk levels the model is asked to produce. Not enforced on parsed output.
const (
	RiskLevelLow      = "low"
	RiskLevelMedium   = "medium"
	RiskLevelHigh     = "high"
	RiskLevelCritical = "critical"
)

// TransactionRecord is a single financial transaction submitted for AML analysis.
type TransactionRecord struct {
	TransactionID   string    `json:"transaction_id" schema:"required" validate:"max=256"`
	Timestamp       Timestamp `json:"timestamp" schema:"required"`
	Amount          float64   `json:"amount" schema:"required"`
	Currency        string    `json:"currency" schema:"required" validate:"max=16"`
	SenderAccount   string    `json:"sender_account" schema:"required" validate:"max=256"`
	ReceiverAccount string    `json:"receiver_account" schema:"required" validate:"max=256"`
	TransactionType string    `json:"transaction_type" schema:"required" validate:"max=256"`
	SenderCountry   *string   `json:"sender_country,omitempty" validate:"omitempty,max=256"`
	ReceiverCountry *string   `json:"receiver_country,omitempty" validate:"omitempty,max=256"`
	Purpose         *string   `json:"purpose,omitempty" validate:"omitempty,max=10000"`
}

// ScreeningRequest asks for AML/KYC screening of one customer.
type ScreeningRequest struct {
	CustomerName       string             `json:"customer_name" schema:"required" validate:"max=256"`
	CustomerID         *string            `json:"customer_id,omitempty" validate:"omitempty,max=256"`
	DateOfBirth        *string            `json:"date_of_birth,omitempty" validate:"omitempty,max=32"`
	Nationality        *string            `json:"nationality,omitempty" validate:"omitempty,max=256"`
	CountryOfResidence *string            `json:"country_of_residence,omitempty" validate:"omitempty,max=256"`
	IsPEP              bool               `json:"is_pep" default:"false"`
	TransactionData    *TransactionRecord `json:"transaction_data,omitempty"`
	ScreeningType      string             `json:"screening_type" default:"standard" validate:"max=64"`
}

// IsEnhanced reports whether the request asked for enhanced screening.
// The comparison is exact; "Enhanced" is not enhanced.
func (r *ScreeningRequest) IsEnhanced() bool {
	return r.ScreeningType == ScreeningTypeEnhanced
}

// RiskIndicator is one finding reported by the screening model.
type RiskIndicator struct {
	IndicatorType  string `json:"indicator_type"`
	Severity       string `json:"severity"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

// ScreeningResult is the structured outcome of a customer screening.
type ScreeningResult struct {
	ScreeningID        string          `json:"screening_id"`
	CustomerName       string          `json:"customer_name"`
	ScreeningDate      time.Time       `json:"screening_date"`
	OverallRiskScore   int             `json:"overall_risk_score"`
	RiskLevel          string          `json:"risk_level"`
	SanctionsMatch     bool            `json:"sanctions_match"`
	PEPMatch           bool            `json:"pep_match"`
	AdverseMedia       bool            `json:"adverse_media"`
	RiskIndicators     []RiskIndicator `json:"risk_indicators"`
	RequiresEnhancedDD bool            `json:"requires_enhanced_dd"`
	Recommendations    []string        `json:"recommendations"`
}

// TransactionAnalysis is the best-effort object returned for a transaction.
// Its keys are whatever the model produced, or the fallback keys
// transaction_id, risk_score, risk_level, red_flags and recommendations.
type TransactionAnalysis map[string]any
