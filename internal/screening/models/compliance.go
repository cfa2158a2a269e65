package models

// ComplianceCheckRequest asks for a multi-regulation compliance review of an entity.
type ComplianceCheckRequest struct {
	EntityName           string   `json:"entity_name" schema:"required" validate:"max=256"`
	EntityType           string   `json:"entity_type" schema:"required" validate:"max=256"`
	Jurisdictions        []string `json:"jurisdictions" schema:"required" validate:"max=50,dive,max=256"`
	RegulationsToCheck   []string `json:"regulations_to_check" schema:"required" validate:"max=50,dive,max=256"`
	DocumentText         *string  `json:"document_text,omitempty" validate:"omitempty,max=10000"`
	CheckAMLKYC          bool     `json:"check_aml_kyc" default:"true"`
	CheckPaymentSecurity bool     `json:"check_payment_security" default:"false"`
	CheckMarketConduct   bool     `json:"check_market_conduct" default:"false"`
	CheckDataProtection  bool     `json:"check_data_protection" default:"true"`
}

// AreasChecked echoes which compliance areas were requested.
type AreasChecked struct {
	AMLKYC          bool `json:"aml_kyc"`
	PaymentSecurity bool `json:"payment_security"`
	MarketConduct   bool `json:"market_conduct"`
	DataProtection  bool `json:"data_protection"`
}

// ComplianceFinding is one regulation-level observation.
type ComplianceFinding struct {
	Regulation string `json:"regulation"`
	Status     string `json:"status"`
	Notes      string `json:"notes"`
}

// ComplianceCheckResponse is the illustrative compliance-check result.
type ComplianceCheckResponse struct {
	EntityName             string              `json:"entity_name"`
	EntityType             string              `json:"entity_type"`
	Jurisdictions          []string            `json:"jurisdictions"`
	RegulationsChecked     []string            `json:"regulations_checked"`
	OverallComplianceScore int                 `json:"overall_compliance_score"`
	ComplianceStatus       string              `json:"compliance_status"`
	AreasChecked           AreasChecked        `json:"areas_checked"`
	Findings               []ComplianceFinding `json:"findings"`
	Recommendations        []string            `json:"recommendations"`
}

// HealthStatus is the body of the fintech health endpoint.
type HealthStatus struct {
	Status               string   `json:"status"`
	Service              string   `json:"service,omitempty"`
	Version              string   `json:"version,omitempty"`
	AMLService           string   `json:"aml_service,omitempty"`
	SupportedRegulations []string `json:"supported_regulations,omitempty"`
	Error                string   `json:"error,omitempty"`
}
