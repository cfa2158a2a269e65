package service

import "regscope/internal/screening/models"

// CheckCompliance returns an illustrative multi-regulation review. The findings,
// score and recommendations are fixed; only the entity details and requested areas
// are echoed from the request.
func (s *Service) CheckCompliance(req *models.ComplianceCheckRequest) *models.ComplianceCheckResponse {
	s.logger.Info("compliance check requested",
		"entity_type", req.EntityType,
		"jurisdictions", len(req.Jurisdictions),
		"regulations", len(req.RegulationsToCheck),
	)
	return &models.ComplianceCheckResponse{
		EntityName:             req.EntityName,
		EntityType:             req.EntityType,
		Jurisdictions:          nonNil(req.Jurisdictions),
		RegulationsChecked:     nonNil(req.RegulationsToCheck),
		OverallComplianceScore: 85,
		ComplianceStatus:       "Mostly Compliant",
		AreasChecked: models.AreasChecked{
			AMLKYC:          req.CheckAMLKYC,
			PaymentSecurity: req.CheckPaymentSecurity,
			MarketConduct:   req.CheckMarketConduct,
			DataProtection:  req.CheckDataProtection,
		},
		Findings: []models.ComplianceFinding{
			{Regulation: "PSD2", Status: "compliant", Notes: "Strong Customer Authentication implemented"},
			{Regulation: "AML/KYC", Status: "partial", Notes: "Enhanced Due Diligence procedures need documentation update"},
		},
		Recommendations: []string{
			"Update AML policy documentation to reflect latest FATF guidelines",
			"Implement quarterly compliance training for all staff",
			"Enhance transaction monitoring rules for high-risk jurisdictions",
		},
	}
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
