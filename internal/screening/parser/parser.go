// Package parser turns raw model output into typed screening results.
//
// Parsing never fails. Text that is not a JSON object produces a fixed fallback
// result; a JSON object has each recognised key read when present and of the right
// type, with static defaults filling everything else.
package parser

import (
	"bytes"
	"encoding/json"
	"math"
	"time"

	"regscope/internal/screening/models"
)

// Defaults applied when the model output omits a field or cannot be parsed.
const (
	DefaultRiskScore      = 50
	DefaultRiskLevel      = models.RiskLevelMedium
	DefaultIndicatorType  = "unknown"
	DefaultSeverity       = models.RiskLevelMedium
	FallbackAdvisory      = "Manual review recommended due to incomplete automated screening"
	FallbackRedFlag       = "Unable to complete full analysis"
	FallbackTxAdvisory    = "Manual review recommended"
	screeningIDPrefix     = "AML-"
	screeningIDTimeLayout = "20060102150405"
)

// ScreeningID derives the screening identifier from the local wall-clock time.
// Two screenings within the same second share an identifier.
func ScreeningID(now time.Time) string {
	return screeningIDPrefix + now.Local().Format(screeningIDTimeLayout)
}

// ParseScreeningResult maps raw model text to a ScreeningResult. The second return
// value reports whether the fixed fallback was used.
func ParseScreeningResult(raw string, req *models.ScreeningRequest, now time.Time) (*models.ScreeningResult, bool) {
	result := &models.ScreeningResult{
		ScreeningID:        ScreeningID(now),
		CustomerName:       req.CustomerName,
		ScreeningDate:      now,
		OverallRiskScore:   DefaultRiskScore,
		RiskLevel:          DefaultRiskLevel,
		PEPMatch:           req.IsPEP,
		RiskIndicators:     []models.RiskIndicator{},
		RequiresEnhancedDD: req.IsEnhanced(),
		Recommendations:    []string{},
	}

	obj, ok := decodeObject(raw)
	if !ok {
		result.Recommendations = []string{FallbackAdvisory}
		return result, true
	}

	if v, ok := intField(obj, "risk_score"); ok {
		result.OverallRiskScore = v
	}
	if v, ok := stringField(obj, "risk_level"); ok {
		result.RiskLevel = v
	}
	if v, ok := boolField(obj, "sanctions_match"); ok {
		result.SanctionsMatch = v
	}
	if v, ok := boolField(obj, "pep_match"); ok {
		result.PEPMatch = v
	}
	if v, ok := boolField(obj, "adverse_media"); ok {
		result.AdverseMedia = v
	}
	if v, ok := boolField(obj, "enhanced_dd_required"); ok {
		result.RequiresEnhancedDD = v
	}
	result.RiskIndicators = indicators(obj["risk_indicators"])
	result.Recommendations = stringList(obj["recommendations"])

	return result, false
}

// ParseTransactionAnalysis returns the model's JSON object verbatim, or the fallback
// analysis for tx when the text is not a JSON object.
func ParseTransactionAnalysis(raw string, tx *models.TransactionRecord) (models.TransactionAnalysis, bool) {
	obj, ok := decodeObject(raw)
	if !ok {
		return models.TransactionAnalysis{
			"transaction_id":  tx.TransactionID,
			"risk_score":      DefaultRiskScore,
			"risk_level":      DefaultRiskLevel,
			"red_flags":       []string{FallbackRedFlag},
			"recommendations": []string{FallbackTxAdvisory},
		}, true
	}
	analysis := make(models.TransactionAnalysis, len(obj))
	for k, v := range obj {
		var decoded any
		// each value was already validated as part of the enclosing object
		_ = unmarshalNumber(v, &decoded)
		analysis[k] = decoded
	}
	return analysis, false
}

// decodeObject strictly decodes raw as a single top-level JSON object.
func decodeObject(raw string) (map[string]json.RawMessage, bool) {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) == 0 || data[0] != '{' || !json.Valid(data) {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// unmarshalNumber decodes keeping numbers as json.Number so integers survive re-encoding.
func unmarshalNumber(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// intField reads an integral JSON number. Quoted numbers and fractional values
// are not integral and keep the default.
func intField(obj map[string]json.RawMessage, key string) (int, bool) {
	raw, ok := obj[key]
	if !ok {
		return 0, false
	}
	var decoded any
	if err := unmarshalNumber(raw, &decoded); err != nil {
		return 0, false
	}
	n, ok := decoded.(json.Number)
	if !ok {
		return 0, false
	}
	if v, err := n.Int64(); err == nil {
		if v < math.MinInt32 || v > math.MaxInt32 {
			return 0, false
		}
		return int(v), true
	}
	f, err := n.Float64()
	if err != nil || math.Trunc(f) != f || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func stringField(obj map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := obj[key]
	if !ok {
		return "", false
	}
	return asString(raw)
}

func boolField(obj map[string]json.RawMessage, key string) (bool, bool) {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return false, false
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, false
	}
	return v, true
}

func asString(raw json.RawMessage) (string, bool) {
	if isNull(raw) {
		return "", false
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	return v, true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func indicators(raw json.RawMessage) []models.RiskIndicator {
	out := []models.RiskIndicator{}
	var items []json.RawMessage
	if raw == nil || json.Unmarshal(raw, &items) != nil {
		return out
	}
	for _, item := range items {
		var fields map[string]json.RawMessage
		if json.Unmarshal(item, &fields) != nil || fields == nil {
			continue
		}
		indicator := models.RiskIndicator{
			IndicatorType: DefaultIndicatorType,
			Severity:      DefaultSeverity,
		}
		if v, ok := stringField(fields, "type"); ok {
			indicator.IndicatorType = v
		}
		if v, ok := stringField(fields, "severity"); ok {
			indicator.Severity = v
		}
		if v, ok := stringField(fields, "description"); ok {
			indicator.Description = v
		}
		if v, ok := stringField(fields, "recommendation"); ok {
			indicator.Recommendation = v
		}
		out = append(out, indicator)
	}
	return out
}

func stringList(raw json.RawMessage) []string {
	out := []string{}
	var items []json.RawMessage
	if raw == nil || json.Unmarshal(raw, &items) != nil {
		return out
	}
	for _, item := range items {
		if v, ok := asString(item); ok {
			out = append(out, v)
		}
	}
	return out
}
