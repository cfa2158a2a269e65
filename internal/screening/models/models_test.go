package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regscope/pkg/validation"
)

func TestScreeningRequestDefaults(t *testing.T) {
	req, err := validation.Decode[ScreeningRequest]([]byte(`{"customer_name":"Jane Doe","screening_type":null}`))
	require.NoError(t, err)

	assert.False(t, req.IsPEP)
	assert.Equal(t, ScreeningTypeStandard, req.ScreeningType)
	assert.Nil(t, req.CustomerID)
	assert.Nil(t, req.TransactionData)
	assert.False(t, req.IsEnhanced())
}

func TestScreeningRequestWithTransaction(t *testing.T) {
	req, err := validation.Decode[ScreeningRequest]([]byte(`{
		"customer_name": "Jane Doe",
		"is_pep": true,
		"screening_type": "enhanced",
		"transaction_data": {
			"transaction_id": "TX-9",
			"timestamp": "2026-03-04T05:06:07+02:00",
			"amount": 12000,
			"currency": "USD",
			"sender_account": "S",
			"receiver_account": "R",
			"transaction_type": "wire",
			"sender_country": "US"
		}
	}`))
	require.NoError(t, err)

	assert.True(t, req.IsEnhanced())
	require.NotNil(t, req.TransactionData)
	assert.Equal(t, 12000.0, req.TransactionData.Amount)
	assert.Equal(t, "US", *req.TransactionData.SenderCountry)
	assert.Nil(t, req.TransactionData.ReceiverCountry)
	assert.True(t, req.TransactionData.Timestamp.Equal(time.Date(2026, 3, 4, 3, 6, 7, 0, time.UTC)))
}

func TestIsEnhancedIsExact(t *testing.T) {
	for _, st := range []string{"Enhanced", "ENHANCED", " enhanced", "ongoing", ""} {
		assert.False(t, (&ScreeningRequest{ScreeningType: st}).IsEnhanced(), st)
	}
}

func TestTransactionRecordRequiredFields(t *testing.T) {
	_, err := validation.Decode[TransactionRecord]([]byte(`{"amount": 1}`))
	ve, ok := validation.AsValidationError(err)
	require.True(t, ok)

	var missing []string
	for _, issue := range ve.Issues {
		if issue.Type == validation.IssueMissing {
			missing = append(missing, strings.Join(issue.Loc, "."))
		}
	}
	assert.ElementsMatch(t, []string{
		"body.transaction_id",
		"body.timestamp",
		"body.currency",
		"body.sender_account",
		"body.receiver_account",
		"body.transaction_type",
	}, missing)
}

func TestComplianceCheckRequestDefaults(t *testing.T) {
	req, err := validation.Decode[ComplianceCheckRequest]([]byte(`{
		"entity_name": "Acme",
		"entity_type": "PI",
		"jurisdictions": [],
		"regulations_to_check": ["PSD2"]
	}`))
	require.NoError(t, err)

	assert.True(t, req.CheckAMLKYC)
	assert.False(t, req.CheckPaymentSecurity)
	assert.False(t, req.CheckMarketConduct)
	assert.True(t, req.CheckDataProtection)
	assert.Equal(t, []string{}, req.Jurisdictions)
}

func TestComplianceCheckRequestLimits(t *testing.T) {
	_, err := validation.Decode[ComplianceCheckRequest]([]byte(`{
		"entity_name": "Acme",
		"entity_type": "PI",
		"jurisdictions": ["EU"],
		"regulations_to_check": ["` + strings.Repeat("x", 257) + `"],
		"document_text": "` + strings.Repeat("d", 10001) + `"
	}`))
	ve, ok := validation.AsValidationError(err)
	require.True(t, ok)

	var locs []string
	for _, issue := range ve.Issues {
		locs = append(locs, strings.Join(issue.Loc, "."))
	}
	assert.ElementsMatch(t, []string{"body.regulations_to_check[0]", "body.document_text"}, locs)
}

func TestTransactionTimestampForms(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		want     time.Time
		naive    bool
		rendered string
	}{
		{"offset", `"2026-03-01T10:00:00+02:00"`, time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC), false, "2026-03-01T10:00:00+02:00"},
		{"zulu", `"2026-03-01T10:00:00Z"`, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), false, "2026-03-01T10:00:00Z"},
		{"naive", `"2026-03-01T10:00:00"`, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), true, "2026-03-01T10:00:00"},
		{"space separator", `"2026-03-01 10:00:00.5"`, time.Date(2026, 3, 1, 10, 0, 0, 500000000, time.UTC), true, "2026-03-01T10:00:00.5"},
		{"date only", `"2026-03-01"`, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), true, "2026-03-01T00:00:00"},
		{"epoch seconds", `1772359200`, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), false, "2026-03-01T10:00:00Z"},
		{"epoch millis", `1772359200000`, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), false, "2026-03-01T10:00:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"transaction_id":"TX","timestamp":` + tt.raw + `,"amount":1,"currency":"EUR",` +
				`"sender_account":"S","receiver_account":"R","transaction_type":"wire"}`
			tx, err := validation.Decode[TransactionRecord]([]byte(body))
			require.NoError(t, err)

			assert.True(t, tx.Timestamp.Equal(tt.want), tx.Timestamp.String())
			assert.Equal(t, tt.naive, tx.Timestamp.Naive)
			assert.Equal(t, tt.rendered, tx.Timestamp.String())

			out, err := json.Marshal(tx.Timestamp)
			require.NoError(t, err)
			assert.JSONEq(t, `"`+tt.rendered+`"`, string(out))
		})
	}
}

func TestTransactionTimestampRejectsFreeText(t *testing.T) {
	body := `{"transaction_id":"TX","timestamp":"last tuesday","amount":1,"currency":"EUR",` +
		`"sender_account":"S","receiver_account":"R","transaction_type":"wire"}`
	_, err := validation.Decode[TransactionRecord]([]byte(body))
	ve, ok := validation.AsValidationError(err)
	require.True(t, ok)
	require.Len(t, ve.Issues, 1)
	assert.Equal(t, []string{"body", "timestamp"}, ve.Issues[0].Loc)
	assert.Equal(t, "type_error.datetime", ve.Issues[0].Type)
}
