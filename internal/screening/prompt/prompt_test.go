package prompt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"regscope/internal/screening/models"
)

func strPtr(s string) *string { return &s }

func sampleTransaction() *models.TransactionRecord {
	return &models.TransactionRecord{
		TransactionID:   "TX-1001",
		Timestamp:       models.NewTimestamp(time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)),
		Amount:          9500.5,
		Currency:        "EUR",
		SenderAccount:   "DE89370400440532013000",
		ReceiverAccount: "GB29NWBK60161331926819",
		TransactionType: "wire",
		SenderCountry:   strPtr("DE"),
	}
}

func TestScreening_AbsentFieldsRenderAsNotAvailable(t *testing.T) {
	req := &models.ScreeningRequest{CustomerName: "Jane Doe", ScreeningType: "standard"}
	out := Screening(req)

	assert.Contains(t, out, "- Name: Jane Doe\n")
	assert.Contains(t, out, "- Customer ID: N/A\n")
	assert.Contains(t, out, "- Date of Birth: N/A\n")
	assert.Contains(t, out, "- Nationality: N/A\n")
	assert.Contains(t, out, "- Country of Residence: N/A\n")
	assert.Contains(t, out, "- PEP Status: No\n")
	assert.Contains(t, out, "- Screening Type: standard\n")
	assert.Contains(t, out, "Related Transaction:\n- Transaction: N/A\n")
	assert.Contains(t, out, "FATF AML/KYC standards")
}

func TestScreening_EmbedsPresentFields(t *testing.T) {
	req := &models.ScreeningRequest{
		CustomerName:       "Jane Doe",
		CustomerID:         strPtr("C-42"),
		Nationality:        strPtr("MT"),
		CountryOfResidence: strPtr("CY"),
		IsPEP:              true,
		ScreeningType:      "enhanced",
		TransactionData:    sampleTransaction(),
	}
	out := Screening(req)

	assert.Contains(t, out, "- Customer ID: C-42\n")
	assert.Contains(t, out, "- Date of Birth: N/A\n")
	assert.Contains(t, out, "- Nationality: MT\n")
	assert.Contains(t, out, "- PEP Status: Yes\n")
	assert.Contains(t, out, "- Amount: EUR 9500.5\n")
	assert.Contains(t, out, "- Countries: DE -> N/A\n")
	assert.NotContains(t, out, "- Transaction: N/A")
}

func TestScreening_Idempotent(t *testing.T) {
	req := &models.ScreeningRequest{
		CustomerName:    "Jane Doe",
		DateOfBirth:     strPtr("1980-05-01"),
		ScreeningType:   "ongoing",
		TransactionData: sampleTransaction(),
	}
	first := Screening(req)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Screening(req))
	}
}

func TestTransaction(t *testing.T) {
	tx := sampleTransaction()
	out := Transaction(tx)

	assert.True(t, strings.HasPrefix(out, "Analyze this financial transaction"))
	assert.Contains(t, out, "- ID: TX-1001\n")
	assert.Contains(t, out, "- Amount: EUR 9500.5\n")
	assert.Contains(t, out, "- Sender Country: DE\n")
	assert.Contains(t, out, "- Receiver Country: N/A\n")
	assert.Contains(t, out, "- Purpose: N/A\n")
	assert.Contains(t, out, "- Timestamp: 2026-01-02T15:04:05Z\n")
	assert.Contains(t, out, "Structuring patterns")
	assert.Equal(t, out, Transaction(tx))
}

func TestOptional_EmptyStringIsNotAvailable(t *testing.T) {
	assert.Equal(t, NotAvailable, optional(strPtr("")))
	assert.Equal(t, NotAvailable, optional(nil))
	assert.Equal(t, "x", optional(strPtr("x")))
}

func TestTransaction_NaiveTimestampHasNoOffset(t *testing.T) {
	tx := sampleTransaction()
	tx.Timestamp = models.Timestamp{Time: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), Naive: true}

	assert.Contains(t, Transaction(tx), "- Timestamp: 2026-03-01T10:00:00\n")
}
