package testutil

import (
	"time"

	"regscope/internal/screening/models"
)

// FixedTime is the instant used by tests that pin the clock.
var FixedTime = time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)

// ScreeningRequestJSON is a minimal valid customer screening body.
const ScreeningRequestJSON = `{"customer_name":"Jane Doe"}`

// TransactionJSON is a valid transaction body matching Transaction().
const TransactionJSON = `{
	"transaction_id": "TX-1001",
	"timestamp": "2026-02-03T04:05:06Z",
	"amount": 9500.5,
	"currency": "EUR",
	"sender_account": "DE89370400440532013000",
	"receiver_account": "GB29NWBK60161331926819",
	"transaction_type": "wire",
	"sender_country": "DE",
	"receiver_country": "GB"
}`

// Transaction returns a fully populated transaction record.
func Transaction() *models.TransactionRecord {
	sender, receiver := "DE", "GB"
	return &models.TransactionRecord{
		TransactionID:   "TX-1001",
		Timestamp:       models.NewTimestamp(FixedTime),
		Amount:          9500.5,
		Currency:        "EUR",
		SenderAccount:   "DE89370400440532013000",
		ReceiverAccount: "GB29NWBK60161331926819",
		TransactionType: "wire",
		SenderCountry:   &sender,
		ReceiverCountry: &receiver,
	}
}

// ScreeningRequest returns a standard screening request for Jane Doe.
func ScreeningRequest() *models.ScreeningRequest {
	return &models.ScreeningRequest{
		CustomerName:  "Jane Doe",
		ScreeningType: models.ScreeningTypeStandard,
	}
}
