// Package prompt renders screening requests into instructions for the text-generation
// model. Rendering is pure: the same request always yields the same bytes.
package prompt

import (
	"strconv"
	"strings"

	"regscope/internal/screening/models"
)

// NotAvailable marks an optional field that was absent from the request.
const NotAvailable = "N/A"

const screeningInstructions = `
Evaluate based on FATF AML/KYC standards:
1. Customer risk profile (low/medium/high/critical)
2. Potential sanctions list matches (simulate check)
3. PEP status verification
4. Geographic risk factors
5. Adverse media indicators
6. Need for Enhanced Due Diligence

Provide comprehensive risk assessment with:
- Overall risk score (0-100)
- Risk level classification
- Specific risk indicators found
- Enhanced DD requirement
- Actionable recommendations

Respond with a single JSON object using these keys:
"risk_score" (integer 0-100), "risk_level" (low|medium|high|critical),
"sanctions_match" (boolean), "pep_match" (boolean), "adverse_media" (boolean),
"risk_indicators" (array of objects with "type", "severity", "description", "recommendation"),
"enhanced_dd_required" (boolean), "recommendations" (array of strings).`

const transactionInstructions = `
Evaluate for:
1. Unusual transaction amount or frequency
2. High-risk jurisdictions involved
3. Structuring patterns (amounts just below reporting thresholds)
4. Inconsistent transaction purpose
5. Rapid movement of funds

Provide:
- Risk score (0-100)
- Risk level (low/medium/high/critical)
- Specific red flags identified
- Recommendations for compliance team

Respond with a single JSON object using these keys:
"transaction_id", "risk_score", "risk_level", "red_flags", "recommendations".`

// Screening renders the customer AML/KYC screening prompt.
func Screening(req *models.ScreeningRequest) string {
	var b strings.Builder
	b.WriteString("Perform AML/KYC risk screening for the following customer:\n\n")
	b.WriteString("Customer Information:\n")
	line(&b, "Name", req.CustomerName)
	line(&b, "Customer ID", optional(req.CustomerID))
	line(&b, "Date of Birth", optional(req.DateOfBirth))
	line(&b, "Nationality", optional(req.Nationality))
	line(&b, "Country of Residence", optional(req.CountryOfResidence))
	line(&b, "PEP Status", yesNo(req.IsPEP))
	line(&b, "Screening Type", req.ScreeningType)

	b.WriteString("\nRelated Transaction:\n")
	if tx := req.TransactionData; tx != nil {
		line(&b, "Amount", tx.Currency+" "+amount(tx.Amount))
		line(&b, "Type", tx.TransactionType)
		line(&b, "Countries", optional(tx.SenderCountry)+" -> "+optional(tx.ReceiverCountry))
	} else {
		line(&b, "Transaction", NotAvailable)
	}

	b.WriteString(screeningInstructions)
	return b.String()
}

// Transaction renders the single-transaction analysis prompt.
func Transaction(tx *models.TransactionRecord) string {
	var b strings.Builder
	b.WriteString("Analyze this financial transaction for potential money laundering or suspicious activity:\n\n")
	b.WriteString("Transaction Details:\n")
	line(&b, "ID", tx.TransactionID)
	line(&b, "Amount", tx.Currency+" "+amount(tx.Amount))
	line(&b, "Type", tx.TransactionType)
	line(&b, "Sender Account", tx.SenderAccount)
	line(&b, "Receiver Account", tx.ReceiverAccount)
	line(&b, "Sender Country", optional(tx.SenderCountry))
	line(&b, "Receiver Country", optional(tx.ReceiverCountry))
	line(&b, "Purpose", optional(tx.Purpose))
	line(&b, "Timestamp", tx.Timestamp.String())

	b.WriteString(transactionInstructions)
	return b.String()
}

func line(b *strings.Builder, label, value string) {
	b.WriteString("- ")
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteByte('\n')
}

func optional(v *string) string {
	if v == nil || *v == "" {
		return NotAvailable
	}
	return *v
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
