package string

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"CustomerName":       "customer_name",
		"IsPEP":              "is_pep",
		"CountryOfResidence": "country_of_residence",
		"ID":                 "id",
		"amount":             "amount",
	}
	for in, want := range tests {
		assert.Equal(t, want, ToSnakeCase(in), in)
	}
}
