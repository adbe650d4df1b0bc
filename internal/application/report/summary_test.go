package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPaymentSummary_Example(t *testing.T) {
	rows := BuildPaymentSummary(map[string]map[string]int{
		"USA": {"CreditCard": 3},
		"CA":  {"CreditCard": 2, "GiftCard": 1},
	})

	assert.Equal(t, []PaymentSummaryRow{
		{Method: "CreditCard", US: 3, CA: 2, Total: 5},
		{Method: "GiftCard", US: 0, CA: 1, Total: 1},
		{Method: TotalRow, US: 3, CA: 3, Total: 6},
	}, rows)
}

func TestBuildPaymentSummary_SortIsCaseSensitive(t *testing.T) {
	rows := BuildPaymentSummary(map[string]map[string]int{
		"USA": {"paypal": 1, "PAYPAL": 2, "Gift": 1},
	})

	methods := make([]string, 0, len(rows))
	for _, r := range rows {
		methods = append(methods, r.Method)
	}
	assert.Equal(t, []string{"Gift", "PAYPAL", "paypal", TotalRow}, methods)
}

func TestBuildPaymentSummary_Empty(t *testing.T) {
	rows := BuildPaymentSummary(map[string]map[string]int{"USA": {}, "CA": nil})

	assert.Equal(t, []PaymentSummaryRow{{Method: TotalRow}}, rows)
}
