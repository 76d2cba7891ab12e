package report

import (
	"bytes"
	"encoding/json"
	"orderharvest/internal/orders"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func history() []orders.Order {
	return []orders.Order{
		{
			Key:            "#1001",
			Date:           "January 5, 2024",
			PaymentStatus:  "Paid",
			ShippingStatus: "Fulfilled",
			TotalAmount:    "5500",
			Currency:       "JPY",
			Detail: &orders.Detail{
				LineItems: []orders.LineItem{
					{ProductName: "Acrylic Stand", Variant: "Ver. A", Quantity: "2", LineTotal: "¥3,000"},
					{ProductName: "Towel, Large", Quantity: "1", LineTotal: "¥2,500"},
				},
				Total: "¥5,500",
			},
		},
		{
			Key:           "#1002",
			Date:          "February 1, 2024",
			PaymentStatus: "Pending",
		},
		{
			Key:  "#1003",
			Date: "March 1, 2024",
			Detail: &orders.Detail{
				LineItems: []orders.LineItem{
					{ProductName: "Mini Acrylic Stand", Quantity: "1", LineTotal: "¥800"},
				},
			},
		},
	}
}

func TestSearchContract(t *testing.T) {
	var inputErr *orders.UserInputError

	_, err := Search(nil, "Stand")
	require.ErrorAs(t, err, &inputErr)

	_, err = Search(history(), "")
	require.ErrorAs(t, err, &inputErr)

	_, err = Search(history(), "   ")
	require.ErrorAs(t, err, &inputErr)

	items, err := Search(history(), "Keychain")
	require.NoError(t, err)
	require.NotNil(t, items)
	require.Empty(t, items)
}

func TestSearch(t *testing.T) {
	items, err := Search(history(), " Acrylic Stand ")
	require.NoError(t, err)

	expected := []orders.LineItem{
		{ProductName: "Acrylic Stand", Variant: "Ver. A", Quantity: "2", LineTotal: "¥3,000"},
		{ProductName: "Mini Acrylic Stand", Quantity: "1", LineTotal: "¥800"},
	}
	if diff := cmp.Diff(expected, items); diff != "" {
		t.Fatalf("search mismatch (-want +got):\n%s", diff)
	}

	// matching is case-sensitive
	items, err = Search(history(), "acrylic")
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestLocate(t *testing.T) {
	matches, err := Locate(history(), "Towel")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "#1001", matches[0].OrderKey)
	require.Equal(t, "January 5, 2024", matches[0].Date)
}

func TestSuggest(t *testing.T) {
	suggestions := Suggest(history(), "acrylic stnd", 5)
	require.NotEmpty(t, suggestions)
	require.Equal(t, "Acrylic Stand", suggestions[0])
	require.NotContains(t, suggestions, "Towel, Large")

	require.Len(t, Suggest(history(), "acrylic", 1), 1)
	require.Nil(t, Suggest(history(), "  ", 3))
	require.Empty(t, Suggest(history(), "zzzzzzzz", 3))
}

func TestWriteJSON(t *testing.T) {
	var buff bytes.Buffer
	require.NoError(t, WriteJSON(&buff, history()))

	out := buff.String()
	require.True(t, strings.HasPrefix(out, "[\n  {\n    \"orderNumber\": \"#1001\""))
	require.Contains(t, out, `"details": null`)

	var decoded []orders.Order
	require.NoError(t, json.Unmarshal(buff.Bytes(), &decoded))
	if diff := cmp.Diff(history(), decoded); diff != "" {
		t.Fatalf("json mismatch (-want +got):\n%s", diff)
	}

	var inputErr *orders.UserInputError
	require.ErrorAs(t, WriteJSON(&buff, nil), &inputErr)
}

func TestWriteCSV(t *testing.T) {
	var buff bytes.Buffer
	require.NoError(t, WriteCSV(&buff, history()))

	lines := strings.Split(strings.TrimRight(buff.String(), "\n"), "\n")
	require.Equal(t, []string{
		"orderNumber,date,paymentStatus,shippingStatus,totalAmount,currency,details",
		`#1001,"January 5, 2024",Paid,Fulfilled,5500,JPY,"Acrylic Stand(2); Towel, Large(1)"`,
		`#1002,"February 1, 2024",Pending,,,,`,
		`#1003,"March 1, 2024",,,,,Mini Acrylic Stand(1)`,
	}, lines)

	var inputErr *orders.UserInputError
	require.ErrorAs(t, WriteCSV(&buff, []orders.Order{}), &inputErr)
}

func TestSummarizeLineItems(t *testing.T) {
	require.Equal(t, "", SummarizeLineItems(nil))
	require.Equal(t, "a(1); b(3)", SummarizeLineItems([]orders.LineItem{
		{ProductName: "a", Quantity: "1"},
		{ProductName: "b", Quantity: "3"},
	}))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" CSV")
	require.NoError(t, err)
	require.Equal(t, FormatCSV, f)
	require.Equal(t, "csv", f.Extension())

	_, err = ParseFormat("xml")
	var inputErr *orders.UserInputError
	require.ErrorAs(t, err, &inputErr)

	var buff bytes.Buffer
	require.NoError(t, Write(&buff, FormatJSON, history()))
	require.NotZero(t, buff.Len())
}
