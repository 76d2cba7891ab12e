package report

import (
	"encoding/json"
	"fmt"
	"io"
	"orderharvest/internal/orders"
	"strings"

	"github.com/gocarina/gocsv"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", &orders.UserInputError{Reason: fmt.Sprintf("unknown export format %q, expected json or csv", s)}
}

// Extension is the file extension used for the format, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// Write exports list in the given format. An empty list is a
// *orders.UserInputError.
func Write(w io.Writer, format Format, list []orders.Order) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, list)
	case FormatCSV:
		return WriteCSV(w, list)
	}
	return &orders.UserInputError{Reason: fmt.Sprintf("unknown export format %q", format)}
}

// WriteJSON writes list as a JSON array indented by two spaces.
func WriteJSON(w io.Writer, list []orders.Order) error {
	if len(list) == 0 {
		return errEmptyStore
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(list)
}

// SummarizeLineItems renders line items as `name(quantity); name(quantity)`.
func SummarizeLineItems(items []orders.LineItem) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprintf("%s(%s)", item.ProductName, item.Quantity)
	}
	return strings.Join(parts, "; ")
}

type csvRow struct {
	OrderNumber    string `csv:"orderNumber"`
	Date           string `csv:"date"`
	PaymentStatus  string `csv:"paymentStatus"`
	ShippingStatus string `csv:"shippingStatus"`
	TotalAmount    string `csv:"totalAmount"`
	Currency       string `csv:"currency"`
	Details        string `csv:"details"`
}

// WriteCSV writes one row per order under a fixed header, the detail is
// flattened into a single column.
func WriteCSV(w io.Writer, list []orders.Order) error {
	if len(list) == 0 {
		return errEmptyStore
	}

	rows := make([]csvRow, len(list))
	for i, o := range list {
		rows[i] = csvRow{
			OrderNumber:    o.Key,
			Date:           o.Date,
			PaymentStatus:  o.PaymentStatus,
			ShippingStatus: o.ShippingStatus,
			TotalAmount:    o.TotalAmount,
			Currency:       o.Currency,
		}
		if o.Detail != nil {
			rows[i].Details = SummarizeLineItems(o.Detail.LineItems)
		}
	}
	return gocsv.Marshal(rows, w)
}
