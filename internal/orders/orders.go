// Package orders holds the canonical order history shape shared by every
// locale of the storefront, along with the errors raised while collecting it.
package orders

import (
	"net/url"
)

type LineItem struct {
	ProductName string `json:"productName"`
	Variant     string `json:"variant"`
	Quantity    string `json:"quantity"`
	LineTotal   string `json:"totalPrice"`
}

// Detail is the content of an order's own page. Summary fields that could not
// be found on the page are left empty.
type Detail struct {
	LineItems []LineItem `json:"productDetails"`
	Subtotal  string     `json:"subtotal"`
	Shipping  string     `json:"shipping"`
	Tax       string     `json:"tax"`
	Total     string     `json:"total"`
}

// Order is one purchase keyed by the storefront assigned order number.
// A nil Detail means the detail page has not been fetched successfully yet.
type Order struct {
	Key            string  `json:"orderNumber"`
	Date           string  `json:"date"`
	PaymentStatus  string  `json:"paymentStatus"`
	ShippingStatus string  `json:"shippingStatus"`
	TotalAmount    string  `json:"totalAmount"`
	Currency       string  `json:"currency"`
	Detail         *Detail `json:"details"`
}

func (o Order) Clone() Order {
	out := o
	if o.Detail != nil {
		detail := *o.Detail
		detail.LineItems = append([]LineItem{}, o.Detail.LineItems...)
		out.Detail = &detail
	}
	return out
}

// Row is a single row of a listing page.
type Row struct {
	Key            string
	Date           string
	PaymentStatus  string
	ShippingStatus string
	TotalAmount    string
	Currency       string
	// DetailRef is absolute, nil when the row carried no link.
	DetailRef *url.URL
}

// Order creates a new order out of the row's fields, without any detail.
func (r Row) Order() Order {
	return Order{
		Key:            r.Key,
		Date:           r.Date,
		PaymentStatus:  r.PaymentStatus,
		ShippingStatus: r.ShippingStatus,
		TotalAmount:    r.TotalAmount,
		Currency:       r.Currency,
	}
}

// ListingPage is one page of the order history listing.
type ListingPage struct {
	Rows []Row
	// Next is nil on the last page.
	Next *url.URL
}
