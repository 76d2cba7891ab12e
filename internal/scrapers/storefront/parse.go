package storefront

import (
	"io"
	"net/url"
	"orderharvest/internal/orders"
	"orderharvest/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// ParseListing extracts the rows of an account order listing page, detail and
// next page links are resolved against page. Rows without an order number are
// skipped and counted.
func ParseListing(r io.Reader, page *url.URL) (listing orders.ListingPage, skipped int, err error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return orders.ListingPage{}, 0, err
	}

	doc.Find(".AccountTable tbody tr").Each(func(_ int, tr *goquery.Selection) {
		anchor := tr.Find("td:nth-child(1) a").First()
		key := htmlutil.Text(anchor)
		if key == "" {
			skipped++
			return
		}

		row := orders.Row{
			Key:            key,
			Date:           htmlutil.Text(tr.Find("td:nth-child(2)")),
			PaymentStatus:  htmlutil.Text(tr.Find("td:nth-child(3)")),
			ShippingStatus: htmlutil.Text(tr.Find("td:nth-child(4)")),
		}
		amount := tr.Find("td:nth-child(5) span").First()
		row.TotalAmount = amount.AttrOr("data-price", "")
		row.Currency = amount.AttrOr("data-currency", "")
		if ref, ok := htmlutil.Href(page, anchor); ok {
			row.DetailRef = ref
		}

		listing.Rows = append(listing.Rows, row)
	})

	if next, ok := htmlutil.Href(page, doc.Find(".Pagination_arrow.-next")); ok {
		listing.Next = next
	}
	return listing, skipped, nil
}

// ParseDetail extracts the line items and footer summary of an order page.
// Footer rows are matched against vocab, when several rows match the same
// field the last one wins.
func ParseDetail(r io.Reader, vocab Vocabulary) (orders.Detail, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return orders.Detail{}, err
	}

	detail := orders.Detail{LineItems: []orders.LineItem{}}
	doc.Find(".CartItem").Each(func(_ int, item *goquery.Selection) {
		detail.LineItems = append(detail.LineItems, orders.LineItem{
			ProductName: htmlutil.Text(item.Find(".CartItem__Title a")),
			Variant:     htmlutil.Text(item.Find(".CartItem__Variant")),
			Quantity:    htmlutil.Text(item.Find(".CartItem_footerItem.Text--alignCenter")),
			LineTotal:   htmlutil.Text(item.Find(".CartItem_footerItem.Text--alignRight .money")),
		})
	})

	doc.Find("tfoot tr").Each(func(_ int, tr *goquery.Selection) {
		labelSel := tr.Find("td:nth-child(2)")
		valueSel := tr.Find("td:nth-child(3) .money")
		if labelSel.Length() == 0 || valueSel.Length() == 0 {
			return
		}
		label := htmlutil.Text(labelSel)
		value := htmlutil.Text(valueSel)

		switch vocab.classify(label) {
		case fieldSubtotal:
			detail.Subtotal = value
		case fieldShipping:
			detail.Shipping = value
		case fieldTax:
			detail.Tax = value
		case fieldTotal:
			detail.Total = value
		}
	})

	return detail, nil
}
