package storefront

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"orderharvest/internal/components/telemetry"
	"orderharvest/internal/orders"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "embed"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/listing_page1.html
var listingPage1 []byte

//go:embed testdata/listing_page2.html
var listingPage2 []byte

//go:embed testdata/detail_en.html
var detailEn []byte

//go:embed testdata/detail_ja.html
var detailJa []byte

//go:embed testdata/detail_empty_cart.html
var detailEmptyCart []byte

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestParseListing(t *testing.T) {
	page := mustParse(t, "https://shop.example.com/en/account")
	listing, skipped, err := ParseListing(bytes.NewReader(listingPage1), page)
	require.NoError(t, err)
	require.Equal(t, 1, skipped)
	require.Len(t, listing.Rows, 2)

	first := listing.Rows[0]
	require.Equal(t, "#1010", first.Key)
	require.Equal(t, "April 2, 2024", first.Date)
	require.Equal(t, "Paid", first.PaymentStatus)
	require.Equal(t, "Unfulfilled", first.ShippingStatus)
	require.Equal(t, "5500", first.TotalAmount)
	require.Equal(t, "JPY", first.Currency)
	require.Equal(t, "https://shop.example.com/en/account/orders/aaa111", first.DetailRef.String())

	require.Equal(t, "#999", listing.Rows[1].Key)
	require.Equal(t, "Refunded", listing.Rows[1].PaymentStatus)

	require.NotNil(t, listing.Next)
	require.Equal(t, "https://shop.example.com/en/account?page=2", listing.Next.String())
}

func TestParseListingLastPage(t *testing.T) {
	page := mustParse(t, "https://shop.example.com/en/account?page=2")
	listing, skipped, err := ParseListing(bytes.NewReader(listingPage2), page)
	require.NoError(t, err)
	require.Zero(t, skipped)
	require.Nil(t, listing.Next)
	require.Len(t, listing.Rows, 1)

	row := listing.Rows[0]
	require.Equal(t, "3000", row.TotalAmount)
	require.Equal(t, "", row.Currency)
	require.Equal(t, "https://shop.example.com/en/account/orders/ccc333", row.DetailRef.String())
}

func TestParseDetailEnglish(t *testing.T) {
	detail, err := ParseDetail(bytes.NewReader(detailEn), English)
	require.NoError(t, err)

	expected := orders.Detail{
		LineItems: []orders.LineItem{
			{ProductName: "Acrylic Stand Set", Variant: "Ver. A / Large", Quantity: "2", LineTotal: "¥3,000"},
			{ProductName: "Towel", Variant: "", Quantity: "1", LineTotal: "¥1,500"},
		},
		Subtotal: "¥4,500",
		Shipping: "¥1,000",
		Tax:      "¥409",
		Total:    "¥5,500",
	}
	if diff := cmp.Diff(expected, detail); diff != "" {
		t.Fatalf("detail mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDetailJapaneseLastMatchWins(t *testing.T) {
	detail, err := ParseDetail(bytes.NewReader(detailJa), Japanese)
	require.NoError(t, err)

	require.Len(t, detail.LineItems, 1)
	require.Equal(t, "アクリルスタンド", detail.LineItems[0].ProductName)
	require.Equal(t, "¥2,000", detail.Subtotal)
	require.Equal(t, "¥800", detail.Shipping)
	// both "税" and "消費税 (10%)" contain the tax label, the later row wins
	require.Equal(t, "¥254", detail.Tax)
	require.Equal(t, "¥2,800", detail.Total)
}

func TestParseDetailWrongVocabulary(t *testing.T) {
	detail, err := ParseDetail(bytes.NewReader(detailJa), English)
	require.NoError(t, err)
	require.Len(t, detail.LineItems, 1)
	require.Equal(t, "", detail.Subtotal)
	require.Equal(t, "", detail.Total)
}

func TestParseDetailNoItems(t *testing.T) {
	detail, err := ParseDetail(bytes.NewReader(detailEmptyCart), English)
	require.NoError(t, err)
	require.NotNil(t, detail.LineItems)
	require.Empty(t, detail.LineItems)
	require.Equal(t, orders.Detail{LineItems: []orders.LineItem{}}, detail)
}

func TestVocabularyFor(t *testing.T) {
	v, err := VocabularyFor(" JA ")
	require.NoError(t, err)
	require.Equal(t, Japanese, v)

	_, err = VocabularyFor("fr")
	require.Error(t, err)

	table := []struct {
		label    string
		expected summaryField
	}{
		{label: "Subtotal", expected: fieldSubtotal},
		{label: "Shipping (Express)", expected: fieldShipping},
		{label: "Tax", expected: fieldTax},
		{label: "Total", expected: fieldTotal},
		{label: "Discount", expected: fieldNone},
		{label: "total", expected: fieldNone},
	}
	for _, row := range table {
		require.Equal(t, row.expected, English.classify(row.label), row.label)
	}
}

type fakeStorefront struct {
	pages    map[string][]byte
	statuses map[string]int
	cookies  []string
}

func (f *fakeStorefront) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.cookies = append(f.cookies, r.Header.Get("cookie"))
	key := r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}
	if status, ok := f.statuses[key]; ok {
		w.WriteHeader(status)
		return
	}
	body, ok := f.pages[key]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.Write(body)
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server, *telemetry.Recorder) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	rec := &telemetry.Recorder{}
	client, err := NewClient(Options{
		BaseURL:       srv.URL,
		SessionCookie: "_session=abc",
		Vocabulary:    English,
	}, rec)
	require.NoError(t, err)
	return client, srv, rec
}

func TestClientFetchListing(t *testing.T) {
	fake := &fakeStorefront{pages: map[string][]byte{
		"/en/account": listingPage1,
	}}
	client, srv, rec := newTestClient(t, fake)

	listing, err := client.FetchListing(context.Background(), mustParse(t, srv.URL+"/en/account"))
	require.NoError(t, err)
	require.Len(t, listing.Rows, 2)
	require.Equal(t, srv.URL+"/en/account/orders/aaa111", listing.Rows[0].DetailRef.String())
	require.Equal(t, srv.URL+"/en/account?page=2", listing.Next.String())
	require.Equal(t, []string{"_session=abc"}, fake.cookies)

	// the row without an order number is reported
	require.Len(t, rec.Find(telemetry.KindWarning, report_client_fetch_listing), 1)
}

func TestClientFetchDetail(t *testing.T) {
	fake := &fakeStorefront{pages: map[string][]byte{
		"/en/account/orders/aaa111": detailEn,
		"/en/account/orders/empty":  {},
	}, statuses: map[string]int{
		"/en/account/orders/broken": http.StatusInternalServerError,
	}}
	client, srv, rec := newTestClient(t, fake)
	ctx := context.Background()

	detail, err := client.FetchDetail(ctx, mustParse(t, srv.URL+"/en/account/orders/aaa111"))
	require.NoError(t, err)
	require.Equal(t, "¥5,500", detail.Total)

	_, err = client.FetchDetail(ctx, mustParse(t, srv.URL+"/en/account/orders/broken"))
	var transportErr *orders.TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Equal(t, http.StatusInternalServerError, transportErr.Status)

	_, err = client.FetchDetail(ctx, mustParse(t, srv.URL+"/en/account/orders/empty"))
	var emptyErr *orders.EmptyResponseError
	require.ErrorAs(t, err, &emptyErr)
	require.False(t, errors.As(err, &transportErr))

	require.Len(t, rec.Find(telemetry.KindWarning, report_client_fetch_detail), 2)
	require.Empty(t, rec.Find(telemetry.KindBroken, report_client_fetch_detail))
}

func TestClientTransportFailure(t *testing.T) {
	client, srv, _ := newTestClient(t, http.NotFoundHandler())
	ref := mustParse(t, srv.URL+"/en/account")
	srv.Close()

	_, err := client.FetchListing(context.Background(), ref)
	var transportErr *orders.TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Zero(t, transportErr.Status)
	require.True(t, strings.HasPrefix(transportErr.Ref, "http://"))
}

func TestClientRateLimitHonorsContext(t *testing.T) {
	srv := httptest.NewServer(&fakeStorefront{pages: map[string][]byte{"/": detailEmptyCart}})
	defer srv.Close()

	client, err := NewClient(Options{
		RequestsPerSecond: 0.001,
		Vocabulary:        English,
	}, &telemetry.Recorder{})
	require.NoError(t, err)

	ref := mustParse(t, srv.URL+"/")
	_, err = client.FetchDetail(context.Background(), ref)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.FetchDetail(ctx, ref)
	require.Error(t, err)
}

func TestClientDumpDir(t *testing.T) {
	srv := httptest.NewServer(&fakeStorefront{pages: map[string][]byte{"/en/account": listingPage2}})
	defer srv.Close()

	dir := filepath.Join(t.TempDir(), "http")
	client, err := NewClient(Options{
		SessionCookie: "_session=abc",
		Vocabulary:    English,
		DumpDir:       dir,
	}, &telemetry.Recorder{})
	require.NoError(t, err)

	_, err = client.FetchListing(context.Background(), mustParse(t, srv.URL+"/en/account"))
	require.NoError(t, err)

	dumped, err := os.ReadFile(filepath.Join(dir, "0001.txt"))
	require.NoError(t, err)
	require.True(t, bytes.Contains(dumped, listingPage2))
	require.False(t, bytes.Contains(dumped, []byte("_session=abc")))
}
