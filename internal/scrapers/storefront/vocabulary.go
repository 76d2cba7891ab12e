package storefront

import (
	"fmt"
	"strings"
)

// Vocabulary holds the substrings that identify each summary row in the
// footer of an order page.
type Vocabulary struct {
	Locale   string
	Subtotal string
	Shipping string
	Tax      string
	Total    string
}

var (
	English = Vocabulary{
		Locale:   "en",
		Subtotal: "Subtotal",
		Shipping: "Shipping",
		Tax:      "Tax",
		Total:    "Total",
	}
	Japanese = Vocabulary{
		Locale:   "ja",
		Subtotal: "小計",
		Shipping: "送料",
		Tax:      "税",
		Total:    "合計",
	}
)

var vocabularies = map[string]Vocabulary{
	English.Locale:  English,
	Japanese.Locale: Japanese,
}

func VocabularyFor(locale string) (Vocabulary, error) {
	v, ok := vocabularies[strings.ToLower(strings.TrimSpace(locale))]
	if !ok {
		return Vocabulary{}, fmt.Errorf("unknown vocabulary %q", locale)
	}
	return v, nil
}

type summaryField int

const (
	fieldNone summaryField = iota
	fieldSubtotal
	fieldShipping
	fieldTax
	fieldTotal
)

// classify returns the first field, in subtotal, shipping, tax, total order,
// whose substring the label contains.
func (v Vocabulary) classify(label string) summaryField {
	switch {
	case v.Subtotal != "" && strings.Contains(label, v.Subtotal):
		return fieldSubtotal
	case v.Shipping != "" && strings.Contains(label, v.Shipping):
		return fieldShipping
	case v.Tax != "" && strings.Contains(label, v.Tax):
		return fieldTax
	case v.Total != "" && strings.Contains(label, v.Total):
		return fieldTotal
	}
	return fieldNone
}
