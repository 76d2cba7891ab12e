package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// NormalizeName folds a product name into a form suitable for fuzzy
// comparison: full-width characters become their narrow counterparts, case
// is dropped and whitespace is removed.
func NormalizeName(name string) string {
	name = width.Fold.String(name)
	name = strings.ToLower(name)
	return strings.Join(strings.FieldsFunc(name, unicode.IsSpace), "")
}
