package orders

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CompareKeys orders keys the way a person would read them, digit runs are
// compared by value so "ORDER-9" comes before "ORDER-10".
func CompareKeys(a, b string) int {
	return newKeyCollator().CompareString(a, b)
}

func newKeyCollator() *collate.Collator {
	return collate.New(language.English, collate.Numeric)
}

// SortByKey sorts the orders in place by CompareKeys.
func SortByKey(list []Order) {
	c := newKeyCollator()
	sort.SliceStable(list, func(i, j int) bool {
		return c.CompareString(list[i].Key, list[j].Key) < 0
	})
}
