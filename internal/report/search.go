// Package report answers questions about a harvested order history: keyword
// search over line items and export to JSON or CSV.
package report

import (
	"orderharvest/internal/orders"
	"orderharvest/lib/textutil"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

var (
	errEmptyStore = &orders.UserInputError{Reason: "no order history has been collected yet"}
	errEmptyQuery = &orders.UserInputError{Reason: "a search keyword is required"}
)

// Match is a line item together with the order it belongs to.
type Match struct {
	OrderKey string
	Date     string
	Item     orders.LineItem
}

// Locate returns every line item whose product name contains query, in store
// order. The comparison is case-sensitive and the query is trimmed first.
// An empty store or blank query is a *orders.UserInputError, no match is an
// empty slice.
func Locate(list []orders.Order, query string) ([]Match, error) {
	if len(list) == 0 {
		return nil, errEmptyStore
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errEmptyQuery
	}

	matches := []Match{}
	for _, o := range list {
		if o.Detail == nil {
			continue
		}
		for _, item := range o.Detail.LineItems {
			if strings.Contains(item.ProductName, query) {
				matches = append(matches, Match{OrderKey: o.Key, Date: o.Date, Item: item})
			}
		}
	}
	return matches, nil
}

// Search is Locate without the order context.
func Search(list []orders.Order, query string) ([]orders.LineItem, error) {
	matches, err := Locate(list, query)
	if err != nil {
		return nil, err
	}
	items := make([]orders.LineItem, len(matches))
	for i, m := range matches {
		items[i] = m.Item
	}
	return items, nil
}

const suggestThreshold = 0.7

// Suggest returns up to n distinct product names that are close to query,
// best first. It is meant for queries that matched nothing.
func Suggest(list []orders.Order, query string, n int) []string {
	normalizedQuery := textutil.NormalizeName(query)
	if normalizedQuery == "" || n <= 0 {
		return nil
	}

	type candidate struct {
		name  string
		score float64
	}
	seen := map[string]struct{}{}
	var candidates []candidate
	for _, o := range list {
		if o.Detail == nil {
			continue
		}
		for _, item := range o.Detail.LineItems {
			if _, ok := seen[item.ProductName]; ok || item.ProductName == "" {
				continue
			}
			seen[item.ProductName] = struct{}{}

			normalized := textutil.NormalizeName(item.ProductName)
			score := matchr.JaroWinkler(normalizedQuery, normalized, false)
			if strings.Contains(normalized, normalizedQuery) {
				score = 1
			}
			if score >= suggestThreshold {
				candidates = append(candidates, candidate{name: item.ProductName, score: score})
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.name
	}
	return out
}
