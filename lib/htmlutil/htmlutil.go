package htmlutil

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s+`)

// Normalize drops non-printable characters, trims the ends and collapses
// any inner run of whitespace into a single space.
func Normalize(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, s)
	s = strings.TrimSpace(s)
	return innerWhitespace.ReplaceAllString(s, " ")
}

// Text returns the normalized text of the first node in the selection, an
// empty selection gives an empty string.
func Text(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return Normalize(GetText(sel.Nodes[0]))
}

// Href resolves the href of the first node in the selection against base.
func Href(base *url.URL, sel *goquery.Selection) (*url.URL, bool) {
	href, exists := sel.First().Attr("href")
	if !exists {
		return nil, false
	}
	href = strings.TrimSpace(href)
	if href == "" {
		return nil, false
	}
	link, err := url.Parse(href)
	if err != nil {
		return nil, false
	}
	if base == nil {
		return link, true
	}
	return base.ResolveReference(link), true
}
