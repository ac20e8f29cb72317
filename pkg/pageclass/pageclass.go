package pageclass

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Label is a coarse page type.
type Label string

const (
	Home               Label = "home"
	Product            Label = "product"
	Cart               Label = "cart"
	Checkout           Label = "checkout"
	CollectionOrSearch Label = "collection_or_search"
	Other              Label = "other"
)

func (l Label) String() string { return string(l) }

// Page is what the rules look at. Doc may be nil when no DOM is available.
type Page struct {
	Path  string
	Query url.Values
	Doc   *goquery.Document
}

// Rule is one predicate of the cascade.
type Rule struct {
	Label Label
	Match func(Page) bool
}

// productSelectors are DOM probes found on product detail pages.
var productSelectors = []string{
	`form[action*="/cart/add"]`,
	`meta[property="og:type"][content="product"]`,
	`[data-product-id]`,
}

// rules is evaluated top to bottom; the first match wins. Product goes first
// since product pages routinely link to the cart, and checkout precedes cart
// so "/checkout/cart-recovery" is a checkout page.
var rules = []Rule{
	{Label: Product, Match: isProduct},
	{Label: Checkout, Match: pathContains("/checkout", "/checkouts/")},
	{Label: Cart, Match: pathContains("/cart")},
	{Label: Home, Match: isHome},
	{Label: CollectionOrSearch, Match: isCollectionOrSearch},
}

// Rules returns the cascade in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Classify labels the page at u. doc may be nil.
func Classify(u *url.URL, doc *goquery.Document) Label {
	p := Page{Doc: doc}
	if u != nil {
		p.Path = strings.ToLower(u.Path)
		p.Query = u.Query()
	}
	return ClassifyPage(p)
}

// ClassifyPage runs the cascade on an already extracted Page.
func ClassifyPage(p Page) Label {
	for _, r := range rules {
		if r.Match(p) {
			return r.Label
		}
	}
	return Other
}

func pathContains(fragments ...string) func(Page) bool {
	return func(p Page) bool {
		for _, f := range fragments {
			if strings.Contains(p.Path, f) {
				return true
			}
		}
		return false
	}
}

func isProduct(p Page) bool {
	if strings.Contains(p.Path, "/products/") {
		return true
	}
	if p.Doc == nil {
		return false
	}
	for _, sel := range productSelectors {
		if p.Doc.Find(sel).Length() > 0 {
			return true
		}
	}
	return false
}

func isHome(p Page) bool {
	switch p.Path {
	case "", "/", "/index.html":
		return true
	}
	return false
}

var collectionFragments = []string{"/collections", "/collection", "/search", "/category"}

func isCollectionOrSearch(p Page) bool {
	if pathContains(collectionFragments...)(p) {
		return true
	}
	return p.Query.Has("q")
}
