package pageclass_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/visitorid/pkg/pageclass"
)

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return d
}

func TestRulesOrder(t *testing.T) {
	t.Parallel()
	var labels []pageclass.Label
	for _, r := range pageclass.Rules() {
		labels = append(labels, r.Label)
	}
	assert.Equal(t, []pageclass.Label{
		pageclass.Product,
		pageclass.Checkout,
		pageclass.Cart,
		pageclass.Home,
		pageclass.CollectionOrSearch,
	}, labels)
}

func TestClassify(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		url  string
		html string
		want pageclass.Label
	}{
		{name: "product path", url: "https://shop.example/products/widget", want: pageclass.Product},
		{name: "product path nested", url: "https://shop.example/collections/all/products/widget", want: pageclass.Product},
		{name: "checkout before cart", url: "https://shop.example/checkout/cart-recovery", want: pageclass.Checkout},
		{name: "checkouts token", url: "https://shop.example/123/checkouts/abc", want: pageclass.Checkout},
		{name: "cart", url: "https://shop.example/cart", want: pageclass.Cart},
		{name: "cart subpath", url: "https://shop.example/cart/change", want: pageclass.Cart},
		{name: "root", url: "https://shop.example/", want: pageclass.Home},
		{name: "empty path", url: "https://shop.example", want: pageclass.Home},
		{name: "index", url: "https://shop.example/index.html", want: pageclass.Home},
		{name: "collections", url: "https://shop.example/collections/summer", want: pageclass.CollectionOrSearch},
		{name: "search", url: "https://shop.example/search?type=product", want: pageclass.CollectionOrSearch},
		{name: "category", url: "https://shop.example/category/shoes", want: pageclass.CollectionOrSearch},
		{name: "query q", url: "https://shop.example/pages/find?q=shoes", want: pageclass.CollectionOrSearch},
		{name: "case insensitive path", url: "https://shop.example/Products/Widget", want: pageclass.Product},
		{name: "other", url: "https://shop.example/pages/about", want: pageclass.Other},
		{
			name: "product form",
			url:  "https://shop.example/pages/promo",
			html: `<form method="post" action="/cart/add"><button name="add">Add</button></form>`,
			want: pageclass.Product,
		},
		{
			name: "og type product",
			url:  "https://shop.example/p/123",
			html: `<html><head><meta property="og:type" content="product"></head></html>`,
			want: pageclass.Product,
		},
		{
			name: "data product id beats cart path",
			url:  "https://shop.example/cart",
			html: `<div data-product-id="42"></div>`,
			want: pageclass.Product,
		},
		{
			name: "og type website",
			url:  "https://shop.example/pages/about",
			html: `<html><head><meta property="og:type" content="website"></head></html>`,
			want: pageclass.Other,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			u, err := url.Parse(tt.url)
			require.NoError(t, err)

			var d *goquery.Document
			if tt.html != "" {
				d = doc(t, tt.html)
			}
			assert.Equal(t, tt.want, pageclass.Classify(u, d))
		})
	}
}

func TestClassifyNilURL(t *testing.T) {
	t.Parallel()
	assert.Equal(t, pageclass.Home, pageclass.Classify(nil, nil))
}
