// Package pageclass maps a storefront URL and DOM to a coarse page label.
//
// Classification is an ordered cascade of predicates (see Rules): product,
// checkout, cart, home, collection or search, and finally Other.
package pageclass
