// Package catalog holds the reference vocabularies for order records: the
// product taxonomy, the country to city mapping, payment types, order sites
// and payment failure reasons.
//
// A Catalog is immutable after construction. Every accessor returns a copy,
// so a single Catalog can be shared by any number of goroutines.
package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCategory is returned by ProductsOf for a category outside the catalog.
	ErrUnknownCategory = errors.New("catalog: unknown category")

	// ErrUnknownCountry is returned by CitiesOf for a country outside the catalog.
	ErrUnknownCountry = errors.New("catalog: unknown country")
)

// Chooser is the randomness CategoryOf needs for its fallback.
type Chooser interface {
	IntN(n int) int
}

// Group is one named entry with its ordered members (a category with its
// products, or a country with its cities).
type Group struct {
	Name    string
	Members []string
}

// Catalog is the static reference data.
type Catalog struct {
	products  []Group
	locations []Group

	paymentTypes   []string
	sites          []string
	failureReasons []string

	categoryByProduct map[string]string
	productsByCat     map[string][]string
	citiesByCountry   map[string][]string
}

// Data is the raw input to New.
type Data struct {
	Products       []Group
	Locations      []Group
	PaymentTypes   []string
	Sites          []string
	FailureReasons []string
}

// New builds a Catalog from d. The input is copied. A product listed under
// more than one category is attributed to the first one.
func New(d Data) (*Catalog, error) {
	c := &Catalog{
		products:          cloneGroups(d.Products),
		locations:         cloneGroups(d.Locations),
		paymentTypes:      append([]string(nil), d.PaymentTypes...),
		sites:             append([]string(nil), d.Sites...),
		failureReasons:    append([]string(nil), d.FailureReasons...),
		categoryByProduct: map[string]string{},
		productsByCat:     map[string][]string{},
		citiesByCountry:   map[string][]string{},
	}

	for _, g := range c.products {
		if g.Name == "" || len(g.Members) == 0 {
			return nil, fmt.Errorf("catalog: category %q must have a name and products", g.Name)
		}
		if _, dup := c.productsByCat[g.Name]; dup {
			return nil, fmt.Errorf("catalog: duplicate category %q", g.Name)
		}
		c.productsByCat[g.Name] = g.Members
		for _, p := range g.Members {
			if _, seen := c.categoryByProduct[p]; !seen {
				c.categoryByProduct[p] = g.Name
			}
		}
	}
	for _, g := range c.locations {
		if g.Name == "" || len(g.Members) == 0 {
			return nil, fmt.Errorf("catalog: country %q must have a name and cities", g.Name)
		}
		if _, dup := c.citiesByCountry[g.Name]; dup {
			return nil, fmt.Errorf("catalog: duplicate country %q", g.Name)
		}
		c.citiesByCountry[g.Name] = g.Members
	}
	if len(c.products) == 0 || len(c.locations) == 0 || len(c.paymentTypes) == 0 {
		return nil, errors.New("catalog: products, locations and payment types are required")
	}
	return c, nil
}

func cloneGroups(in []Group) []Group {
	out := make([]Group, len(in))
	for i, g := range in {
		out[i] = Group{Name: g.Name, Members: append([]string(nil), g.Members...)}
	}
	return out
}

func names(gs []Group) []string {
	out := make([]string, len(gs))
	for i, g := range gs {
		out[i] = g.Name
	}
	return out
}

// Categories returns the category names in catalog order.
func (c *Catalog) Categories() []string { return names(c.products) }

// ProductsOf returns the products of category in catalog order.
func (c *Catalog) ProductsOf(category string) ([]string, error) {
	ps, ok := c.productsByCat[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return append([]string(nil), ps...), nil
}

// CategoryOf returns the category containing product. A product the catalog
// does not know (free text, missing values) gets a uniformly random category
// drawn from r, so classification of dirty input never fails.
func (c *Catalog) CategoryOf(product string, r Chooser) string {
	if cat, ok := c.categoryByProduct[product]; ok {
		return cat
	}
	return c.products[r.IntN(len(c.products))].Name
}

// HasProduct reports whether product belongs to category.
func (c *Catalog) HasProduct(category, product string) bool {
	return contains(c.productsByCat[category], product)
}

// Countries returns the country names in catalog order.
func (c *Catalog) Countries() []string { return names(c.locations) }

// CitiesOf returns the cities of country in catalog order.
func (c *Catalog) CitiesOf(country string) ([]string, error) {
	cs, ok := c.citiesByCountry[country]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCountry, country)
	}
	return append([]string(nil), cs...), nil
}

// HasCity reports whether city belongs to country.
func (c *Catalog) HasCity(country, city string) bool {
	return contains(c.citiesByCountry[country], city)
}

// PaymentTypes returns the payment method names.
func (c *Catalog) PaymentTypes() []string { return append([]string(nil), c.paymentTypes...) }

// Sites returns the storefronts an order can be placed from.
func (c *Catalog) Sites() []string { return append([]string(nil), c.sites...) }

// FailureReasons returns the payment failure reasons.
func (c *Catalog) FailureReasons() []string { return append([]string(nil), c.failureReasons...) }

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
