package catalog

import "sync"

var defaultData = Data{
	Products: []Group{
		{Name: "Electronics", Members: []string{"Smartphones", "Laptops", "Headphones", "Chargers", "Batteries"}},
		{Name: "Clothing", Members: []string{"T-Shirts", "Jeans", "Jackets", "Socks", "Sweaters"}},
		{Name: "Home & Kitchen", Members: []string{"Toothpaste", "Shampoo", "Soap", "Lotion", "Detergent"}},
		{Name: "Books", Members: []string{"Fiction", "Non-Fiction", "Comics", "Textbooks", "Magazines"}},
		{Name: "Sports", Members: []string{"Football", "Tennis Racket", "Cricket Bat", "Basketball", "Gym Gloves"}},
	},
	Locations: []Group{
		{Name: "USA", Members: []string{"New York", "Los Angeles", "Chicago", "Houston", "Phoenix"}},
		{Name: "UK", Members: []string{"London", "Manchester", "Birmingham", "Leeds", "Glasgow"}},
		{Name: "Germany", Members: []string{"Berlin", "Munich", "Frankfurt", "Hamburg", "Cologne"}},
		{Name: "India", Members: []string{"Mumbai", "Delhi", "Bangalore", "Chennai", "Kolkata"}},
		{Name: "Canada", Members: []string{"Toronto", "Vancouver", "Montreal", "Calgary", "Ottawa"}},
	},
	PaymentTypes: []string{"Card", "Internet Banking", "UPI", "Wallet"},
	Sites:        []string{"www.amazon.com", "www.flipkart.com", "www.ebay.com", "www.walmart.com", "www.etsy.com"},
	FailureReasons: []string{
		"Insufficient Funds",
		"Card Expired",
		"Bank Server Down",
		"Invalid Card Details",
		"Transaction Timed Out",
		"Payment Declined",
	},
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the process-wide catalog, built on first use.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := New(defaultData)
		if err != nil {
			panic(err)
		}
		defaultCat = c
	})
	return defaultCat
}
