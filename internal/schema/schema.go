// Package schema defines the canonical order-record columns and the small
// closed vocabularies shared by the generator, the repairer and the table
// assembler.
package schema

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Canonical column names.
const (
	OrderID               = "Order_Id"
	CustomerID            = "Customer_Id"
	CustomerName          = "Customer_Name"
	ProductID             = "Product_Id"
	ProductCategory       = "Product_Category"
	ProductName           = "Product_Name"
	Quantity              = "Quantity_ordered"
	Price                 = "Price"
	OrderedAt             = "Date_and_Time_When_Order_Was_Placed"
	CustomerCountry       = "Customer_Country"
	CustomerCity          = "Customer_City"
	Site                  = "Site_From_Where_Order_Was_Placed"
	PaymentType           = "Payment_Type"
	PaymentConfirmationID = "Payment_Transaction_Confirmation_Id"
	PaymentStatus         = "Payment_Success_or_Failure"
	PaymentFailureReason  = "Payment_Failure_Reason"
)

// Placeholder markers written by upstream systems in place of an identifier.
const (
	MarkerInvalidUUID       = "InvalidUUID"
	MarkerInvalidProductID  = "InvalidProductId"
	MarkerInvalidCustomerID = "InvalidCustomerId"
)

const (
	// NoReasonProvided fills a missing Payment_Failure_Reason.
	NoReasonProvided = "No Reason Provided"

	PaymentSucceeded = "Y"
	PaymentFailed    = "N"

	// TimestampLayout is the layout used when writing timestamps.
	TimestampLayout = "2006-01-02 15:04:05"
)

var canonicalOrder = []string{
	OrderID,
	CustomerID,
	CustomerName,
	ProductID,
	ProductCategory,
	ProductName,
	Quantity,
	Price,
	OrderedAt,
	CustomerCountry,
	CustomerCity,
	Site,
	PaymentType,
	PaymentConfirmationID,
	PaymentStatus,
	PaymentFailureReason,
}

var identifierColumns = []string{ProductID, OrderID, CustomerID, PaymentConfirmationID}

var placeholderMarkers = []string{MarkerInvalidUUID, MarkerInvalidProductID, MarkerInvalidCustomerID}

// Kind is the semantic type of a canonical column.
type Kind int

const (
	KindText Kind = iota
	KindIdentifier
	KindInteger
	KindDecimal
	KindTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindIdentifier:
		return "identifier"
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	case KindTimestamp:
		return "timestamp"
	default:
		return "text"
	}
}

var (
	kinds      = map[string]Kind{}
	foldedName = map[string]string{}
)

func init() {
	fold := cases.Fold()
	for _, c := range canonicalOrder {
		kinds[c] = KindText
		foldedName[fold.String(c)] = c
	}
	for _, c := range identifierColumns {
		kinds[c] = KindIdentifier
	}
	kinds[Quantity] = KindInteger
	kinds[Price] = KindDecimal
	kinds[OrderedAt] = KindTimestamp
}

// CanonicalOrder returns the 16 canonical columns in persistence order.
func CanonicalOrder() []string {
	return append([]string(nil), canonicalOrder...)
}

// IdentifierColumns returns the columns holding opaque identifiers.
func IdentifierColumns() []string {
	return append([]string(nil), identifierColumns...)
}

// PlaceholderMarkers returns the closed set of recognised placeholder markers.
func PlaceholderMarkers() []string {
	return append([]string(nil), placeholderMarkers...)
}

// IsCanonical reports whether name is one of the canonical columns.
func IsCanonical(name string) bool {
	_, ok := kinds[name]
	return ok
}

// IsIdentifier reports whether name is an identifier column.
func IsIdentifier(name string) bool {
	return kinds[name] == KindIdentifier
}

// IsPlaceholder reports whether s is exactly one of the placeholder markers.
func IsPlaceholder(s string) bool {
	for _, m := range placeholderMarkers {
		if s == m {
			return true
		}
	}
	return false
}

// KindOf returns the semantic kind of a column. Unknown columns are text.
func KindOf(name string) Kind {
	return kinds[name]
}

// NormalizeColumnName trims name, replaces spaces with underscores and, when
// the result matches a canonical column case-insensitively, returns the
// canonical spelling.
func NormalizeColumnName(name string) string {
	n := strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	if c, ok := foldedName[cases.Fold().String(n)]; ok {
		return c
	}
	return n
}

var timestampLayouts = []string{
	TimestampLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses s using the accepted timestamp layouts.
// Values without a zone are interpreted as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
