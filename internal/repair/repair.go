// Package repair restores the order-record invariants on an existing table.
//
// Repair is a column-wise pipeline. Each step is idempotent with respect to
// the invariant it restores and is skipped unless its trigger columns are
// selected. Steps come in two modes:
//
//   - patch: only invalid cells are rewritten (identifiers, numerics,
//     failure reasons)
//   - regenerate: every row of the step's columns is redrawn, valid or not
//     (customer location and name, product, payment type)
//
// Repair never fails because of cell content. Values that cannot be coerced
// become candidates for replacement.
package repair

import (
	"ecomdata/internal/catalog"
	"ecomdata/internal/faker"
	"ecomdata/internal/schema"
	"ecomdata/internal/table"
)

// Policy decides how many replacement values one pass draws.
type Policy int

const (
	// PolicyShared draws one replacement per distinct placeholder marker per
	// identifier column, and one shared quantity and one shared price for all
	// failing numeric cells of a pass.
	PolicyShared Policy = iota

	// PolicyPerCell draws an independent replacement for every offending cell.
	PolicyPerCell
)

func (p Policy) String() string {
	if p == PolicyPerCell {
		return "per_cell"
	}
	return "shared"
}

// Mode is the rewrite mode of a repair step.
type Mode string

const (
	ModePatch      Mode = "patch"
	ModeRegenerate Mode = "regenerate"
)

// Options configures a Repairer.
type Options struct {
	Policy Policy
}

// Repairer applies the repair pipeline. It owns its Faker and is therefore
// not safe for concurrent use.
type Repairer struct {
	cat  *catalog.Catalog
	fk   *faker.Faker
	opts Options
}

// New returns a Repairer.
func New(cat *catalog.Catalog, fk *faker.Faker, opts Options) *Repairer {
	return &Repairer{cat: cat, fk: fk, opts: opts}
}

// StepResult records what one step did.
type StepResult struct {
	Step    string
	Mode    Mode
	Applied bool
	Cells   int // cells whose value changed
}

// Report summarizes a Repair call.
type Report struct {
	Rows    int
	Policy  Policy
	Steps   []StepResult
	Columns []string // columns of the returned table
}

// Cells returns the total number of changed cells.
func (r Report) Cells() int {
	n := 0
	for _, s := range r.Steps {
		n += s.Cells
	}
	return n
}

// selection is the caller's column choice.
type selection map[string]bool

func (s selection) any(cols ...string) bool {
	for _, c := range cols {
		if s[c] {
			return true
		}
	}
	return false
}

// step is one row of the dispatch table.
type step struct {
	name    string
	mode    Mode
	applies func(sel selection, t *table.Table) bool
	run     func(r *Repairer, sel selection, t *table.Table) int
}

var customerColumns = []string{schema.CustomerCountry, schema.CustomerCity, schema.CustomerName}

// pipeline is the column-repair dispatch table, in execution order.
var pipeline = []step{
	{
		name: "identifiers",
		mode: ModePatch,
		applies: func(sel selection, t *table.Table) bool {
			for _, c := range schema.IdentifierColumns() {
				if sel[c] && t.Has(c) {
					return true
				}
			}
			return false
		},
		run: (*Repairer).repairIdentifiers,
	},
	{
		name: "customer",
		mode: ModeRegenerate,
		applies: func(sel selection, t *table.Table) bool {
			return sel.any(customerColumns...) &&
				(t.Has(schema.CustomerCountry) || t.Has(schema.CustomerCity) || t.Has(schema.CustomerName))
		},
		run: (*Repairer).regenerateCustomers,
	},
	{
		name: "product",
		mode: ModeRegenerate,
		applies: func(sel selection, t *table.Table) bool {
			return sel[schema.ProductName] && t.Has(schema.ProductName)
		},
		run: (*Repairer).regenerateProducts,
	},
	{
		name: "payment_type",
		mode: ModeRegenerate,
		applies: func(sel selection, t *table.Table) bool {
			return sel[schema.PaymentType] && t.Has(schema.PaymentType)
		},
		run: (*Repairer).regeneratePaymentTypes,
	},
	{
		name: "numeric",
		mode: ModePatch,
		applies: func(sel selection, _ *table.Table) bool {
			return sel.any(schema.Quantity, schema.Price)
		},
		run: (*Repairer).repairNumerics,
	},
	{
		name: "failure_reason",
		mode: ModePatch,
		applies: func(_ selection, t *table.Table) bool {
			return t.Has(schema.PaymentFailureReason)
		},
		run: (*Repairer).fillFailureReasons,
	},
}

// Steps returns the names and modes of the pipeline in execution order.
func Steps() []StepResult {
	out := make([]StepResult, len(pipeline))
	for i, s := range pipeline {
		out[i] = StepResult{Step: s.name, Mode: s.mode}
	}
	return out
}

// Repair mutates t in place and returns the projection of t onto the
// selected columns that exist. An empty selection returns t itself.
// Selecting Quantity_ordered or Price also renames every column of t to its
// canonical spelling before any step runs.
func (r *Repairer) Repair(t *table.Table, selected []string) (*table.Table, Report) {
	sel := make(selection, len(selected))
	for _, c := range selected {
		sel[c] = true
	}

	// Numeric repair canonicalises every header. It happens up front so the
	// other steps find their columns under the canonical names too.
	if sel.any(schema.Quantity, schema.Price) {
		t.RenameColumns(schema.NormalizeColumnName)
	}

	rep := Report{Rows: t.Len(), Policy: r.opts.Policy, Steps: make([]StepResult, 0, len(pipeline))}
	for _, s := range pipeline {
		res := StepResult{Step: s.name, Mode: s.mode}
		if s.applies(sel, t) {
			res.Applied = true
			res.Cells = s.run(r, sel, t)
		}
		rep.Steps = append(rep.Steps, res)
	}

	out := t
	if len(selected) > 0 {
		out = t.Project(selected)
	}
	rep.Columns = out.Columns()
	return out, rep
}

// set writes v into row i of column ci and reports whether the value changed.
func set(row *table.Row, ci int, v any) bool {
	if row.V[ci] == v {
		return false
	}
	row.V[ci] = v
	return true
}
