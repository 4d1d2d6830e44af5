package models

import "time"

// RecordKind distinguishes top-level categories from nested subcategories.
type RecordKind string

const (
	KindCategory    RecordKind = "category"
	KindSubcategory RecordKind = "subcategory"
)

// Classification tells whether a record is income or expense.
type Classification string

const (
	Income  Classification = "income"
	Expense Classification = "expense"
)

// FinancialRecord is one data row of an imported ledger after classification.
type FinancialRecord struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Kind           RecordKind     `json:"kind"`
	Classification Classification `json:"type"`
	MonthlyValues  MonthlyValues  `json:"values"`
	IsDuplicate    bool           `json:"isDuplicate"`
}

// Clone returns a copy of r that shares no memory with it.
func (r FinancialRecord) Clone() FinancialRecord {
	r.MonthlyValues = r.MonthlyValues.Clone()
	return r
}

// CategoryNode is a category with the subcategories attached to it, in file order.
type CategoryNode struct {
	FinancialRecord
	Subcategories []FinancialRecord `json:"subcategories"`
}

// Clone returns a deep copy of n.
func (n CategoryNode) Clone() CategoryNode {
	out := CategoryNode{FinancialRecord: n.FinancialRecord.Clone()}
	out.Subcategories = cloneRecords(n.Subcategories)
	return out
}

// MonthlyTotal holds income and expense totals for one month column.
// Expense is always a non-negative magnitude.
type MonthlyTotal struct {
	Month   string  `json:"month"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// ImportRecord is the metadata of one completed import. It is never modified after creation.
type ImportRecord struct {
	ID               string    `json:"id"`
	FileName         string    `json:"fileName"`
	DateImported     time.Time `json:"dateImported"`
	RowCount         int       `json:"rowCount"`
	CategoryCount    int       `json:"categories"`
	SubcategoryCount int       `json:"subcategories"`
	DuplicateCount   int       `json:"duplicates"`
	OrphanCount      int       `json:"orphans"`
}

// ImportedFinancialData is the snapshot of the latest import.
type ImportedFinancialData struct {
	ImportID      string            `json:"importId"`
	Months        []string          `json:"months"`
	Categories    []CategoryNode    `json:"categories"`
	Orphans       []FinancialRecord `json:"orphans"`
	MonthlyTotals []MonthlyTotal    `json:"monthlyTotals"`
}

// Clone returns a deep copy of d. A nil receiver yields nil.
func (d *ImportedFinancialData) Clone() *ImportedFinancialData {
	if d == nil {
		return nil
	}
	out := &ImportedFinancialData{
		ImportID:      d.ImportID,
		Months:        append([]string(nil), d.Months...),
		Orphans:       cloneRecords(d.Orphans),
		MonthlyTotals: append([]MonthlyTotal(nil), d.MonthlyTotals...),
	}
	if d.Categories != nil {
		out.Categories = make([]CategoryNode, len(d.Categories))
		for i, c := range d.Categories {
			out.Categories[i] = c.Clone()
		}
	}
	return out
}

// Identifiers lists the ids of every record in the snapshot, orphans included.
func (d *ImportedFinancialData) Identifiers() []string {
	if d == nil {
		return nil
	}
	var ids []string
	for _, c := range d.Categories {
		ids = append(ids, c.ID)
		for _, s := range c.Subcategories {
			ids = append(ids, s.ID)
		}
	}
	for _, o := range d.Orphans {
		ids = append(ids, o.ID)
	}
	return ids
}

// CategoryMonthValue is a record resolved for a single month.
type CategoryMonthValue struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Kind           RecordKind         `json:"kind"`
	Classification Classification     `json:"type"`
	Month          string             `json:"month"`
	Value          float64            `json:"value"`
	Subcategories  []SubcategoryValue `json:"subcategories,omitempty"`
}

// SubcategoryValue is a subcategory resolved for a single month.
type SubcategoryValue struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func cloneRecords(in []FinancialRecord) []FinancialRecord {
	if in == nil {
		return nil
	}
	out := make([]FinancialRecord, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
