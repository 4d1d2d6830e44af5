package processors

import "github.com/username/painelfinanceiro/backend/src/models"

// Classifier decides the kind and the income/expense classification of a ledger row.
type Classifier interface {
	Classify(id, description string, values models.MonthlyValues) (models.RecordKind, models.Classification)
}

// HierarchyProcessor attaches subcategories to their categories by id prefix.
type HierarchyProcessor interface {
	Attach(categories, subcategories []models.FinancialRecord) []models.CategoryNode
	Orphans(categories, subcategories []models.FinancialRecord) []models.FinancialRecord
}

// AggregationProcessor sums records into income and expense totals per month.
type AggregationProcessor interface {
	Aggregate(categories, subcategories []models.FinancialRecord, months []string) []models.MonthlyTotal
}
