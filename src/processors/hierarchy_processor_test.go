package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/painelfinanceiro/backend/src/models"
)

func record(id string, kind models.RecordKind, class models.Classification, mv models.MonthlyValues) models.FinancialRecord {
	return models.FinancialRecord{ID: id, Name: "r" + id, Kind: kind, Classification: class, MonthlyValues: mv}
}

func TestHierarchyProcessor_Attach(t *testing.T) {
	categories := []models.FinancialRecord{
		record("001", models.KindCategory, models.Expense, values("jan/25", -10.0)),
		record("016", models.KindCategory, models.Income, values("jan/25", 20.0)),
	}
	subcategories := []models.FinancialRecord{
		record("001.01", models.KindSubcategory, models.Expense, values("jan/25", -4.0)),
		record("016.01", models.KindSubcategory, models.Income, values("jan/25", 20.0)),
		record("099.01", models.KindSubcategory, models.Expense, values("jan/25", -1.0)),
		record("001.02", models.KindSubcategory, models.Expense, values("jan/25", -6.0)),
	}
	p := NewHierarchyProcessor()

	nodes := p.Attach(categories, subcategories)

	require.Len(t, nodes, 2)
	assert.Equal(t, "001", nodes[0].ID)
	assert.Equal(t, []string{"001.01", "001.02"}, ids(nodes[0].Subcategories))
	assert.Equal(t, "016", nodes[1].ID)
	assert.Equal(t, []string{"016.01"}, ids(nodes[1].Subcategories))

	orphans := p.Orphans(categories, subcategories)
	assert.Equal(t, []string{"099.01"}, ids(orphans))
}

func TestHierarchyProcessor_PrefixNeedsDot(t *testing.T) {
	categories := []models.FinancialRecord{record("01", models.KindCategory, models.Expense, nil)}
	subcategories := []models.FinancialRecord{record("011.01", models.KindSubcategory, models.Expense, nil)}
	p := NewHierarchyProcessor()

	nodes := p.Attach(categories, subcategories)

	assert.Empty(t, nodes[0].Subcategories)
	assert.Len(t, p.Orphans(categories, subcategories), 1)
}

func TestHierarchyProcessor_Completeness(t *testing.T) {
	categories := []models.FinancialRecord{
		record("001", models.KindCategory, models.Expense, nil),
		record("002", models.KindCategory, models.Expense, nil),
	}
	subcategories := []models.FinancialRecord{
		record("002.01", models.KindSubcategory, models.Expense, nil),
		record("001.01", models.KindSubcategory, models.Expense, nil),
		record("003.01", models.KindSubcategory, models.Expense, nil),
	}
	p := NewHierarchyProcessor()

	placed := 0
	for _, n := range p.Attach(categories, subcategories) {
		placed += len(n.Subcategories)
	}
	assert.Equal(t, len(subcategories), placed+len(p.Orphans(categories, subcategories)))
}

func TestHierarchyProcessor_DoesNotMutateInputs(t *testing.T) {
	categories := []models.FinancialRecord{record("001", models.KindCategory, models.Expense, values("jan/25", -1.0))}
	subcategories := []models.FinancialRecord{record("001.01", models.KindSubcategory, models.Expense, values("jan/25", -1.0))}

	nodes := NewHierarchyProcessor().Attach(categories, subcategories)
	nodes[0].MonthlyValues[0].Value = 99
	nodes[0].Subcategories[0].MonthlyValues[0].Value = 99

	assert.Equal(t, -1.0, categories[0].MonthlyValues[0].Value)
	assert.Equal(t, -1.0, subcategories[0].MonthlyValues[0].Value)
}

func ids(records []models.FinancialRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}
