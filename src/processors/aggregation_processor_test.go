package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/username/painelfinanceiro/backend/src/models"
)

func TestAggregationProcessor_Aggregate(t *testing.T) {
	categories := []models.FinancialRecord{
		record("001", models.KindCategory, models.Expense, values("jan/25", 1500.0, "fev/25", -200.5)),
		record("016", models.KindCategory, models.Income, values("jan/25", 5000.0, "fev/25", 5000.0)),
	}
	subcategories := []models.FinancialRecord{
		record("001.01", models.KindSubcategory, models.Expense, values("jan/25", -0.1)),
		record("016.01", models.KindSubcategory, models.Income, values("fev/25", 0.2)),
	}

	totals := NewAggregationProcessor().Aggregate(categories, subcategories, []string{"jan/25", "fev/25", "mar/25"})

	assert.Equal(t, []models.MonthlyTotal{
		{Month: "jan/25", Income: 5000, Expense: 1500.1},
		{Month: "fev/25", Income: 5000.2, Expense: 200.5},
		{Month: "mar/25", Income: 0, Expense: 0},
	}, totals)
}

func TestAggregationProcessor_OneTotalPerMonth(t *testing.T) {
	months := []string{"mar/25", "jan/25"}
	totals := NewAggregationProcessor().Aggregate(nil, nil, months)

	assert.Len(t, totals, 2)
	assert.Equal(t, "mar/25", totals[0].Month)
	assert.Equal(t, "jan/25", totals[1].Month)
}
