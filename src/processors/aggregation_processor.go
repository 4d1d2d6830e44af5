package processors

import (
	"github.com/shopspring/decimal"
	"github.com/username/painelfinanceiro/backend/src/models"
)

type aggregationProcessorImpl struct{}

func NewAggregationProcessor() AggregationProcessor {
	return &aggregationProcessorImpl{}
}

// Aggregate returns one total per month, in the order given. Income records add their
// value to income; expense records add the absolute value to expense. A record without
// a value for a month contributes zero.
func (p *aggregationProcessorImpl) Aggregate(categories, subcategories []models.FinancialRecord, months []string) []models.MonthlyTotal {
	totals := make([]models.MonthlyTotal, 0, len(months))
	for _, month := range months {
		income, expense := decimal.Zero, decimal.Zero
		for _, group := range [][]models.FinancialRecord{categories, subcategories} {
			for _, record := range group {
				v, ok := record.MonthlyValues.Get(month)
				if !ok {
					continue
				}
				amount := decimal.NewFromFloat(v)
				if record.Classification == models.Income {
					income = income.Add(amount)
				} else {
					expense = expense.Add(amount.Abs())
				}
			}
		}
		totals = append(totals, models.MonthlyTotal{
			Month:   month,
			Income:  income.InexactFloat64(),
			Expense: expense.InexactFloat64(),
		})
	}
	return totals
}
