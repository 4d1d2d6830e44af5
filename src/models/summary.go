package models

// MonthSummary holds dashboard totals for one month.
type MonthSummary struct {
	Month          string   `json:"month"`
	TotalIncome    float64  `json:"totalIncome"`
	TotalExpenses  float64  `json:"totalExpenses"`
	Result         float64  `json:"result"`
	PreviousMonth  string   `json:"previousMonth,omitempty"`
	IncomeChange   *float64 `json:"incomeChange,omitempty"`   // percent vs previous month
	ExpensesChange *float64 `json:"expensesChange,omitempty"` // percent vs previous month
	ResultChange   *float64 `json:"resultChange,omitempty"`   // percent vs previous month
}

// ExpenseShare is one slice of the expense distribution by category.
type ExpenseShare struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
}

// TopExpense is an expense line item ranked by magnitude.
type TopExpense struct {
	ID    string  `json:"code"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}
