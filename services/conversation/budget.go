package conversation

import (
	"fmt"

	"sherpa/models"
)

// Budget option ids. L = 100,000 currency units.
const (
	BudgetUnder5  = "budget_under_5"
	Budget5To10   = "budget_5_10"
	Budget10To20  = "budget_10_20"
	Budget20Above = "budget_20_above"
)

var budgetOptions = []models.Option{
	{ID: BudgetUnder5, Title: "Under 5 Lakhs"},
	{ID: Budget5To10, Title: "5-10 Lakhs"},
	{ID: Budget10To20, Title: "10-20 Lakhs"},
	{ID: Budget20Above, Title: "20 Lakhs & Above"},
}

var budgetRanges = map[string]models.PriceRange{
	BudgetUnder5:  {Max: 500_000},
	Budget5To10:   {Min: 500_000, Max: 1_000_000, Inclusive: true},
	Budget10To20:  {Min: 1_000_000, Max: 2_000_000, Inclusive: true},
	Budget20Above: {Min: 2_000_000},
}

// BudgetOptions returns the four selectable budget bands.
func BudgetOptions() []models.Option {
	return budgetOptions
}

// ResolveBudget maps a budget option id to its price range predicate.
// It is defined for exactly the four known ids; anything else is
// ErrInvalidBudgetID, never a silent default.
func ResolveBudget(budgetID string) (models.PriceRange, error) {
	r, ok := budgetRanges[budgetID]
	if !ok {
		return models.PriceRange{}, fmt.Errorf("%w: %q", ErrInvalidBudgetID, budgetID)
	}
	return r, nil
}
