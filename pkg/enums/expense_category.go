package enums

import (
	"fmt"
	"strings"
)

// ExpenseCategory groups expenses for reporting. The empty value means uncategorized.
type ExpenseCategory string

const (
	ExpenseCategoryFood           ExpenseCategory = "food"
	ExpenseCategoryTransportation ExpenseCategory = "transportation"
	ExpenseCategoryAccommodation  ExpenseCategory = "accommodation"
	ExpenseCategoryEntertainment  ExpenseCategory = "entertainment"
	ExpenseCategoryUtilities      ExpenseCategory = "utilities"
	ExpenseCategoryGroceries      ExpenseCategory = "groceries"
	ExpenseCategoryHealthcare     ExpenseCategory = "healthcare"
	ExpenseCategoryEducation      ExpenseCategory = "education"
	ExpenseCategoryTravel         ExpenseCategory = "travel"
	ExpenseCategoryClothing       ExpenseCategory = "clothing"
	ExpenseCategorySubscriptions  ExpenseCategory = "subscriptions"
	ExpenseCategoryRepairs        ExpenseCategory = "repairs"
	ExpenseCategoryInsurance      ExpenseCategory = "insurance"
	ExpenseCategoryTaxes          ExpenseCategory = "taxes"
	ExpenseCategoryElectronics    ExpenseCategory = "electronics"
	ExpenseCategoryOther          ExpenseCategory = "other"
)

var validExpenseCategories = []ExpenseCategory{
	ExpenseCategoryFood,
	ExpenseCategoryTransportation,
	ExpenseCategoryAccommodation,
	ExpenseCategoryEntertainment,
	ExpenseCategoryUtilities,
	ExpenseCategoryGroceries,
	ExpenseCategoryHealthcare,
	ExpenseCategoryEducation,
	ExpenseCategoryTravel,
	ExpenseCategoryClothing,
	ExpenseCategorySubscriptions,
	ExpenseCategoryRepairs,
	ExpenseCategoryInsurance,
	ExpenseCategoryTaxes,
	ExpenseCategoryElectronics,
	ExpenseCategoryOther,
}

// String implements fmt.Stringer.
func (c ExpenseCategory) String() string {
	return string(c)
}

// IsValid reports whether the category is known. The empty category is valid.
func (c ExpenseCategory) IsValid() bool {
	if c == "" {
		return true
	}
	for _, candidate := range validExpenseCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// OrOther maps the empty category to ExpenseCategoryOther for reporting.
func (c ExpenseCategory) OrOther() ExpenseCategory {
	if c == "" {
		return ExpenseCategoryOther
	}
	return c
}

// ParseExpenseCategory converts raw input into an ExpenseCategory.
func ParseExpenseCategory(value string) (ExpenseCategory, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "", nil
	}
	for _, candidate := range validExpenseCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid expense category %q", value)
}
