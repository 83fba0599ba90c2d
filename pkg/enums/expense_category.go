package enums

import (
	"fmt"
	"strings"
)

// ExpenseCategory classifies an outgoing payment.
type ExpenseCategory string

const (
	ExpenseCategoryFixed    ExpenseCategory = "FIXO"
	ExpenseCategoryVariable ExpenseCategory = "VARIAVEL"
	ExpenseCategorySupplier ExpenseCategory = "FORNECEDOR"
)

var validExpenseCategories = []ExpenseCategory{
	ExpenseCategoryFixed,
	ExpenseCategoryVariable,
	ExpenseCategorySupplier,
}

// String implements fmt.Stringer.
func (c ExpenseCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ExpenseCategory.
func (c ExpenseCategory) IsValid() bool {
	for _, candidate := range validExpenseCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseExpenseCategory converts raw input into an ExpenseCategory.
func ParseExpenseCategory(value string) (ExpenseCategory, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validExpenseCategories {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid expense category %q", value)
}
