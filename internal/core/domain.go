package core

import "strings"

// AdultAge is the age from which a person may register income.
const AdultAge = 18

const (
	PurposeExpense Purpose = "expense"
	PurposeIncome  Purpose = "income"
	PurposeBoth    Purpose = "both"

	TypeExpense TransactionType = "expense"
	TypeIncome  TransactionType = "income"
)

type (
	// Purpose restricts which transaction types may reference a category.
	Purpose string

	// TransactionType tells whether a transaction is an expense or an income entry.
	TransactionType string

	Person struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Age  int    `json:"age"`
	}

	Category struct {
		ID          int64   `json:"id"`
		Description string  `json:"description"`
		Purpose     Purpose `json:"purpose"`
	}

	// Transaction holds foreign keys only; a person's transactions are found
	// by looking them up through PersonID.
	Transaction struct {
		ID          int64           `json:"id"`
		Description string          `json:"description"`
		Value       Money           `json:"value"`
		Type        TransactionType `json:"type"`
		CategoryID  int64           `json:"categoryId"`
		PersonID    int64           `json:"personId"`
	}

	// TransactionDetail is a transaction with its category and person embedded,
	// the shape returned by transaction listings.
	TransactionDetail struct {
		Transaction
		Category Category `json:"category"`
		Person   Person   `json:"person"`
	}

	// Snapshot is a consistent read of the whole ledger.
	Snapshot struct {
		People       []Person
		Categories   []Category
		Transactions []Transaction
	}
)

// ParsePurpose normalizes s (trim + lower-case) and reports whether it is a known purpose.
func ParsePurpose(s string) (Purpose, bool) {
	p := Purpose(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PurposeExpense, PurposeIncome, PurposeBoth:
		return p, true
	default:
		return p, false
	}
}

// Allows reports whether a transaction of type t may reference a category with this purpose.
func (p Purpose) Allows(t TransactionType) bool {
	switch p {
	case PurposeBoth:
		return t == TypeExpense || t == TypeIncome
	case PurposeExpense:
		return t == TypeExpense
	case PurposeIncome:
		return t == TypeIncome
	default:
		return false
	}
}

// ParseTransactionType normalizes s (trim + lower-case) and reports whether it is a known type.
func ParseTransactionType(s string) (TransactionType, bool) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case TypeExpense, TypeIncome:
		return t, true
	default:
		return t, false
	}
}

// IsMinor reports whether the person is below AdultAge.
func (p Person) IsMinor() bool {
	return p.Age < AdultAge
}
