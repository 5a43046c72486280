package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxNameLength        = 200
	MaxDescriptionLength = 400
)

type (
	ValidPerson struct {
		Name string
		Age  int
	}

	ValidCategory struct {
		Description string
		Purpose     Purpose
	}

	// TransactionInput is a candidate transaction as submitted by a caller.
	TransactionInput struct {
		Description string
		Value       Money
		Type        string
		CategoryID  int64
		PersonID    int64
	}

	// ValidTransaction is a normalized transaction ready to be persisted.
	ValidTransaction struct {
		Description string
		Value       Money
		Type        TransactionType
		CategoryID  int64
		PersonID    int64
	}

	// PersonLookup resolves a person by id. A missing person must be reported
	// with an error wrapping ErrNotFound.
	PersonLookup func(ctx context.Context, id int64) (Person, error)

	// CategoryLookup resolves a category by id, with the same not-found contract as PersonLookup.
	CategoryLookup func(ctx context.Context, id int64) (Category, error)
)

// ValidatePerson trims the name and checks both fields.
func ValidatePerson(name string, age int) (ValidPerson, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n == 0 || n > MaxNameLength {
		return ValidPerson{}, NewValidationError("name", CodeInvalidName,
			fmt.Sprintf("name is required and must have at most %d characters", MaxNameLength))
	}
	if age < 0 {
		return ValidPerson{}, NewValidationError("age", CodeInvalidAge, "age must not be negative")
	}
	return ValidPerson{Name: name, Age: age}, nil
}

// ValidateCategory trims the description and normalizes the purpose.
func ValidateCategory(description, purpose string) (ValidCategory, error) {
	description, err := checkDescription(description)
	if err != nil {
		return ValidCategory{}, err
	}
	p, ok := ParsePurpose(purpose)
	if !ok {
		return ValidCategory{}, NewValidationError("purpose", CodeInvalidPurpose,
			"purpose must be one of expense, income or both")
	}
	return ValidCategory{Description: description, Purpose: p}, nil
}

// ValidateTransaction runs the transaction checks in a fixed order and stops
// at the first failure: description, value, type, person, category, category
// purpose, then the minor rule. Lookup failures other than not-found are
// returned as plain errors so callers can tell them from rejections.
func ValidateTransaction(ctx context.Context, in TransactionInput, people PersonLookup, categories CategoryLookup) (ValidTransaction, error) {
	description, err := checkDescription(in.Description)
	if err != nil {
		return ValidTransaction{}, err
	}
	if !in.Value.IsPositive() {
		return ValidTransaction{}, NewValidationError("value", CodeInvalidValue, "value must be a number greater than zero")
	}
	if in.Value.GreaterThan(MaxMoney) {
		return ValidTransaction{}, NewValidationError("value", CodeInvalidValue,
			fmt.Sprintf("value must be at most %s", MaxMoney))
	}
	typ, ok := ParseTransactionType(in.Type)
	if !ok {
		return ValidTransaction{}, NewValidationError("type", CodeInvalidType, "type must be expense or income")
	}

	person, err := people(ctx, in.PersonID)
	if errors.Is(err, ErrNotFound) {
		return ValidTransaction{}, NewReferenceError("personId", CodePersonNotFound, "person not found", ErrPersonNotFound)
	}
	if err != nil {
		return ValidTransaction{}, fmt.Errorf("lookup person %d: %w", in.PersonID, err)
	}

	category, err := categories(ctx, in.CategoryID)
	if errors.Is(err, ErrNotFound) {
		return ValidTransaction{}, NewReferenceError("categoryId", CodeCategoryNotFound, "category not found", ErrCategoryNotFound)
	}
	if err != nil {
		return ValidTransaction{}, fmt.Errorf("lookup category %d: %w", in.CategoryID, err)
	}

	if !category.Purpose.Allows(typ) {
		if category.Purpose == PurposeIncome {
			return ValidTransaction{}, NewValidationError("categoryId", CodeCategoryIncomeOnly,
				"category accepts only income transactions")
		}
		return ValidTransaction{}, NewValidationError("categoryId", CodeCategoryExpenseOnly,
			"category accepts only expense transactions")
	}

	if person.IsMinor() && typ == TypeIncome {
		return ValidTransaction{}, NewValidationError("type", CodeMinorIncome,
			fmt.Sprintf("people under %d may only register expenses", AdultAge))
	}

	return ValidTransaction{
		Description: description,
		Value:       in.Value,
		Type:        typ,
		CategoryID:  in.CategoryID,
		PersonID:    in.PersonID,
	}, nil
}

func checkDescription(s string) (string, error) {
	s = strings.TrimSpace(s)
	if n := utf8.RuneCountInString(s); n == 0 || n > MaxDescriptionLength {
		return "", NewValidationError("description", CodeInvalidDescription,
			fmt.Sprintf("description is required and must have at most %d characters", MaxDescriptionLength))
	}
	return s, nil
}
