package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMoney(t *testing.T, s string) Money {
	t.Helper()
	m, err := ParseMoney(s)
	require.NoError(t, err)
	return m
}

func TestTotalsByPerson(t *testing.T) {
	people := []Person{{ID: 1, Name: "P", Age: 30}, {ID: 2, Name: "Q", Age: 50}, {ID: 3, Name: "Idle", Age: 20}}
	txs := []Transaction{
		{ID: 1, PersonID: 1, CategoryID: 1, Type: TypeIncome, Value: mustMoney(t, "100.00")},
		{ID: 2, PersonID: 1, CategoryID: 2, Type: TypeExpense, Value: mustMoney(t, "30.00")},
		{ID: 3, PersonID: 1, CategoryID: 2, Type: TypeExpense, Value: mustMoney(t, "20.00")},
		{ID: 4, PersonID: 2, CategoryID: 2, Type: TypeExpense, Value: mustMoney(t, "0.10")},
		{ID: 5, PersonID: 2, CategoryID: 2, Type: TypeExpense, Value: mustMoney(t, "0.20")},
	}

	report := TotalsByPerson(people, txs)
	require.Len(t, report.Items, 3)

	p := report.Items[0]
	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, "100.00", p.IncomeSum.String())
	assert.Equal(t, "50.00", p.ExpenseSum.String())
	assert.Equal(t, "50.00", p.Balance.String())

	q := report.Items[1]
	assert.Equal(t, "0.30", q.ExpenseSum.String())
	assert.Equal(t, "-0.30", q.Balance.String())

	idle := report.Items[2]
	assert.Equal(t, "Idle", idle.Name)
	assert.Equal(t, "0.00", idle.IncomeSum.String())
	assert.Equal(t, "0.00", idle.Balance.String())

	assert.Equal(t, "100.00", report.GrandTotal.Income.String())
	assert.Equal(t, "50.30", report.GrandTotal.Expense.String())
	assert.Equal(t, "49.70", report.GrandTotal.Balance.String())
}

func TestTotalsByCategory(t *testing.T) {
	categories := []Category{
		{ID: 1, Description: "Salary", Purpose: PurposeIncome},
		{ID: 2, Description: "Food", Purpose: PurposeExpense},
		{ID: 3, Description: "Unused", Purpose: PurposeBoth},
	}
	txs := []Transaction{
		{PersonID: 1, CategoryID: 1, Type: TypeIncome, Value: mustMoney(t, "2500.55")},
		{PersonID: 2, CategoryID: 2, Type: TypeExpense, Value: mustMoney(t, "99.99")},
		{PersonID: 1, CategoryID: 2, Type: TypeExpense, Value: mustMoney(t, "0.01")},
	}

	report := TotalsByCategory(categories, txs)
	require.Len(t, report.Items, 3)
	assert.Equal(t, "2500.55", report.Items[0].Balance.String())
	assert.Equal(t, "100.00", report.Items[1].ExpenseSum.String())
	assert.Equal(t, "-100.00", report.Items[1].Balance.String())
	assert.Equal(t, PurposeBoth, report.Items[2].Purpose)
	assert.Equal(t, "0.00", report.Items[2].ExpenseSum.String())
	assert.Equal(t, "2400.55", report.GrandTotal.Balance.String())
}

func TestReportPagedKeepsGrandTotal(t *testing.T) {
	people := make([]Person, 0, 12)
	txs := make([]Transaction, 0, 12)
	for i := int64(1); i <= 12; i++ {
		people = append(people, Person{ID: i, Name: "p", Age: 30})
		txs = append(txs, Transaction{PersonID: i, Type: TypeIncome, Value: MoneyFromCents(100)})
	}

	paged := TotalsByPerson(people, txs).Paged(NewPageRequest(2, 5))
	assert.Equal(t, 12, paged.TotalItems)
	assert.Equal(t, 3, paged.TotalPages)
	require.Len(t, paged.Items, 5)
	assert.Equal(t, int64(6), paged.Items[0].ID)
	assert.Equal(t, "12.00", paged.GrandTotal.Income.String())
}
