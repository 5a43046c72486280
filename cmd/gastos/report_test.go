package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gastos/internal/core"
)

func TestWritePersonTotals(t *testing.T) {
	people := []core.Person{{ID: 1, Name: "Ana", Age: 34}, {ID: 2, Name: "Bia", Age: 9}}
	txs := []core.Transaction{
		{ID: 1, Value: core.MoneyFromCents(300000), Type: core.TypeIncome, PersonID: 1, CategoryID: 1},
		{ID: 2, Value: core.MoneyFromCents(995), Type: core.TypeExpense, PersonID: 2, CategoryID: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, writePersonTotals(&buf, core.TotalsByPerson(people, txs)))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"ID", "NAME", "AGE", "INCOME", "EXPENSE", "BALANCE"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"1", "Ana", "34", "3000.00", "0.00", "3000.00"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"2", "Bia", "9", "0.00", "9.95", "-9.95"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"TOTAL", "3000.00", "9.95", "2990.05"}, strings.Fields(lines[3]))

	// Columns line up.
	assert.Equal(t, strings.Index(lines[0], "INCOME"), strings.Index(lines[1], "3000.00"))
}

func TestWriteCategoryTotals(t *testing.T) {
	categories := []core.Category{{ID: 1, Description: "Food", Purpose: core.PurposeExpense}}

	var buf bytes.Buffer
	require.NoError(t, writeCategoryTotals(&buf, core.TotalsByCategory(categories, nil)))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"1", "Food", "expense", "0.00", "0.00", "0.00"}, strings.Fields(lines[1]))
}

func TestRootCommandTree(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "migrate", "report"})
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("log-level"))
}
