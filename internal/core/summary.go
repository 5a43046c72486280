package core

type (
	// PersonTotals is one row of the totals-by-person report.
	PersonTotals struct {
		ID         int64  `json:"id"`
		Name       string `json:"name"`
		Age        int    `json:"age"`
		IncomeSum  Money  `json:"incomeSum"`
		ExpenseSum Money  `json:"expenseSum"`
		Balance    Money  `json:"balance"`
	}

	// CategoryTotals is one row of the totals-by-category report.
	CategoryTotals struct {
		ID          int64   `json:"id"`
		Description string  `json:"description"`
		Purpose     Purpose `json:"purpose"`
		IncomeSum   Money   `json:"incomeSum"`
		ExpenseSum  Money   `json:"expenseSum"`
		Balance     Money   `json:"balance"`
	}

	GrandTotal struct {
		Income  Money `json:"income"`
		Expense Money `json:"expense"`
		Balance Money `json:"balance"`
	}

	Report[T any] struct {
		Items      []T        `json:"items"`
		GrandTotal GrandTotal `json:"totalGeral"`
	}

	// PagedReport is a report whose items were windowed; the grand total still
	// covers every item.
	PagedReport[T any] struct {
		Page       int        `json:"page"`
		PageSize   int        `json:"pageSize"`
		TotalItems int        `json:"totalItems"`
		TotalPages int        `json:"totalPages"`
		Items      []T        `json:"items"`
		GrandTotal GrandTotal `json:"totalGeral"`
	}

	sums struct {
		income  Money
		expense Money
	}
)

func (s *sums) add(t Transaction) {
	switch t.Type {
	case TypeIncome:
		s.income = s.income.Add(t.Value)
	case TypeExpense:
		s.expense = s.expense.Add(t.Value)
	}
}

func (s sums) balance() Money {
	return s.income.Sub(s.expense)
}

// TotalsByPerson sums income and expense per person. Every person gets a row,
// in the order given, including people without transactions.
func TotalsByPerson(people []Person, txs []Transaction) Report[PersonTotals] {
	byPerson := indexSums(txs, func(t Transaction) int64 { return t.PersonID })

	items := make([]PersonTotals, 0, len(people))
	var grand sums
	for _, p := range people {
		s := byPerson[p.ID]
		items = append(items, PersonTotals{
			ID:         p.ID,
			Name:       p.Name,
			Age:        p.Age,
			IncomeSum:  s.income,
			ExpenseSum: s.expense,
			Balance:    s.balance(),
		})
		grand.income = grand.income.Add(s.income)
		grand.expense = grand.expense.Add(s.expense)
	}
	return Report[PersonTotals]{Items: items, GrandTotal: grand.total()}
}

// TotalsByCategory is TotalsByPerson keyed by category.
func TotalsByCategory(categories []Category, txs []Transaction) Report[CategoryTotals] {
	byCategory := indexSums(txs, func(t Transaction) int64 { return t.CategoryID })

	items := make([]CategoryTotals, 0, len(categories))
	var grand sums
	for _, c := range categories {
		s := byCategory[c.ID]
		items = append(items, CategoryTotals{
			ID:          c.ID,
			Description: c.Description,
			Purpose:     c.Purpose,
			IncomeSum:   s.income,
			ExpenseSum:  s.expense,
			Balance:     s.balance(),
		})
		grand.income = grand.income.Add(s.income)
		grand.expense = grand.expense.Add(s.expense)
	}
	return Report[CategoryTotals]{Items: items, GrandTotal: grand.total()}
}

// Paged windows the report items with the shared pagination rules.
func (r Report[T]) Paged(req PageRequest) PagedReport[T] {
	page := NewPage(req, len(r.Items), Window(r.Items, req))
	return PagedReport[T]{
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
		Items:      page.Items,
		GrandTotal: r.GrandTotal,
	}
}

func (s sums) total() GrandTotal {
	return GrandTotal{Income: s.income, Expense: s.expense, Balance: s.balance()}
}

func indexSums(txs []Transaction, key func(Transaction) int64) map[int64]sums {
	out := make(map[int64]sums)
	for _, t := range txs {
		k := key(t)
		s := out[k]
		s.add(t)
		out[k] = s
	}
	return out
}
