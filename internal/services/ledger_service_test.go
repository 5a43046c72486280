package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gastos/internal/core"
	"gastos/internal/storage/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []core.LedgerEvent
	err    error
}

func (p *recordingPublisher) PublishLedgerEvent(_ context.Context, ev core.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) kinds() []core.EventKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]core.EventKind, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Kind)
	}
	return out
}

func newTestLedger(t *testing.T) (*LedgerService, *memory.Store, *recordingPublisher) {
	t.Helper()
	store := memory.New()
	pub := &recordingPublisher{}
	return NewLedgerService(store, pub), store, pub
}

func TestLedgerService_PersonLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _, pub := newTestLedger(t)

	p, err := svc.CreatePerson(ctx, "  Ana  ", 34)
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.Name)

	_, err = svc.CreatePerson(ctx, "   ", 34)
	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, core.CodeInvalidName, ve.Code)

	updated, err := svc.UpdatePerson(ctx, p.ID, "Ana Paula", 35)
	require.NoError(t, err)
	assert.Equal(t, 35, updated.Age)

	_, err = svc.UpdatePerson(ctx, p.ID, "Ana", -1)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, core.CodeInvalidAge, ve.Code)

	_, err = svc.UpdatePerson(ctx, 404, "Ghost", 20)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.False(t, core.IsValidation(err))

	removed, err := svc.DeletePerson(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, removed)

	_, err = svc.GetPerson(ctx, p.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.Equal(t, []core.EventKind{
		core.EventPersonCreated,
		core.EventPersonUpdated,
		core.EventPersonDeleted,
	}, pub.kinds())
}

func TestLedgerService_CreateTransaction(t *testing.T) {
	ctx := context.Background()
	svc, _, pub := newTestLedger(t)

	adult, err := svc.CreatePerson(ctx, "Adult", 40)
	require.NoError(t, err)
	minor, err := svc.CreatePerson(ctx, "Minor", 12)
	require.NoError(t, err)
	salary, err := svc.CreateCategory(ctx, "Salary", "INCOME")
	require.NoError(t, err)
	misc, err := svc.CreateCategory(ctx, "Misc", "both")
	require.NoError(t, err)

	tests := []struct {
		name     string
		in       core.TransactionInput
		wantCode string
		wantIs   error
	}{
		{
			name:     "empty description",
			in:       core.TransactionInput{Description: " ", Value: core.MoneyFromCents(100), Type: "expense", CategoryID: misc.ID, PersonID: adult.ID},
			wantCode: core.CodeInvalidDescription,
			wantIs:   core.ErrInvalidInput,
		},
		{
			name:     "missing person",
			in:       core.TransactionInput{Description: "x", Value: core.MoneyFromCents(100), Type: "expense", CategoryID: misc.ID, PersonID: 999},
			wantCode: core.CodePersonNotFound,
			wantIs:   core.ErrPersonNotFound,
		},
		{
			name:     "income only category",
			in:       core.TransactionInput{Description: "x", Value: core.MoneyFromCents(100), Type: "expense", CategoryID: salary.ID, PersonID: adult.ID},
			wantCode: core.CodeCategoryIncomeOnly,
			wantIs:   core.ErrInvalidInput,
		},
		{
			name:     "minor income",
			in:       core.TransactionInput{Description: "allowance", Value: core.MoneyFromCents(100), Type: "income", CategoryID: misc.ID, PersonID: minor.ID},
			wantCode: core.CodeMinorIncome,
			wantIs:   core.ErrInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTransaction(ctx, tt.in)
			var ve *core.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantCode, ve.Code)
			assert.ErrorIs(t, err, tt.wantIs)
		})
	}

	detail, err := svc.CreateTransaction(ctx, core.TransactionInput{
		Description: " June salary ", Value: core.MoneyFromCents(500000), Type: " Income ",
		CategoryID: salary.ID, PersonID: adult.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "June salary", detail.Description)
	assert.Equal(t, core.TypeIncome, detail.Type)
	assert.Equal(t, "Salary", detail.Category.Description)
	assert.Equal(t, "Adult", detail.Person.Name)

	kinds := pub.kinds()
	assert.Equal(t, core.EventTransactionCreated, kinds[len(kinds)-1])
	last := pub.events[len(pub.events)-1]
	assert.Equal(t, adult.ID, last.PersonID)
	assert.Equal(t, salary.ID, last.CategoryID)
}

func TestLedgerService_DeleteCascadesAndReportsCount(t *testing.T) {
	ctx := context.Background()
	svc, _, pub := newTestLedger(t)

	p, _ := svc.CreatePerson(ctx, "P", 30)
	c, _ := svc.CreateCategory(ctx, "Food", "expense")
	for range 3 {
		_, err := svc.CreateTransaction(ctx, core.TransactionInput{
			Description: "lunch", Value: core.MoneyFromCents(2500), Type: "expense", CategoryID: c.ID, PersonID: p.ID,
		})
		require.NoError(t, err)
	}

	removed, err := svc.DeletePerson(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	page, err := svc.ListTransactions(ctx, core.NewPageRequest(1, 10))
	require.NoError(t, err)
	assert.Zero(t, page.TotalItems)
	assert.Empty(t, page.Items)

	last := pub.events[len(pub.events)-1]
	assert.Equal(t, core.EventPersonDeleted, last.Kind)
	assert.Equal(t, 3, last.Removed)

	_, err = svc.DeletePerson(ctx, p.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestLedgerService_PublishFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewLedgerService(store, &recordingPublisher{err: errors.New("broker down")})

	p, err := svc.CreatePerson(ctx, "Ana", 30)
	require.NoError(t, err)

	got, err := store.GetPerson(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	noEvents := NewLedgerService(store, nil)
	_, err = noEvents.CreateCategory(ctx, "Rent", "expense")
	assert.NoError(t, err)
}

func TestLedgerService_ListPaging(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestLedger(t)

	for _, name := range []string{"E", "D", "C", "B", "A"} {
		_, err := svc.CreatePerson(ctx, name, 20)
		require.NoError(t, err)
	}

	var seen []string
	first, err := svc.ListPeople(ctx, core.NewPageRequest(1, 2))
	require.NoError(t, err)
	assert.Equal(t, 5, first.TotalItems)
	assert.Equal(t, 3, first.TotalPages)

	for page := 1; page <= first.TotalPages; page++ {
		p, err := svc.ListPeople(ctx, core.NewPageRequest(page, 2))
		require.NoError(t, err)
		for _, person := range p.Items {
			seen = append(seen, person.Name)
		}
	}
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, seen)

	beyond, err := svc.ListPeople(ctx, core.NewPageRequest(9, 2))
	require.NoError(t, err)
	assert.NotNil(t, beyond.Items)
	assert.Empty(t, beyond.Items)

	cats, err := svc.ListCategories(ctx, core.NewPageRequest(0, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, cats.Page)
	assert.Equal(t, core.DefaultPageSize, cats.PageSize)
}
