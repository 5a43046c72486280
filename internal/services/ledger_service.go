package services

import (
	"context"
	"errors"
	"fmt"

	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/ports"
)

// LedgerService runs validation, writes to the store and announces committed
// changes. A nil publisher disables ledger events.
type LedgerService struct {
	store     ports.Store
	publisher ports.EventPublisher
	onCommit  []func()
}

func NewLedgerService(store ports.Store, publisher ports.EventPublisher) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
	}
}

// OnCommit registers fn to run after every successful write. Hooks must be
// registered before the service handles requests.
func (s *LedgerService) OnCommit(fn func()) {
	s.onCommit = append(s.onCommit, fn)
}

// People

func (s *LedgerService) ListPeople(ctx context.Context, req core.PageRequest) (core.Page[core.Person], error) {
	total, err := s.store.CountPeople(ctx)
	if err != nil {
		return core.Page[core.Person]{}, fmt.Errorf("count people: %w", err)
	}
	items, err := s.store.ListPeople(ctx, req.Offset(), req.Limit())
	if err != nil {
		return core.Page[core.Person]{}, fmt.Errorf("list people: %w", err)
	}
	return core.NewPage(req, total, items), nil
}

func (s *LedgerService) GetPerson(ctx context.Context, id int64) (core.Person, error) {
	return s.store.GetPerson(ctx, id)
}

func (s *LedgerService) CreatePerson(ctx context.Context, name string, age int) (core.Person, error) {
	valid, err := core.ValidatePerson(name, age)
	if err != nil {
		return core.Person{}, err
	}
	p, err := s.store.CreatePerson(ctx, valid)
	if err != nil {
		return core.Person{}, fmt.Errorf("create person: %w", err)
	}
	s.committed(ctx, core.NewLedgerEvent(core.EventPersonCreated, p.ID))
	return p, nil
}

// UpdatePerson replaces name and age. Existing transactions are not
// re-validated against the new age.
func (s *LedgerService) UpdatePerson(ctx context.Context, id int64, name string, age int) (core.Person, error) {
	valid, err := core.ValidatePerson(name, age)
	if err != nil {
		return core.Person{}, err
	}
	p, err := s.store.UpdatePerson(ctx, id, valid)
	if err != nil {
		return core.Person{}, err
	}
	s.committed(ctx, core.NewLedgerEvent(core.EventPersonUpdated, p.ID))
	return p, nil
}

// DeletePerson removes the person and every transaction they own. It returns
// the number of transactions removed.
func (s *LedgerService) DeletePerson(ctx context.Context, id int64) (int, error) {
	removed, err := s.store.DeletePerson(ctx, id)
	if err != nil {
		return 0, err
	}
	ev := core.NewLedgerEvent(core.EventPersonDeleted, id)
	ev.Removed = removed
	s.committed(ctx, ev)
	return removed, nil
}

// Categories

func (s *LedgerService) ListCategories(ctx context.Context, req core.PageRequest) (core.Page[core.Category], error) {
	total, err := s.store.CountCategories(ctx)
	if err != nil {
		return core.Page[core.Category]{}, fmt.Errorf("count categories: %w", err)
	}
	items, err := s.store.ListCategories(ctx, req.Offset(), req.Limit())
	if err != nil {
		return core.Page[core.Category]{}, fmt.Errorf("list categories: %w", err)
	}
	return core.NewPage(req, total, items), nil
}

func (s *LedgerService) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	return s.store.GetCategory(ctx, id)
}

func (s *LedgerService) CreateCategory(ctx context.Context, description, purpose string) (core.Category, error) {
	valid, err := core.ValidateCategory(description, purpose)
	if err != nil {
		return core.Category{}, err
	}
	c, err := s.store.CreateCategory(ctx, valid)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	s.committed(ctx, core.NewLedgerEvent(core.EventCategoryCreated, c.ID))
	return c, nil
}

// Transactions

func (s *LedgerService) ListTransactions(ctx context.Context, req core.PageRequest) (core.Page[core.TransactionDetail], error) {
	total, err := s.store.CountTransactions(ctx)
	if err != nil {
		return core.Page[core.TransactionDetail]{}, fmt.Errorf("count transactions: %w", err)
	}
	items, err := s.store.ListTransactions(ctx, req.Offset(), req.Limit())
	if err != nil {
		return core.Page[core.TransactionDetail]{}, fmt.Errorf("list transactions: %w", err)
	}
	return core.NewPage(req, total, items), nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, id int64) (core.TransactionDetail, error) {
	return s.store.GetTransaction(ctx, id)
}

// CreateTransaction validates in against the current people and categories
// and persists it. A person or category removed between validation and the
// write is reported as the same rejection validation would have produced.
func (s *LedgerService) CreateTransaction(ctx context.Context, in core.TransactionInput) (core.TransactionDetail, error) {
	valid, err := core.ValidateTransaction(ctx, in, s.store.GetPerson, s.store.GetCategory)
	if err != nil {
		return core.TransactionDetail{}, err
	}

	t, err := s.store.CreateTransaction(ctx, valid)
	switch {
	case errors.Is(err, core.ErrPersonNotFound):
		return core.TransactionDetail{}, core.NewReferenceError("personId", core.CodePersonNotFound, "person not found", core.ErrPersonNotFound)
	case errors.Is(err, core.ErrCategoryNotFound):
		return core.TransactionDetail{}, core.NewReferenceError("categoryId", core.CodeCategoryNotFound, "category not found", core.ErrCategoryNotFound)
	case err != nil:
		return core.TransactionDetail{}, fmt.Errorf("create transaction: %w", err)
	}

	log.FromContext(ctx).WithComponent(log.ComponentLedger).InfoContext(ctx, "Transaction recorded",
		log.NewFields().WithTransaction(t.ID, t.PersonID, t.CategoryID, t.Value.String(), string(t.Type)).ToSlice()...)

	ev := core.NewLedgerEvent(core.EventTransactionCreated, t.ID)
	ev.PersonID = t.PersonID
	ev.CategoryID = t.CategoryID
	s.committed(ctx, ev)

	detail, err := s.store.GetTransaction(ctx, t.ID)
	if err != nil {
		return core.TransactionDetail{Transaction: t}, nil
	}
	return detail, nil
}

func (s *LedgerService) committed(ctx context.Context, ev core.LedgerEvent) {
	for _, fn := range s.onCommit {
		fn()
	}
	s.publish(ctx, ev)
}

func (s *LedgerService) publish(ctx context.Context, ev core.LedgerEvent) {
	logger := log.FromContext(ctx).WithComponent(log.ComponentAMQP)
	if s.publisher == nil {
		logger.DebugContext(ctx, "AMQP client not available, skipping ledger event",
			log.FieldEventKind, ev.Kind)
		return
	}
	// The write is committed; a lost event is repaired by the worker's periodic resync.
	if err := s.publisher.PublishLedgerEvent(ctx, ev); err != nil {
		logger.ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldEventID, ev.ID,
			log.FieldEventKind, ev.Kind,
			log.FieldError, err.Error())
	}
}
