// Package memory is an in-process entity store with the same ordering, cascade
// and not-found behavior as the SQLite store.
package memory

import (
	"bufio"
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gastos/internal/core"
	"gastos/internal/ports"
)

var _ ports.Store = (*Store)(nil)

type Store struct {
	mu sync.RWMutex

	people       map[int64]core.Person
	categories   map[int64]core.Category
	transactions map[int64]core.Transaction

	nextPerson      int64
	nextCategory    int64
	nextTransaction int64
}

func New() *Store {
	return &Store{
		people:       make(map[int64]core.Person),
		categories:   make(map[int64]core.Category),
		transactions: make(map[int64]core.Transaction),
	}
}

// NewFromFiles returns a store seeded with categories read from
// base/seed_categories.txt, one "description;purpose" per line. Blank lines,
// comments and invalid entries are skipped.
func NewFromFiles(base string) *Store {
	s := New()
	for _, line := range readLines(filepath.Join(base, "seed_categories.txt")) {
		desc, purpose, _ := strings.Cut(line, ";")
		vc, err := core.ValidateCategory(desc, purpose)
		if err != nil {
			continue
		}
		_, _ = s.CreateCategory(context.Background(), vc)
	}
	return s
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// People

func (s *Store) CountPeople(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.people), nil
}

func (s *Store) ListPeople(_ context.Context, offset, limit int) ([]core.Person, error) {
	s.mu.RLock()
	all := values(s.people)
	s.mu.RUnlock()

	slices.SortFunc(all, func(a, b core.Person) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return core.Slice(all, offset, limit), nil
}

func (s *Store) GetPerson(_ context.Context, id int64) (core.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.people[id]
	if !ok {
		return core.Person{}, fmt.Errorf("get person %d: %w", id, core.ErrPersonNotFound)
	}
	return p, nil
}

func (s *Store) CreatePerson(_ context.Context, in core.ValidPerson) (core.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPerson++
	p := core.Person{ID: s.nextPerson, Name: in.Name, Age: in.Age}
	s.people[p.ID] = p
	return p, nil
}

func (s *Store) UpdatePerson(_ context.Context, id int64, in core.ValidPerson) (core.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.people[id]; !ok {
		return core.Person{}, fmt.Errorf("update person %d: %w", id, core.ErrPersonNotFound)
	}
	p := core.Person{ID: id, Name: in.Name, Age: in.Age}
	s.people[id] = p
	return p, nil
}

func (s *Store) DeletePerson(_ context.Context, id int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.people[id]; !ok {
		return 0, fmt.Errorf("delete person %d: %w", id, core.ErrPersonNotFound)
	}
	removed := 0
	for txID, t := range s.transactions {
		if t.PersonID == id {
			delete(s.transactions, txID)
			removed++
		}
	}
	delete(s.people, id)
	return removed, nil
}

// Categories

func (s *Store) CountCategories(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.categories), nil
}

func (s *Store) ListCategories(_ context.Context, offset, limit int) ([]core.Category, error) {
	s.mu.RLock()
	all := values(s.categories)
	s.mu.RUnlock()

	slices.SortFunc(all, func(a, b core.Category) int {
		return cmp.Or(strings.Compare(a.Description, b.Description), cmp.Compare(a.ID, b.ID))
	})
	return core.Slice(all, offset, limit), nil
}

func (s *Store) GetCategory(_ context.Context, id int64) (core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, core.ErrCategoryNotFound)
	}
	return c, nil
}

func (s *Store) CreateCategory(_ context.Context, in core.ValidCategory) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCategory++
	c := core.Category{ID: s.nextCategory, Description: in.Description, Purpose: in.Purpose}
	s.categories[c.ID] = c
	return c, nil
}

// Transactions

func (s *Store) CountTransactions(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transactions), nil
}

func (s *Store) ListTransactions(_ context.Context, offset, limit int) ([]core.TransactionDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := values(s.transactions)
	slices.SortFunc(all, func(a, b core.Transaction) int { return cmp.Compare(b.ID, a.ID) })

	page := core.Slice(all, offset, limit)
	out := make([]core.TransactionDetail, 0, len(page))
	for _, t := range page {
		out = append(out, s.detail(t))
	}
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (core.TransactionDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[id]
	if !ok {
		return core.TransactionDetail{}, fmt.Errorf("get transaction %d: %w", id, core.ErrNotFound)
	}
	return s.detail(t), nil
}

func (s *Store) CreateTransaction(_ context.Context, in core.ValidTransaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.people[in.PersonID]; !ok {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", core.ErrPersonNotFound)
	}
	if _, ok := s.categories[in.CategoryID]; !ok {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", core.ErrCategoryNotFound)
	}
	s.nextTransaction++
	t := core.Transaction{
		ID:          s.nextTransaction,
		Description: in.Description,
		Value:       in.Value,
		Type:        in.Type,
		CategoryID:  in.CategoryID,
		PersonID:    in.PersonID,
	}
	s.transactions[t.ID] = t
	return t, nil
}

func (s *Store) Snapshot(context.Context) (core.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := core.Snapshot{
		People:       values(s.people),
		Categories:   values(s.categories),
		Transactions: values(s.transactions),
	}
	slices.SortFunc(snap.People, func(a, b core.Person) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(snap.Categories, func(a, b core.Category) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(snap.Transactions, func(a, b core.Transaction) int { return cmp.Compare(a.ID, b.ID) })
	return snap, nil
}

// detail must be called with the lock held.
func (s *Store) detail(t core.Transaction) core.TransactionDetail {
	return core.TransactionDetail{
		Transaction: t,
		Category:    s.categories[t.CategoryID],
		Person:      s.people[t.PersonID],
	}
}

func values[K comparable, V any](m map[K]V) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
