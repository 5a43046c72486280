// Package ports declares the boundaries between the ledger services and the
// adapters that persist, publish and mirror ledger data.
package ports

import (
	"context"

	"gastos/internal/core"
)

type (
	// PersonStore persists people. Missing ids are reported with errors
	// wrapping core.ErrNotFound.
	PersonStore interface {
		CountPeople(ctx context.Context) (int, error)
		// ListPeople returns a window ordered by name, then id.
		ListPeople(ctx context.Context, offset, limit int) ([]core.Person, error)
		GetPerson(ctx context.Context, id int64) (core.Person, error)
		CreatePerson(ctx context.Context, p core.ValidPerson) (core.Person, error)
		UpdatePerson(ctx context.Context, id int64, p core.ValidPerson) (core.Person, error)
		// DeletePerson removes the person and all of their transactions in one
		// atomic step, returning how many transactions were removed.
		DeletePerson(ctx context.Context, id int64) (int, error)
	}

	CategoryStore interface {
		CountCategories(ctx context.Context) (int, error)
		// ListCategories returns a window ordered by description, then id.
		ListCategories(ctx context.Context, offset, limit int) ([]core.Category, error)
		GetCategory(ctx context.Context, id int64) (core.Category, error)
		CreateCategory(ctx context.Context, c core.ValidCategory) (core.Category, error)
	}

	TransactionStore interface {
		CountTransactions(ctx context.Context) (int, error)
		// ListTransactions returns a window ordered by id descending.
		ListTransactions(ctx context.Context, offset, limit int) ([]core.TransactionDetail, error)
		GetTransaction(ctx context.Context, id int64) (core.TransactionDetail, error)
		// CreateTransaction fails with core.ErrPersonNotFound or
		// core.ErrCategoryNotFound if a reference vanished after validation.
		CreateTransaction(ctx context.Context, t core.ValidTransaction) (core.Transaction, error)
	}

	// SnapshotReader returns every person, category and transaction read in a
	// single consistent view, people and categories ordered by id.
	SnapshotReader interface {
		Snapshot(ctx context.Context) (core.Snapshot, error)
	}

	// Store is the full entity store.
	Store interface {
		PersonStore
		CategoryStore
		TransactionStore
		SnapshotReader
		Ping(ctx context.Context) error
		Close() error
	}

	// EventPublisher announces committed ledger changes.
	EventPublisher interface {
		PublishLedgerEvent(ctx context.Context, ev core.LedgerEvent) error
	}

	// LedgerMirror receives a full copy of the ledger, e.g. a spreadsheet.
	LedgerMirror interface {
		Mirror(ctx context.Context, snap core.Snapshot) error
	}
)
