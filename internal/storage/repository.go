package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"gastos/internal/core"
	"gastos/internal/ports"

	_ "modernc.org/sqlite"
)

var _ ports.Store = (*SQLiteRepository)(nil)

// SQLiteRepository is the durable entity store.
type SQLiteRepository struct {
	db *sql.DB
}

// DSN builds the modernc sqlite data source name for dbPath. Foreign keys are
// enabled on every pooled connection; cascades depend on it.
func DSN(dbPath string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Set("_txlock", "immediate")
	return "file:" + dbPath + "?" + q.Encode()
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", DSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// People

func (r *SQLiteRepository) CountPeople(ctx context.Context) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM people")
}

func (r *SQLiteRepository) ListPeople(ctx context.Context, offset, limit int) ([]core.Person, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, age FROM people ORDER BY name, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	defer rows.Close()
	return scanPeople(rows)
}

func (r *SQLiteRepository) GetPerson(ctx context.Context, id int64) (core.Person, error) {
	var p core.Person
	err := r.db.QueryRowContext(ctx, `SELECT id, name, age FROM people WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Age)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Person{}, fmt.Errorf("get person %d: %w", id, core.ErrPersonNotFound)
	}
	if err != nil {
		return core.Person{}, fmt.Errorf("get person %d: %w", id, err)
	}
	return p, nil
}

func (r *SQLiteRepository) CreatePerson(ctx context.Context, in core.ValidPerson) (core.Person, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO people (name, age) VALUES (?, ?)`, in.Name, in.Age)
	if err != nil {
		return core.Person{}, fmt.Errorf("create person: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Person{}, fmt.Errorf("create person: last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Person saved to SQLite", "id", id, "age", in.Age)
	return core.Person{ID: id, Name: in.Name, Age: in.Age}, nil
}

func (r *SQLiteRepository) UpdatePerson(ctx context.Context, id int64, in core.ValidPerson) (core.Person, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE people SET name = ?, age = ? WHERE id = ?`, in.Name, in.Age, id)
	if err != nil {
		return core.Person{}, fmt.Errorf("update person %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return core.Person{}, fmt.Errorf("update person %d: rows affected: %w", id, err)
	} else if n == 0 {
		return core.Person{}, fmt.Errorf("update person %d: %w", id, core.ErrPersonNotFound)
	}
	return core.Person{ID: id, Name: in.Name, Age: in.Age}, nil
}

// DeletePerson relies on ON DELETE CASCADE; the count and the delete share one
// transaction so the reported number matches what was removed.
func (r *SQLiteRepository) DeletePerson(ctx context.Context, id int64) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("delete person %d: begin: %w", id, err)
	}
	defer tx.Rollback()

	var removed int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE person_id = ?`, id).Scan(&removed); err != nil {
		return 0, fmt.Errorf("delete person %d: count transactions: %w", id, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM people WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete person %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return 0, fmt.Errorf("delete person %d: rows affected: %w", id, err)
	} else if n == 0 {
		return 0, fmt.Errorf("delete person %d: %w", id, core.ErrPersonNotFound)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("delete person %d: commit: %w", id, err)
	}

	slog.InfoContext(ctx, "Person deleted from SQLite", "id", id, "transactions_removed", removed)
	return removed, nil
}

// Categories

func (r *SQLiteRepository) CountCategories(ctx context.Context) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM categories")
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, offset, limit int) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, purpose FROM categories ORDER BY description, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	return scanCategories(rows)
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx, `SELECT id, description, purpose FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Description, &c.Purpose)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, core.ErrCategoryNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, in core.ValidCategory) (core.Category, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO categories (description, purpose) VALUES (?, ?)`,
		in.Description, string(in.Purpose))
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Category saved to SQLite", "id", id, "purpose", in.Purpose)
	return core.Category{ID: id, Description: in.Description, Purpose: in.Purpose}, nil
}

// Transactions

const transactionDetailSelect = `
SELECT t.id, t.description, t.value_cents, t.type, t.category_id, t.person_id,
       c.id, c.description, c.purpose,
       p.id, p.name, p.age
FROM transactions t
JOIN categories c ON c.id = t.category_id
JOIN people p ON p.id = t.person_id`

func (r *SQLiteRepository) CountTransactions(ctx context.Context) (int, error) {
	return r.count(ctx, "SELECT COUNT(*) FROM transactions")
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, offset, limit int) ([]core.TransactionDetail, error) {
	rows, err := r.db.QueryContext(ctx, transactionDetailSelect+` ORDER BY t.id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := []core.TransactionDetail{}
	for rows.Next() {
		d, err := scanTransactionDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.TransactionDetail, error) {
	row := r.db.QueryRowContext(ctx, transactionDetailSelect+` WHERE t.id = ?`, id)
	d, err := scanTransactionDetail(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.TransactionDetail{}, fmt.Errorf("get transaction %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.TransactionDetail{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return d, nil
}

// CreateTransaction re-checks both references inside the write transaction so
// a person deleted after validation yields ErrPersonNotFound instead of a
// foreign key failure.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, in core.ValidTransaction) (core.Transaction, error) {
	cents, err := in.Value.Cents()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: begin: %w", err)
	}
	defer tx.Rollback()

	if ok, err := exists(ctx, tx, `SELECT EXISTS (SELECT 1 FROM people WHERE id = ?)`, in.PersonID); err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	} else if !ok {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", core.ErrPersonNotFound)
	}
	if ok, err := exists(ctx, tx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = ?)`, in.CategoryID); err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	} else if !ok {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", core.ErrCategoryNotFound)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (description, value_cents, type, category_id, person_id) VALUES (?, ?, ?, ?, ?)`,
		in.Description, cents, string(in.Type), in.CategoryID, in.PersonID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: last insert id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: commit: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"type", in.Type,
		"value_cents", cents,
		"person_id", in.PersonID,
		"category_id", in.CategoryID)

	return core.Transaction{
		ID:          id,
		Description: in.Description,
		Value:       in.Value,
		Type:        in.Type,
		CategoryID:  in.CategoryID,
		PersonID:    in.PersonID,
	}, nil
}

// Snapshot reads the whole ledger inside one transaction.
func (r *SQLiteRepository) Snapshot(ctx context.Context) (core.Snapshot, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("snapshot: begin: %w", err)
	}
	defer tx.Rollback()

	var snap core.Snapshot

	rows, err := tx.QueryContext(ctx, `SELECT id, name, age FROM people ORDER BY id`)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("snapshot people: %w", err)
	}
	snap.People, err = scanPeople(rows)
	rows.Close()
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("snapshot people: %w", err)
	}

	rows, err = tx.QueryContext(ctx, `SELECT id, description, purpose FROM categories ORDER BY id`)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("snapshot categories: %w", err)
	}
	snap.Categories, err = scanCategories(rows)
	rows.Close()
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("snapshot categories: %w", err)
	}

	rows, err = tx.QueryContext(ctx,
		`SELECT id, description, value_cents, type, category_id, person_id FROM transactions ORDER BY id`)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("snapshot transactions: %w", err)
	}
	snap.Transactions, err = scanTransactions(rows)
	rows.Close()
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("snapshot transactions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Snapshot{}, fmt.Errorf("snapshot: commit: %w", err)
	}
	return snap, nil
}

func (r *SQLiteRepository) count(ctx context.Context, query string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func exists(ctx context.Context, tx *sql.Tx, query string, id int64) (bool, error) {
	var ok bool
	if err := tx.QueryRowContext(ctx, query, id).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPeople(rows *sql.Rows) ([]core.Person, error) {
	out := []core.Person{}
	for rows.Next() {
		var p core.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.Age); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanCategories(rows *sql.Rows) ([]core.Category, error) {
	out := []core.Category{}
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Description, &c.Purpose); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	out := []core.Transaction{}
	for rows.Next() {
		var (
			t     core.Transaction
			cents int64
		)
		if err := rows.Scan(&t.ID, &t.Description, &cents, &t.Type, &t.CategoryID, &t.PersonID); err != nil {
			return nil, err
		}
		t.Value = core.MoneyFromCents(cents)
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTransactionDetail(s scanner) (core.TransactionDetail, error) {
	var (
		d     core.TransactionDetail
		cents int64
	)
	err := s.Scan(
		&d.ID, &d.Description, &cents, &d.Type, &d.CategoryID, &d.PersonID,
		&d.Category.ID, &d.Category.Description, &d.Category.Purpose,
		&d.Person.ID, &d.Person.Name, &d.Person.Age,
	)
	if err != nil {
		return core.TransactionDetail{}, err
	}
	d.Value = core.MoneyFromCents(cents)
	return d, nil
}
