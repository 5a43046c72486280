// Package google mirrors the ledger into a Google Sheets spreadsheet. Every
// mirror run rewrites three tabs from a store snapshot, so the sheet is a
// read-only view and never a source of truth.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/ports"
)

const (
	TabTransactions    = "Transactions"
	TabPersonTotals    = "Totals by person"
	TabCategoryTotals  = "Totals by category"
	valueInputOption   = "USER_ENTERED"
	grandTotalRowLabel = "Total"
	// lastColumn bounds the stale-row clear; every tab is narrower.
	lastColumn = "Z"
)

var _ ports.LedgerMirror = (*Client)(nil)

// Credentials selects the service account key. JSON wins over File.
type Credentials struct {
	JSON string
	File string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	logger        *log.Logger
}

// Tab is one sheet tab and the rows written to it, header first.
type Tab struct {
	Name string
	Rows [][]any
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, spreadsheetID string, creds Credentials, logger *log.Logger) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, spreadsheetID, logger), nil
}

// NewWithService wraps an already configured service.
func NewWithService(svc *gsheet.Service, spreadsheetID string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		logger:        logger.WithComponent(log.ComponentSheets),
	}
}

func newSheetsService(ctx context.Context, creds Credentials) (*gsheet.Service, error) {
	credentialsJSON := []byte(strings.TrimSpace(creds.JSON))
	if len(credentialsJSON) == 0 {
		path := strings.TrimSpace(creds.File)
		if path == "" {
			return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
		}
		var err error
		credentialsJSON, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Mirror replaces the contents of the mirror tabs with snap. Missing tabs are
// created first.
func (c *Client) Mirror(ctx context.Context, snap core.Snapshot) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	tabs := BuildTabs(snap)

	if err := c.ensureTabs(ctx, tabs); err != nil {
		return err
	}

	data := make([]*gsheet.ValueRange, 0, len(tabs))
	stale := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		data = append(data, &gsheet.ValueRange{Range: sheetRange(tab.Name, "A1"), Values: tab.Rows})
		stale = append(stale, sheetRange(tab.Name, fmt.Sprintf("A%d:%s", len(tab.Rows)+1, lastColumn)))
	}

	// Overwrite in place, then drop rows left over from a longer previous run.
	_, err := c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateValuesRequest{
		ValueInputOption: valueInputOption,
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write mirror tabs: %w", err)
	}

	_, err = c.svc.Spreadsheets.Values.BatchClear(c.spreadsheetID, &gsheet.BatchClearValuesRequest{
		Ranges: stale,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear stale mirror rows: %w", err)
	}

	c.logger.InfoContext(ctx, "Ledger mirrored",
		"people", len(snap.People),
		"categories", len(snap.Categories),
		"transactions", len(snap.Transactions))
	return nil
}

func (c *Client) ensureTabs(ctx context.Context, tabs []Tab) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet %s: %w", c.spreadsheetID, err)
	}

	existing := make(map[string]bool, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			existing[sh.Properties.Title] = true
		}
	}

	var requests []*gsheet.Request
	for _, tab := range tabs {
		if existing[tab.Name] {
			continue
		}
		requests = append(requests, &gsheet.Request{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: tab.Name}},
		})
	}
	if len(requests) == 0 {
		return nil
	}

	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("add mirror tabs: %w", err)
	}
	c.logger.InfoContext(ctx, "Created mirror tabs", "count", len(requests))
	return nil
}

// BuildTabs renders the three mirror tabs.
func BuildTabs(snap core.Snapshot) []Tab {
	return []Tab{
		{Name: TabTransactions, Rows: transactionRows(snap)},
		{Name: TabPersonTotals, Rows: personTotalsRows(core.TotalsByPerson(snap.People, snap.Transactions))},
		{Name: TabCategoryTotals, Rows: categoryTotalsRows(core.TotalsByCategory(snap.Categories, snap.Transactions))},
	}
}

func transactionRows(snap core.Snapshot) [][]any {
	people := make(map[int64]string, len(snap.People))
	for _, p := range snap.People {
		people[p.ID] = p.Name
	}
	categories := make(map[int64]string, len(snap.Categories))
	for _, c := range snap.Categories {
		categories[c.ID] = c.Description
	}

	rows := make([][]any, 0, len(snap.Transactions)+1)
	rows = append(rows, []any{"ID", "Description", "Value", "Type", "Category", "Person"})
	for _, t := range snap.Transactions {
		rows = append(rows, []any{
			t.ID,
			textCell(t.Description),
			t.Value.String(),
			string(t.Type),
			textCell(categories[t.CategoryID]),
			textCell(people[t.PersonID]),
		})
	}
	return rows
}

func personTotalsRows(r core.Report[core.PersonTotals]) [][]any {
	rows := make([][]any, 0, len(r.Items)+2)
	rows = append(rows, []any{"ID", "Name", "Age", "Income", "Expense", "Balance"})
	for _, it := range r.Items {
		rows = append(rows, []any{
			it.ID, textCell(it.Name), it.Age,
			it.IncomeSum.String(), it.ExpenseSum.String(), it.Balance.String(),
		})
	}
	return append(rows, grandTotalRow(r.GrandTotal))
}

func categoryTotalsRows(r core.Report[core.CategoryTotals]) [][]any {
	rows := make([][]any, 0, len(r.Items)+2)
	rows = append(rows, []any{"ID", "Description", "Purpose", "Income", "Expense", "Balance"})
	for _, it := range r.Items {
		rows = append(rows, []any{
			it.ID, textCell(it.Description), string(it.Purpose),
			it.IncomeSum.String(), it.ExpenseSum.String(), it.Balance.String(),
		})
	}
	return append(rows, grandTotalRow(r.GrandTotal))
}

func grandTotalRow(g core.GrandTotal) []any {
	return []any{"", grandTotalRowLabel, "", g.Income.String(), g.Expense.String(), g.Balance.String()}
}

// textCell keeps user text from being read as a formula under USER_ENTERED.
func textCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@':
		return "'" + s
	}
	return s
}

// sheetRange builds an A1 range, quoting the tab name.
func sheetRange(tab, cells string) string {
	quoted := "'" + strings.ReplaceAll(tab, "'", "''") + "'"
	if cells == "" {
		return quoted
	}
	return quoted + "!" + cells
}
