// Package reconcile exposes the ledger commands a front end drives. Each
// command validates its input, applies it through the ledger store and
// returns the refreshed snapshot together with the low-balance flag.
package reconcile

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"spendtrack/internal/csvio"
	apperrors "spendtrack/internal/errors"
	"spendtrack/internal/ledger"
	"spendtrack/internal/logger"
	"spendtrack/internal/validator"
)

// Result is returned by every command.
type Result struct {
	Snapshot       ledger.Snapshot       `json:"snapshot"`
	Threshold      decimal.Decimal       `json:"threshold"`
	BelowThreshold bool                  `json:"below_threshold"`
	Degraded       bool                  `json:"degraded"`
	Source         ledger.Source         `json:"source,omitempty"`
	Warnings       []*apperrors.AppError `json:"warnings,omitempty"`
	Transaction    *ledger.Transaction   `json:"transaction,omitempty"`
	Skipped        []csvio.RowError      `json:"skipped,omitempty"`
	Sync           *ledger.SyncReport    `json:"sync,omitempty"`
}

// Controller serializes ledger commands for one session. Mutating commands
// queue behind each other; reads go straight to the store.
type Controller struct {
	store *ledger.Store
	guard *semaphore.Weighted
	log   *zap.SugaredLogger
}

// NewController creates a controller over store.
func NewController(store *ledger.Store) *Controller {
	return &Controller{
		store: store,
		guard: semaphore.NewWeighted(1),
		log:   logger.Named("reconcile"),
	}
}

func (c *Controller) acquire(ctx context.Context) error {
	if err := c.guard.Acquire(ctx, 1); err != nil {
		return apperrors.Wrap(apperrors.ErrCommandInFlight, err)
	}
	return nil
}

func (c *Controller) release() { c.guard.Release(1) }

// result builds a Result from the store's current state.
func (c *Controller) result(out ledger.Outcome) *Result {
	transactions, budget, threshold := c.store.Current()
	snapshot := ledger.Summarize(transactions, budget)
	return &Result{
		Snapshot:       snapshot,
		Threshold:      threshold,
		BelowThreshold: ledger.IsBelowThreshold(snapshot.CurrentBalance, threshold),
		Degraded:       out.Degraded,
		Source:         out.Source,
		Warnings:       out.Warnings,
	}
}

// Load populates the ledger from the remote store, or the cache when the
// remote store is unreachable.
func (c *Controller) Load(ctx context.Context) (*Result, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	return c.result(c.store.Load(ctx)), nil
}

// RecordTransaction validates details and appends the transaction.
func (c *Controller) RecordTransaction(ctx context.Context, details ledger.Details) (*Result, error) {
	t, err := details.Parse()
	if err != nil {
		return nil, err
	}

	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	saved, out := c.store.Append(ctx, t)
	res := c.result(out)
	res.Transaction = &saved
	c.log.Infow("transaction recorded", "id", saved.ID, "state", saved.State, "type", saved.Type)
	return res, nil
}

// DeleteTransaction removes the transaction with the given identity. A key
// that matches nothing leaves the ledger unchanged and is reported as a
// warning.
func (c *Controller) DeleteTransaction(ctx context.Context, key ledger.Key) (*Result, error) {
	if key.ID == "" && strings.TrimSpace(key.Name) == "" {
		return nil, apperrors.WithFields(apperrors.ErrValidation,
			[]apperrors.FieldError{{Field: "id", Message: "is required"}})
	}

	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	removed, out, err := c.store.Remove(ctx, key)
	if errors.Is(err, apperrors.ErrTransactionNotFound) {
		out.Warnings = append(out.Warnings, apperrors.ErrTransactionNotFound)
		return c.result(out), nil
	}
	if err != nil {
		return nil, err
	}

	res := c.result(out)
	res.Transaction = &removed
	return res, nil
}

// ClearAll removes every transaction and resets budget and threshold to 0.
func (c *Controller) ClearAll(ctx context.Context) (*Result, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	out := c.store.ClearAll(ctx)
	c.log.Infow("ledger cleared", "degraded", out.Degraded)
	return c.result(out), nil
}

// SetBudget sets the starting balance.
func (c *Controller) SetBudget(ctx context.Context, amount string) (*Result, error) {
	d, err := parseSetting("budget", amount)
	if err != nil {
		return nil, err
	}

	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	return c.result(c.store.SetBudget(d)), nil
}

// SetThreshold sets the low-balance alert threshold.
func (c *Controller) SetThreshold(ctx context.Context, amount string) (*Result, error) {
	d, err := parseSetting("threshold", amount)
	if err != nil {
		return nil, err
	}

	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	return c.result(c.store.SetThreshold(d)), nil
}

// ImportCSV replaces the collection with the valid rows of r. Rows that
// fail validation are skipped and listed in the result. The remote store is
// not contacted; imported records stay Pending until Sync.
func (c *Controller) ImportCSV(ctx context.Context, r io.Reader) (*Result, error) {
	transactions, skipped, err := csvio.Import(r)
	if err != nil {
		return nil, err
	}

	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	out := c.store.ReplaceAll(transactions)
	for _, rowErr := range skipped {
		out.Warnings = append(out.Warnings, rowErr.AppError())
	}
	res := c.result(out)
	res.Skipped = skipped
	c.log.Infow("csv imported", "rows", len(transactions), "skipped", len(skipped))
	return res, nil
}

// ExportCSV writes the collection to w.
func (c *Controller) ExportCSV(ctx context.Context, w io.Writer) (*Result, error) {
	if err := csvio.Export(w, c.store.Transactions()); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return c.result(ledger.Outcome{}), nil
}

// Sync pushes Pending records and retries outstanding deletes.
func (c *Controller) Sync(ctx context.Context) (*Result, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()

	report, out := c.store.Sync(ctx)
	res := c.result(out)
	res.Sync = &report
	return res, nil
}

// Snapshot returns the current state without touching either store.
func (c *Controller) Snapshot() *Result {
	return c.result(ledger.Outcome{})
}

// History returns the filtered, sorted transaction list.
func (c *Controller) History(f ledger.Filter) []ledger.Transaction {
	return ledger.History(c.store.Transactions(), f)
}

// Categories lists the categories in use.
func (c *Controller) Categories() []string {
	return ledger.Categories(c.store.Transactions())
}

func parseSetting(field, amount string) (decimal.Decimal, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return decimal.Zero, apperrors.WithFields(apperrors.ErrValidation,
			[]apperrors.FieldError{{Field: field, Message: "is required"}})
	}
	d, err := validator.ParseDecimal(amount)
	if err != nil {
		return decimal.Zero, apperrors.WithFields(apperrors.ErrValidation,
			[]apperrors.FieldError{{Field: field, Message: "must be a number with at most 10 integer digits"}})
	}
	return d.Round(2), nil
}
