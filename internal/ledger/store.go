package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "spendtrack/internal/errors"
	"spendtrack/internal/localcache"
	"spendtrack/internal/logger"
	"spendtrack/internal/remote"
	"spendtrack/internal/uuid"
)

// Local cache keys.
const (
	KeyBudget       = "budget"
	KeyTransactions = "transactions"
	KeyThreshold    = "balanceThreshold"
	KeyOrphaned     = "orphanedTransactions"
	KeyReplaced     = "replacedTransactions"
)

// RemoteStore is the authoritative, network-reachable transaction store.
type RemoteStore interface {
	ListTransactions(ctx context.Context) ([]remote.Record, error)
	CreateTransaction(ctx context.Context, rec remote.NewRecord) (*remote.Record, error)
	DeleteTransaction(ctx context.Context, id string) error
}

// Source names where a load was satisfied from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceCache  Source = "cache"
	SourceEmpty  Source = "empty"
)

// Outcome describes how a store operation completed. Warnings are advisory:
// the operation itself has been applied to the in-memory collection.
type Outcome struct {
	Source   Source
	Degraded bool
	Warnings []*apperrors.AppError
}

func (o *Outcome) warn(err *apperrors.AppError) {
	o.Warnings = append(o.Warnings, err)
}

func (o *Outcome) degrade(err *apperrors.AppError) {
	o.Degraded = true
	o.warn(err)
}

// SyncReport counts what a Sync pass reconciled.
type SyncReport struct {
	Pushed        int `json:"pushed"`
	Deleted       int `json:"deleted"`
	StillPending  int `json:"still_pending"`
	StillOrphaned int `json:"still_orphaned"`
}

// Store owns the in-memory transaction collection and is the only writer of
// the local cache. Every mutation builds the next collection off to the
// side and swaps it in whole, so readers never observe a partial update.
type Store struct {
	remote RemoteStore
	cache  localcache.Store
	log    *zap.SugaredLogger

	mu           sync.RWMutex
	transactions []Transaction
	orphans      []Transaction
	replaced     []Transaction
	budget       decimal.Decimal
	threshold    decimal.Decimal
}

// NewStore creates an empty store. Call Load to populate it.
func NewStore(remote RemoteStore, cache localcache.Store) *Store {
	return &Store{
		remote:    remote,
		cache:     cache,
		log:       logger.Named("ledger"),
		budget:    decimal.Zero,
		threshold: decimal.Zero,
	}
}

// Transactions returns a copy of the current collection.
func (s *Store) Transactions() []Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.transactions)
}

// Budget returns the starting balance.
func (s *Store) Budget() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.budget
}

// Threshold returns the low-balance alert threshold.
func (s *Store) Threshold() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.threshold
}

// Current returns the collection, budget and threshold as of one instant.
func (s *Store) Current() ([]Transaction, decimal.Decimal, decimal.Decimal) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.transactions), s.budget, s.threshold
}

// Orphans returns the records whose remote delete is still outstanding.
func (s *Store) Orphans() []Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.orphans)
}

// Replaced returns the remote records hidden by the last ReplaceAll.
func (s *Store) Replaced() []Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.replaced)
}

// Load fetches the collection from the remote store and mirrors it into the
// cache. When the remote store fails, the cached collection is used instead,
// or an empty one if nothing was cached. Budget and threshold always come
// from the cache. Remote records superseded by ReplaceAll stay hidden.
func (s *Store) Load(ctx context.Context) Outcome {
	var out Outcome

	budget := s.readAmount(KeyBudget, &out)
	threshold := s.readAmount(KeyThreshold, &out)
	orphans := s.readList(KeyOrphaned, &out)
	replaced := s.readList(KeyReplaced, &out)
	cached := s.readList(KeyTransactions, &out)

	records, err := s.remote.ListTransactions(ctx)
	if err != nil {
		out.degrade(asAppError(apperrors.ErrRemoteUnavailable, err))
		out.Source = SourceCache
		if cached == nil {
			out.Source = SourceEmpty
		}
		s.log.Warnw("remote unavailable, serving from cache",
			"source", out.Source,
			"cached", len(cached),
			"error", err,
		)

		s.mu.Lock()
		s.transactions = nonNil(cached)
		s.orphans = orphans
		s.replaced = replaced
		s.budget = budget
		s.threshold = threshold
		s.mu.Unlock()
		return out
	}

	tombstoned := make(map[string]bool, len(orphans))
	for _, o := range orphans {
		tombstoned[o.ID] = true
	}

	hidden := make(map[string]bool, len(replaced))
	for _, h := range replaced {
		hidden[h.ID] = true
	}

	next := make([]Transaction, 0, len(records))
	seen := make(map[string]bool, len(records))
	var stillHidden []Transaction
	for _, r := range records {
		t := fromRecord(r)
		if hidden[t.ID] {
			stillHidden = append(stillHidden, t)
			continue
		}
		if tombstoned[t.ID] {
			t.State = Orphaned
		}
		seen[t.ID] = true
		next = append(next, t)
	}
	carried := 0
	for _, t := range cached {
		if t.State == Pending && !seen[t.ID] {
			next = append(next, t)
			carried++
		}
	}

	out.Source = SourceRemote
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeMany(map[string]interface{}{
		KeyTransactions: next,
		KeyReplaced:     nonNil(stillHidden),
	}, &out)
	s.transactions = next
	s.orphans = orphans
	s.replaced = stillHidden
	s.budget = budget
	s.threshold = threshold

	s.log.Infow("ledger loaded",
		"source", out.Source,
		"transactions", len(next),
		"pending", carried,
		"orphaned", len(orphans),
		"hidden", len(stillHidden),
	)
	return out
}

// Append submits t to the remote store and adds the stored record to the
// collection. If the remote write fails, t is kept locally under a
// synthesized id in the Pending state and the outcome is degraded.
func (s *Store) Append(ctx context.Context, t Transaction) (Transaction, Outcome) {
	var out Outcome

	rec, err := s.remote.CreateTransaction(ctx, toNewRecord(t))
	if err != nil {
		t.ID = uuid.NewLocal()
		t.State = Pending
		out.degrade(apperrors.WithMessage(asAppError(apperrors.ErrRemoteUnavailable, err),
			"Failed to save to database, saved locally instead."))
		s.log.Warnw("saved locally instead", "id", t.ID, "error", err)
	} else {
		t = fromRecord(*rec)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(clone(s.transactions), t)
	s.writeList(KeyTransactions, next, &out)
	s.transactions = next
	return t, out
}

// Remove deletes the record matching key. The local removal always happens;
// a failed remote delete leaves a tombstone so Sync can retry it, and is
// reported as degraded. It returns apperrors.ErrTransactionNotFound when no
// record matches.
func (s *Store) Remove(ctx context.Context, key Key) (Transaction, Outcome, error) {
	var out Outcome

	s.mu.RLock()
	idx := indexOf(s.transactions, key)
	var target Transaction
	if idx >= 0 {
		target = s.transactions[idx]
	}
	s.mu.RUnlock()
	if idx < 0 {
		return Transaction{}, out, apperrors.ErrTransactionNotFound
	}

	remoteFailed := false
	if hasRemoteID(target) {
		if err := s.remote.DeleteTransaction(ctx, target.ID); err != nil {
			remoteFailed = true
			out.degrade(apperrors.WithMessage(asAppError(apperrors.ErrRemoteUnavailable, err),
				"Failed to delete from database, the transaction may reappear."))
			s.log.Warnw("remote delete failed, keeping tombstone", "id", target.ID, "error", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// The collection may have changed while the remote call ran.
	idx = indexOf(s.transactions, KeyOf(target))
	next := clone(s.transactions)
	if idx >= 0 {
		next = append(next[:idx], next[idx+1:]...)
	}

	orphans := withoutID(s.orphans, target.ID)
	if remoteFailed {
		target.State = Orphaned
		orphans = append(orphans, target)
	}

	s.writeMany(map[string]interface{}{
		KeyTransactions: next,
		KeyOrphaned:     orphans,
	}, &out)
	s.transactions = next
	s.orphans = orphans
	return target, out, nil
}

// ClearAll deletes every remotely-stored record, continuing past failures,
// then empties the collection and resets budget and threshold to 0 in one
// swap. Records whose delete failed are tombstoned.
func (s *Store) ClearAll(ctx context.Context) Outcome {
	var out Outcome

	s.mu.RLock()
	targets := append(clone(s.transactions), s.orphans...)
	targets = append(targets, s.replaced...)
	s.mu.RUnlock()

	var orphans []Transaction
	seen := make(map[string]bool)
	var lastErr error
	for _, t := range targets {
		if !hasRemoteID(t) || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		if err := s.remote.DeleteTransaction(ctx, t.ID); err != nil {
			t.State = Orphaned
			orphans = append(orphans, t)
			lastErr = err
		}
	}
	if lastErr != nil {
		out.degrade(apperrors.WithMessage(asAppError(apperrors.ErrRemoteUnavailable, lastErr),
			fmt.Sprintf("Failed to delete %d transaction(s) from database, they may reappear.", len(orphans))))
		s.log.Warnw("clear left orphaned transactions", "orphaned", len(orphans), "error", lastErr)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeMany(map[string]interface{}{
		KeyTransactions: []Transaction{},
		KeyOrphaned:     nonNil(orphans),
		KeyReplaced:     []Transaction{},
		KeyBudget:       decimal.Zero.String(),
		KeyThreshold:    decimal.Zero.String(),
	}, &out)
	s.transactions = []Transaction{}
	s.orphans = orphans
	s.replaced = nil
	s.budget = decimal.Zero
	s.threshold = decimal.Zero
	return out
}

// ReplaceAll swaps in a new collection without touching the remote store.
// Records without an id get a local one and are marked Pending. Remote
// records that drop out of the collection are remembered so Load keeps
// them hidden.
func (s *Store) ReplaceAll(transactions []Transaction) Outcome {
	var out Outcome

	next := make([]Transaction, len(transactions))
	for i, t := range transactions {
		if t.ID == "" {
			t.ID = uuid.NewLocal()
			t.State = Pending
		}
		normalizeState(&t)
		next[i] = t
	}

	kept := make(map[string]bool, len(next))
	for _, t := range next {
		kept[t.ID] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	replaced := make([]Transaction, 0, len(s.replaced))
	for _, t := range s.replaced {
		if !kept[t.ID] {
			replaced = append(replaced, t)
		}
	}
	for _, t := range s.transactions {
		if hasRemoteID(t) && !kept[t.ID] && indexOf(replaced, Key{ID: t.ID}) < 0 {
			replaced = append(replaced, t)
		}
	}
	s.writeMany(map[string]interface{}{
		KeyTransactions: next,
		KeyReplaced:     replaced,
	}, &out)
	s.transactions = next
	s.replaced = replaced
	return out
}

// SetBudget stores the starting balance.
func (s *Store) SetBudget(amount decimal.Decimal) Outcome {
	var out Outcome
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeRaw(KeyBudget, amount.String(), &out)
	s.budget = amount
	return out
}

// SetThreshold stores the low-balance alert threshold.
func (s *Store) SetThreshold(amount decimal.Decimal) Outcome {
	var out Outcome
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeRaw(KeyThreshold, amount.String(), &out)
	s.threshold = amount
	return out
}

// Sync retries outstanding remote work: tombstoned deletes first, then
// Pending records, which take the remote id and become Confirmed.
func (s *Store) Sync(ctx context.Context) (SyncReport, Outcome) {
	var out Outcome
	var report SyncReport

	s.mu.RLock()
	orphans := clone(s.orphans)
	current := clone(s.transactions)
	s.mu.RUnlock()

	var lastErr error
	var remaining []Transaction
	deleted := make(map[string]bool)
	for _, o := range orphans {
		if err := s.remote.DeleteTransaction(ctx, o.ID); err != nil {
			remaining = append(remaining, o)
			lastErr = err
			continue
		}
		deleted[o.ID] = true
		report.Deleted++
	}

	confirmed := make(map[string]Transaction)
	for _, t := range current {
		if t.State != Pending {
			continue
		}
		rec, err := s.remote.CreateTransaction(ctx, toNewRecord(t))
		if err != nil {
			report.StillPending++
			lastErr = err
			continue
		}
		confirmed[t.ID] = fromRecord(*rec)
		report.Pushed++
	}
	report.StillOrphaned = len(remaining)

	if lastErr != nil {
		out.degrade(asAppError(apperrors.ErrRemoteUnavailable, lastErr))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		if deleted[t.ID] && t.State == Orphaned {
			continue
		}
		if c, ok := confirmed[t.ID]; ok {
			t = c
		}
		next = append(next, t)
	}
	s.writeMany(map[string]interface{}{
		KeyTransactions: next,
		KeyOrphaned:     nonNil(remaining),
	}, &out)
	s.transactions = next
	s.orphans = remaining

	s.log.Infow("sync finished",
		"pushed", report.Pushed,
		"deleted", report.Deleted,
		"still_pending", report.StillPending,
		"still_orphaned", report.StillOrphaned,
	)
	return report, out
}

func (s *Store) readAmount(key string, out *Outcome) decimal.Decimal {
	raw, ok, err := s.cache.Get(key)
	if err != nil {
		out.warn(apperrors.Wrap(apperrors.ErrCacheUnavailable, err))
		return decimal.Zero
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		s.log.Warnw("ignoring unparseable cached amount", "key", key, "value", raw)
		return decimal.Zero
	}
	return d
}

// readList returns nil when the key is absent or unreadable.
func (s *Store) readList(key string, out *Outcome) []Transaction {
	raw, ok, err := s.cache.Get(key)
	if err != nil {
		out.warn(apperrors.Wrap(apperrors.ErrCacheUnavailable, err))
		return nil
	}
	if !ok {
		return nil
	}
	list := []Transaction{}
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		out.warn(apperrors.Wrap(apperrors.ErrCacheUnavailable, fmt.Errorf("decoding %s: %w", key, err)))
		return nil
	}
	for i := range list {
		normalizeState(&list[i])
	}
	return list
}

func (s *Store) writeList(key string, list []Transaction, out *Outcome) {
	s.writeMany(map[string]interface{}{key: list}, out)
}

func (s *Store) writeMany(values map[string]interface{}, out *Outcome) {
	encoded := make(map[string]string, len(values))
	for k, v := range values {
		if raw, ok := v.(string); ok {
			encoded[k] = raw
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			out.warn(apperrors.Wrap(apperrors.ErrCacheUnavailable, err))
			return
		}
		encoded[k] = string(b)
	}
	if err := s.cache.SetMany(encoded); err != nil {
		out.warn(apperrors.Wrap(apperrors.ErrCacheUnavailable, err))
		s.log.Errorw("cache write failed", "error", err)
	}
}

func (s *Store) writeRaw(key, value string, out *Outcome) {
	if err := s.cache.Set(key, value); err != nil {
		out.warn(apperrors.Wrap(apperrors.ErrCacheUnavailable, err))
		s.log.Errorw("cache write failed", "key", key, "error", err)
	}
}

func asAppError(sentinel *apperrors.AppError, err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code == sentinel.Code {
		return appErr
	}
	return apperrors.Wrap(sentinel, err)
}

func hasRemoteID(t Transaction) bool {
	return t.ID != "" && !uuid.IsLocal(t.ID) && t.State != Pending
}

func indexOf(list []Transaction, key Key) int {
	for i, t := range list {
		if key.Matches(t) {
			return i
		}
	}
	return -1
}

func withoutID(list []Transaction, id string) []Transaction {
	out := make([]Transaction, 0, len(list))
	for _, t := range list {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

func clone(list []Transaction) []Transaction {
	out := make([]Transaction, len(list))
	copy(out, list)
	return out
}

func nonNil(list []Transaction) []Transaction {
	if list == nil {
		return []Transaction{}
	}
	return list
}
