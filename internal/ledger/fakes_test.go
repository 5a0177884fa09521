package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	apperrors "spendtrack/internal/errors"
	"spendtrack/internal/localcache"
	"spendtrack/internal/logger"
	"spendtrack/internal/remote"
)

func init() {
	logger.Init("test")
}

var errOffline = apperrors.Wrap(apperrors.ErrRemoteUnavailable, errors.New("dial tcp: connection refused"))

// fakeRemote is an in-memory remote store. Each operation can be made to
// fail through its fail flag.
type fakeRemote struct {
	mu       sync.Mutex
	records  []remote.Record
	next     int
	deleted  []string
	failList bool
	failPost bool
	failDel  bool
}

func (f *fakeRemote) ListTransactions(context.Context) ([]remote.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList {
		return nil, errOffline
	}
	out := make([]remote.Record, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeRemote) CreateTransaction(_ context.Context, rec remote.NewRecord) (*remote.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPost {
		return nil, errOffline
	}
	f.next++
	r := remote.Record{
		ID:       fmt.Sprintf("srv-%d", f.next),
		Name:     rec.Name,
		Category: rec.Category,
		Date:     rec.Date,
		Type:     rec.Type,
		Value:    rec.Value.Round(2),
	}
	f.records = append(f.records, r)
	return &r, nil
}

func (f *fakeRemote) DeleteTransaction(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDel {
		return errOffline
	}
	f.deleted = append(f.deleted, id)
	for i, r := range f.records {
		if r.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeRemote) seed(records ...remote.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, records...)
}

func (f *fakeRemote) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func (f *fakeRemote) set(fn func(f *fakeRemote)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

var _ RemoteStore = (*fakeRemote)(nil)

func newTestStore(t *testing.T) (*Store, *fakeRemote, *localcache.MemoryStore) {
	t.Helper()
	r := &fakeRemote{}
	c := localcache.NewMemory()
	return NewStore(r, c), r, c
}

func fieldNames(t *testing.T, err error) map[string]bool {
	t.Helper()
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}
	if appErr.Code != apperrors.ErrValidation.Code {
		t.Fatalf("expected %s, got %s", apperrors.ErrValidation.Code, appErr.Code)
	}
	names := make(map[string]bool, len(appErr.Fields))
	for _, f := range appErr.Fields {
		names[f.Field] = true
	}
	return names
}

func hasWarning(out Outcome, code string) bool {
	for _, w := range out.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}
