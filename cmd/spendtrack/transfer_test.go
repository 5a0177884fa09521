package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"spendtrack/internal/ledger"
	"spendtrack/internal/localcache"
	"spendtrack/internal/logger"
	"spendtrack/internal/reconcile"
	"spendtrack/internal/remote"
)

func init() {
	logger.Init("test")
}

type offlineRemote struct{}

func (offlineRemote) ListTransactions(context.Context) ([]remote.Record, error) {
	return nil, errors.New("offline")
}

func (offlineRemote) CreateTransaction(context.Context, remote.NewRecord) (*remote.Record, error) {
	return nil, errors.New("offline")
}

func (offlineRemote) DeleteTransaction(context.Context, string) error {
	return errors.New("offline")
}

type closeRecorder struct {
	bytes.Buffer
	closeErr error
	closed   bool
}

func (w *closeRecorder) Close() error {
	w.closed = true
	return w.closeErr
}

func TestExportTo(t *testing.T) {
	ctx := context.Background()
	ctrl := reconcile.NewController(ledger.NewStore(offlineRemote{}, localcache.NewMemory()))
	if _, err := ctrl.RecordTransaction(ctx, ledger.Details{
		Name: "Salary", Category: "Work", Date: "2024-03-01", Type: "Revenue", Value: "500",
	}); err != nil {
		t.Fatalf("RecordTransaction: %v", err)
	}

	t.Run("writes and closes", func(t *testing.T) {
		w := &closeRecorder{}
		if err := exportTo(ctx, ctrl, w); err != nil {
			t.Fatalf("exportTo: %v", err)
		}
		if !w.closed {
			t.Error("expected writer to be closed")
		}
		if !strings.Contains(w.String(), "Salary,Work,2024-03-01,Revenue,500.00") {
			t.Errorf("unexpected export %q", w.String())
		}
	})

	t.Run("close failure is returned", func(t *testing.T) {
		diskFull := errors.New("no space left on device")
		w := &closeRecorder{closeErr: diskFull}
		if err := exportTo(ctx, ctrl, w); !errors.Is(err, diskFull) {
			t.Fatalf("expected close error, got %v", err)
		}
	})
}
