package orm_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mickamy/reviewdb/orm"
)

// recordingDriver is a database/sql driver that only tracks transactions.
type recordingDriver struct {
	mu        sync.Mutex
	opts      []driver.TxOptions
	commits   int
	rollbacks int
}

func (d *recordingDriver) Open(string) (driver.Conn, error) { return &recordingConn{d: d}, nil }

type recordingConn struct{ d *recordingDriver }

func (c *recordingConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("recording driver: no statements")
}
func (c *recordingConn) Close() error              { return nil }
func (c *recordingConn) Begin() (driver.Tx, error) { return c.BeginTx(context.Background(), driver.TxOptions{}) }

func (c *recordingConn) BeginTx(_ context.Context, opts driver.TxOptions) (driver.Tx, error) {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	c.d.opts = append(c.d.opts, opts)
	return &recordingTx{d: c.d}, nil
}

type recordingTx struct{ d *recordingDriver }

func (t *recordingTx) Commit() error {
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	t.d.commits++
	return nil
}

func (t *recordingTx) Rollback() error {
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	t.d.rollbacks++
	return nil
}

var driverSeq atomic.Int64

func openRecording(t *testing.T) (*orm.DB, *recordingDriver) {
	t.Helper()

	d := &recordingDriver{}
	name := fmt.Sprintf("orm-recording-%d", driverSeq.Add(1))
	sql.Register(name, d)
	raw, err := sql.Open(name, "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = raw.Close() })
	return orm.New(raw, orm.SQLite), d
}

func TestTransactionCommits(t *testing.T) {
	t.Parallel()

	db, d := openRecording(t)
	if err := db.Transaction(t.Context(), func(*orm.Tx) error { return nil }); err != nil {
		t.Fatalf("Transaction: %v", err)
	}
	if d.commits != 1 || d.rollbacks != 0 {
		t.Errorf("commits = %d, rollbacks = %d, want 1, 0", d.commits, d.rollbacks)
	}
	if d.opts[0] != (driver.TxOptions{}) {
		t.Errorf("opts = %+v, want defaults", d.opts[0])
	}
}

func TestTransactionRollsBackOnError(t *testing.T) {
	t.Parallel()

	db, d := openRecording(t)
	boom := errors.New("boom")
	err := db.Transaction(t.Context(), func(*orm.Tx) error { return boom })
	if err != boom {
		t.Fatalf("err = %v, want the error returned by fn", err)
	}
	if d.commits != 0 || d.rollbacks != 1 {
		t.Errorf("commits = %d, rollbacks = %d, want 0, 1", d.commits, d.rollbacks)
	}
}

func TestTransactionRollsBackOnPanic(t *testing.T) {
	t.Parallel()

	db, d := openRecording(t)
	func() {
		defer func() {
			if recover() == nil {
				t.Error("panic was swallowed")
			}
		}()
		_ = db.Transaction(t.Context(), func(*orm.Tx) error { panic("boom") })
	}()
	if d.commits != 0 || d.rollbacks != 1 {
		t.Errorf("commits = %d, rollbacks = %d, want 0, 1", d.commits, d.rollbacks)
	}
}

func TestTransactionWithPassesOptions(t *testing.T) {
	t.Parallel()

	db, d := openRecording(t)
	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	if err := db.TransactionWith(t.Context(), opts, func(*orm.Tx) error { return nil }); err != nil {
		t.Fatalf("TransactionWith: %v", err)
	}
	got := d.opts[0]
	if got.Isolation != driver.IsolationLevel(sql.LevelRepeatableRead) || !got.ReadOnly {
		t.Errorf("opts = %+v, want repeatable read, read-only", got)
	}
}

type countingLogger struct{ n atomic.Int64 }

func (l *countingLogger) Log(context.Context, string, ...any) { l.n.Add(1) }

func TestDebugLogsInsideTransactions(t *testing.T) {
	t.Parallel()

	db, _ := openRecording(t)
	l := &countingLogger{}
	dbg := db.Debug(l)
	if dbg.Dialect() != orm.SQLite || dbg.SQL() != db.SQL() {
		t.Fatal("Debug must keep the dialect and pool")
	}

	_ = dbg.Transaction(t.Context(), func(tx *orm.Tx) error {
		_, _ = tx.ExecContext(t.Context(), "SELECT 1")
		return nil
	})
	_, _ = db.ExecContext(t.Context(), "SELECT 1")
	if got := l.n.Load(); got != 1 {
		t.Errorf("logged %d queries, want 1", got)
	}
}
