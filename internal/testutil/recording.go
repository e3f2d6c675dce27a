package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
)

// StatementLog collects the SQL text sent to a database opened with
// NewRecordingDB, in the order the driver received it.
type StatementLog struct {
	mu    sync.Mutex
	stmts []string
}

func (l *StatementLog) add(query string) {
	l.mu.Lock()
	l.stmts = append(l.stmts, query)
	l.mu.Unlock()
}

// Reset forgets everything recorded so far.
func (l *StatementLog) Reset() {
	l.mu.Lock()
	l.stmts = nil
	l.mu.Unlock()
}

// Statements returns a copy of the recorded queries.
func (l *StatementLog) Statements() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.stmts...)
}

// NewRecordingDB is NewDB with every executed query also written to the
// returned log.  Transaction control (BEGIN, COMMIT) is not recorded.
func NewRecordingDB(t testing.TB) (*sqlx.DB, *StatementLog) {
	t.Helper()
	opener, err := sql.Open("sqlite", "")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	drv := opener.Driver()
	_ = opener.Close()

	log := &StatementLog{}
	db := sqlx.NewDb(sql.OpenDB(&recordingConnector{drv: drv, dsn: dsn(t), log: log}), "sqlite")
	return prepare(t, db), log
}

type recordingConnector struct {
	drv driver.Driver
	dsn string
	log *StatementLog
}

func (c *recordingConnector) Connect(context.Context) (driver.Conn, error) {
	conn, err := c.drv.Open(c.dsn)
	if err != nil {
		return nil, err
	}
	return &recordingConn{Conn: conn, log: c.log}, nil
}

func (c *recordingConnector) Driver() driver.Driver { return c.drv }

// recordingConn forwards to the SQLite connection.  The driver supports
// every context-aware interface, so database/sql never falls back to the
// legacy methods.
type recordingConn struct {
	driver.Conn
	log *StatementLog
}

func (c *recordingConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	ex, ok := c.Conn.(driver.ExecerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	c.log.add(query)
	return ex.ExecContext(ctx, query, args)
}

func (c *recordingConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	q, ok := c.Conn.(driver.QueryerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	c.log.add(query)
	return q.QueryContext(ctx, query, args)
}

func (c *recordingConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	c.log.add(query)
	if p, ok := c.Conn.(driver.ConnPrepareContext); ok {
		return p.PrepareContext(ctx, query)
	}
	return c.Conn.Prepare(query)
}

func (c *recordingConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if b, ok := c.Conn.(driver.ConnBeginTx); ok {
		return b.BeginTx(ctx, opts)
	}
	return c.Conn.Begin()
}

func (c *recordingConn) ResetSession(ctx context.Context) error {
	if r, ok := c.Conn.(driver.SessionResetter); ok {
		return r.ResetSession(ctx)
	}
	return nil
}
