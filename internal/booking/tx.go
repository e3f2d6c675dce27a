package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/restroo/internal/config"
	"github.com/iliyamo/restroo/internal/metrics"
	"github.com/iliyamo/restroo/internal/repository"
)

var errLockTimeout = errors.New("lock timeout")

// txRunner executes inventory transactions under a bounded lock timeout
// and retries lock contention a few times before reporting ErrBusy.
type txRunner struct {
	db          *sqlx.DB
	lockTimeout time.Duration
	maxRetries  int
	backoff     time.Duration
}

func newTxRunner(db *sqlx.DB, cfg config.BookingConfig) txRunner {
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = 3 * time.Second
	}
	return txRunner{db: db, lockTimeout: cfg.LockTimeout, maxRetries: cfg.MaxRetries, backoff: cfg.RetryBackoff}
}

func (r txRunner) run(ctx context.Context, op string, fn func(context.Context, *sqlx.Tx) error) error {
	start := time.Now()
	defer func() { metrics.LedgerTxDuration.WithLabelValues(op).Observe(time.Since(start).Seconds()) }()

	var last error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.LedgerRetries.Inc()
			if err := sleep(ctx, time.Duration(attempt)*r.backoff); err != nil {
				return err
			}
		}
		err := r.once(ctx, fn)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !(errors.Is(err, errLockTimeout) || repository.IsTransient(err)) {
			return err
		}
		last = err
	}
	return fmt.Errorf("%w: %s: %v", ErrBusy, op, last)
}

// once runs fn in a single transaction.  The transaction is rolled back on
// any error, so a reservation made before a failing insert is undone.
func (r txRunner) once(parent context.Context, fn func(context.Context, *sqlx.Tx) error) error {
	ctx, cancel := context.WithTimeout(parent, r.lockTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return r.timeout(ctx, parent, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(ctx, tx); err != nil {
		return r.timeout(ctx, parent, err)
	}
	if err := tx.Commit(); err != nil {
		return r.timeout(ctx, parent, err)
	}
	committed = true
	return nil
}

// timeout marks err as a lock timeout when our own deadline, not the
// caller's, expired while it was produced.
func (r txRunner) timeout(ctx, parent context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && parent.Err() == nil {
		return fmt.Errorf("%w after %s: %v", errLockTimeout, r.lockTimeout, err)
	}
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
