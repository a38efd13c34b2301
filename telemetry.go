package main

import (
	"database/sql"
	"log"
	"sync"
	"time"
)

// CollisionTick is one tick's worth of aggregate statistics about the
// CollisionIndex's own operation, recorded for offline tuning of grid
// parameters. RecordTick only reads the index (All() and its pending entry
// list); it never modifies it.
type CollisionTick struct {
	Tick      uint64
	Bodies    int
	Entries   int
	Overflows int
	Timestamp time.Time
}

// CollisionTelemetry batches per-tick CollisionIndex statistics and writes
// them to sqlite in the background from a single goroutine fed by a
// buffered channel and flushed on a ticker.
type CollisionTelemetry struct {
	db    *DB
	ticks chan CollisionTick
	stop  chan struct{}
	wg    sync.WaitGroup
}

// NewCollisionTelemetry creates and starts the telemetry background writer.
func NewCollisionTelemetry(db *DB) *CollisionTelemetry {
	t := &CollisionTelemetry{
		db:    db,
		ticks: make(chan CollisionTick, 1024),
		stop:  make(chan struct{}),
	}
	t.wg.Add(1)
	go t.writer()
	return t
}

// RecordTick enqueues one tick's index statistics for async persistence
// (non-blocking — never stalls the simulation loop). Entry count is the
// length of the index's pending (body, cell) entry list, the number of
// entries Finalize sorted this tick. Overflows is not a per-tick count: it
// is 1 on every tick once the process-wide warnedOverflow latch has been
// set by any Line clamp, and 0 before that.
func (t *CollisionTelemetry) RecordTick(tick uint64, index *CollisionIndex) {
	bodies := len(index.All())
	entries := len(index.pending)
	overflow := 0
	if warnedOverflow {
		overflow = 1
	}
	select {
	case t.ticks <- CollisionTick{Tick: tick, Bodies: bodies, Entries: entries, Overflows: overflow, Timestamp: time.Now().UTC()}:
	default:
		// Channel full — drop the sample rather than blocking the game loop.
	}
}

// Stop gracefully shuts down the telemetry writer, flushing anything queued.
func (t *CollisionTelemetry) Stop() {
	close(t.stop)
	t.wg.Wait()
}

func (t *CollisionTelemetry) writer() {
	defer t.wg.Done()

	batch := make([]CollisionTick, 0, 64)
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case tk := <-t.ticks:
			batch = append(batch, tk)
			if len(batch) >= 120 {
				t.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				t.flush(batch)
				batch = batch[:0]
			}
		case <-t.stop:
			close(t.ticks)
			for tk := range t.ticks {
				batch = append(batch, tk)
			}
			if len(batch) > 0 {
				t.flush(batch)
			}
			return
		}
	}
}

func (t *CollisionTelemetry) flush(ticks []CollisionTick) {
	if t.db == nil || len(ticks) == 0 {
		return
	}
	tx, err := t.db.conn.Begin()
	if err != nil {
		log.Printf("telemetry: begin tx error: %v", err)
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO collision_ticks (tick, bodies, entries, overflows, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		log.Printf("telemetry: prepare error: %v", err)
		return
	}
	defer stmt.Close()

	for _, tk := range ticks {
		if _, err := stmt.Exec(int64(tk.Tick), tk.Bodies, tk.Entries, tk.Overflows, tk.Timestamp.Format(time.RFC3339)); err != nil {
			log.Printf("telemetry: insert error: %v", err)
		}
	}
	tx.Commit()
}

// TickStats aggregates average load-per-tick over the last N recorded
// ticks, for a tuning dashboard to compare against grid parameter changes.
func (t *CollisionTelemetry) TickStats(lastN int) (avgBodies, avgEntries float64, overflowCount int, err error) {
	if t.db == nil {
		return 0, 0, 0, nil
	}
	row := t.db.conn.QueryRow(`
		SELECT AVG(bodies), AVG(entries), SUM(overflows) FROM (
			SELECT bodies, entries, overflows FROM collision_ticks ORDER BY tick DESC LIMIT ?
		)
	`, lastN)
	var b, e sql.NullFloat64
	var o sql.NullInt64
	if scanErr := row.Scan(&b, &e, &o); scanErr != nil {
		return 0, 0, 0, scanErr
	}
	return b.Float64, e.Float64, int(o.Int64), nil
}
