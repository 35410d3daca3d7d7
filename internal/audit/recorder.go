// Package audit implements the fire-and-forget audit trail recorder.
// Mutating services hand composed entries to the Recorder and move on; a
// single background goroutine drains a bounded queue into the audit repo.
// Nothing here can fail a primary operation: a full queue drops the entry
// and a failed insert is logged and discarded.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/nsorokin/web-scheduler/backend/internal/domain"
	"github.com/nsorokin/web-scheduler/backend/internal/repo"
)

// insertTimeout bounds one audit insert so a stuck database cannot wedge
// the drain goroutine forever.
const insertTimeout = 5 * time.Second

// Recorder is the asynchronous audit sink.
// Construct with NewRecorder, call Start once, and Close on shutdown to
// flush whatever is still queued.
type Recorder struct {
	repo    repo.AuditRepo
	log     *slog.Logger
	entries chan domain.AuditEntry
	done    chan struct{}
}

// NewRecorder constructs a Recorder writing through the given repo.
// queueSize is the number of entries that may be pending before Record
// starts dropping.
func NewRecorder(r repo.AuditRepo, log *slog.Logger, queueSize int) *Recorder {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Recorder{
		repo:    r,
		log:     log,
		entries: make(chan domain.AuditEntry, queueSize),
		done:    make(chan struct{}),
	}
}

// Start launches the drain goroutine. Call exactly once.
func (rec *Recorder) Start() {
	go rec.drain()
}

// Record stamps the entry with the current UTC time and queues it.
// It never blocks: when the queue is full the entry is dropped with a
// warning, because audit logging must not slow down or fail the caller.
func (rec *Recorder) Record(entry domain.AuditEntry) {
	entry.TS = NowISO()
	select {
	case rec.entries <- entry:
	default:
		rec.log.Warn("audit queue full, dropping entry",
			"action", entry.Action,
			"entity", entry.Entity,
		)
	}
}

// Close stops accepting entries, waits for the queue to drain, and returns.
// Safe to call after all writers have stopped.
func (rec *Recorder) Close() {
	close(rec.entries)
	<-rec.done
}

// drain writes queued entries until the channel is closed.
func (rec *Recorder) drain() {
	defer close(rec.done)
	for entry := range rec.entries {
		ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
		_, err := rec.repo.Insert(ctx, entry)
		cancel()
		if err != nil {
			// Swallowed on purpose: the primary operation already committed.
			rec.log.Warn("audit insert failed",
				"action", entry.Action,
				"entity", entry.Entity,
				"error", err,
			)
		}
	}
}

// NowISO returns the current UTC time as an ISO-8601 string without
// sub-second precision ("2006-01-02T15:04:05Z"), matching the lexicographic
// ordering used for every timestamp in the system.
func NowISO() string {
	return time.Now().UTC().Truncate(time.Second).Format("2006-01-02T15:04:05Z")
}
