package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/nixlim/cc-view/internal/state"
	"github.com/nixlim/cc-view/internal/transcript"
)

const (
	writeChannelSize = 1000
	batchSize        = 50
	flushInterval    = 100 * time.Millisecond
)

// sessionSnapshot carries the persistable slice of a SessionData through the
// write channel.
type sessionSnapshot struct {
	Model       string
	CWD         string
	StartedAt   string
	LastEventAt string
	Exited      bool
}

type writeOp struct {
	opType    string
	sessionID string
	event     *transcript.Event
	metadata  *state.SessionMetadata
	snapshot  *sessionSnapshot
}

// SQLiteStore is a write-through store: every mutation goes to the embedded
// MemoryStore first, then to SQLite asynchronously via a batched writer.
// Reads are always served from memory.
type SQLiteStore struct {
	*state.MemoryStore
	db              *sql.DB
	writeChan       chan writeOp
	droppedWrites   atomic.Int64
	doneChan        chan struct{}
	closed          atomic.Bool
	cancelMaint     context.CancelFunc
	maintenanceDone chan struct{}
}

func NewSQLiteStore(dbPath string, retentionDays int) (*SQLiteStore, error) {
	return newSQLiteStoreWithChannelSize(dbPath, writeChannelSize, retentionDays)
}

func newSQLiteStoreWithChannelSize(dbPath string, chanSize, retentionDays int) (*SQLiteStore, error) {
	db, err := OpenDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	store := &SQLiteStore{
		MemoryStore:     state.NewMemoryStore(),
		db:              db,
		writeChan:       make(chan writeOp, chanSize),
		doneChan:        make(chan struct{}),
		cancelMaint:     cancel,
		maintenanceDone: make(chan struct{}),
	}

	if err := store.recoverSessions(); err != nil {
		cancel()
		_ = db.Close()
		return nil, fmt.Errorf("recovering sessions: %w", err)
	}

	go store.writerLoop()
	store.startMaintenance(ctx, retentionDays)

	return store, nil
}

func (s *SQLiteStore) AppendEvent(sessionID string, e transcript.Event) {
	s.MemoryStore.AppendEvent(sessionID, e)

	s.sendWrite(writeOp{
		opType:    "event",
		sessionID: sessionID,
		event:     &e,
	})

	s.sendSnapshot(sessionID)
}

func (s *SQLiteStore) MarkExited(sessionID string) {
	s.MemoryStore.MarkExited(sessionID)

	s.sendWrite(writeOp{
		opType:    "markExited",
		sessionID: sessionID,
	})
}

func (s *SQLiteStore) UpdateMetadata(sessionID string, meta state.SessionMetadata) {
	s.MemoryStore.UpdateMetadata(sessionID, meta)

	s.sendWrite(writeOp{
		opType:    "updateMetadata",
		sessionID: sessionID,
		metadata:  &meta,
	})
}

func (s *SQLiteStore) SetModel(sessionID, model string) {
	s.MemoryStore.SetModel(sessionID, model)
	s.sendSnapshot(sessionID)
}

func (s *SQLiteStore) SetCWD(sessionID, cwd string) {
	s.MemoryStore.SetCWD(sessionID, cwd)
	s.sendSnapshot(sessionID)
}

// sendSnapshot persists the current session row. Reads back from the memory
// store so the snapshot reflects the resolved session ID and merged fields.
func (s *SQLiteStore) sendSnapshot(sessionID string) {
	if sessionID == "" {
		sessionID = state.UnknownSessionID
	}
	session := s.GetSession(sessionID)
	if session == nil {
		return
	}
	s.sendWrite(writeOp{
		opType:    "snapshot",
		sessionID: sessionID,
		snapshot:  buildSnapshot(session),
	})
}

func buildSnapshot(session *state.SessionData) *sessionSnapshot {
	snap := &sessionSnapshot{
		Model:  session.Model,
		CWD:    session.CWD,
		Exited: session.Exited,
	}
	if !session.StartedAt.IsZero() {
		snap.StartedAt = session.StartedAt.Format(time.RFC3339Nano)
	}
	if !session.LastEventAt.IsZero() {
		snap.LastEventAt = session.LastEventAt.Format(time.RFC3339Nano)
	}
	return snap
}

func (s *SQLiteStore) sendWrite(op writeOp) {
	if s.closed.Load() {
		return
	}
	defer func() { _ = recover() }()
	select {
	case s.writeChan <- op:
	default:
		s.droppedWrites.Add(1)
		log.Printf("WARNING: SQLite write channel full, dropped write (session=%s, type=%s)", op.sessionID, op.opType)
	}
}

func (s *SQLiteStore) DroppedWrites() int64 {
	return s.droppedWrites.Load()
}

func (s *SQLiteStore) Close() error {
	// Step 1: Mark closed so no new writes are accepted.
	s.closed.Store(true)

	// Step 2: Cancel maintenance (30s timeout).
	s.cancelMaint()
	select {
	case <-s.maintenanceDone:
	case <-time.After(30 * time.Second):
		log.Printf("WARNING: maintenance goroutine did not stop within 30s")
	}

	// Step 3: Close write channel.
	close(s.writeChan)

	// Step 4: Drain writer (10s timeout).
	select {
	case <-s.doneChan:
	case <-time.After(10 * time.Second):
		log.Printf("ERROR: failed to drain writes within 10s, data may be lost")
	}

	// Step 5: Close database.
	return s.db.Close()
}

func (s *SQLiteStore) writerLoop() {
	defer close(s.doneChan)

	batch := make([]writeOp, 0, batchSize)
	flushTimer := time.NewTimer(flushInterval)
	defer flushTimer.Stop()

	for {
		select {
		case op, ok := <-s.writeChan:
			if !ok {
				if len(batch) > 0 {
					s.flushBatch(batch)
				}
				return
			}

			batch = append(batch, op)

			if len(batch) >= batchSize {
				s.flushBatch(batch)
				batch = batch[:0]
				flushTimer.Reset(flushInterval)
			}

		case <-flushTimer.C:
			if len(batch) > 0 {
				s.flushBatch(batch)
				batch = batch[:0]
			}
			flushTimer.Reset(flushInterval)
		}
	}
}

func (s *SQLiteStore) flushBatch(batch []writeOp) {
	tx, err := s.db.Begin()
	if err != nil {
		log.Printf("ERROR: failed to begin transaction: %v", err)
		return
	}
	defer func() { _ = tx.Rollback() }()

	for _, op := range batch {
		if err := s.executeOp(tx, op); err != nil {
			log.Printf("ERROR: failed to execute write op (type=%s, session=%s): %v", op.opType, op.sessionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Printf("ERROR: failed to commit transaction: %v", err)
	}
}

func (s *SQLiteStore) executeOp(tx *sql.Tx, op writeOp) error {
	switch op.opType {
	case "event":
		return s.writeEvent(tx, op.sessionID, *op.event)
	case "updateMetadata":
		return s.writeMetadata(tx, op.sessionID, *op.metadata)
	case "markExited":
		return s.writeExited(tx, op.sessionID)
	case "snapshot":
		return s.writeSessionSnapshot(tx, op.sessionID, op.snapshot)
	default:
		return fmt.Errorf("unknown op type: %s", op.opType)
	}
}
