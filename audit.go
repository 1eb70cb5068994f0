package qlock

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditRecord describes one Lock call. It never carries the raw identity.
type AuditRecord struct {
	ID           string    `json:"id" msgpack:"id"`
	Timestamp    time.Time `json:"timestamp" msgpack:"timestamp"`
	IdentityHash string    `json:"identity_hash" msgpack:"identity_hash"`
	GatesBefore  int       `json:"gates_before" msgpack:"gates_before"`
	GatesAfter   int       `json:"gates_after" msgpack:"gates_after"`
	Perturbed    int       `json:"perturbed" msgpack:"perturbed"`
	Mode         Mode      `json:"mode" msgpack:"mode"`
}

// AuditSink receives every record appended to an AuditLog.
type AuditSink interface {
	Write(rec AuditRecord) error
}

/*
AuditLog is an append-only, in-memory record of watermarking activity. Its
lifetime is the caller's: create one, hand it to the engines that should
report into it, and read it back with Records. When maxEntries is positive
only the newest maxEntries records are retained in memory; sinks still see
every record.
*/
type AuditLog struct {
	mu         sync.RWMutex
	records    []AuditRecord
	maxEntries int
	sinks      []AuditSink
}

func NewAuditLog(maxEntries int, sinks ...AuditSink) *AuditLog {
	return &AuditLog{
		maxEntries: maxEntries,
		sinks:      sinks,
	}
}

/*
Append stamps rec with an ID and timestamp when it has none, stores it and
forwards it to every sink. Sink failures are joined into the returned error;
the record is kept regardless.
*/
func (l *AuditLog) Append(rec AuditRecord) (AuditRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	l.mu.Lock()
	l.records = append(l.records, rec)
	if l.maxEntries > 0 && len(l.records) > l.maxEntries {
		l.records = append([]AuditRecord(nil), l.records[len(l.records)-l.maxEntries:]...)
	}
	sinks := l.sinks
	l.mu.Unlock()

	var errs []error
	for _, sink := range sinks {
		if err := sink.Write(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return rec, errors.Join(errs...)
}

// Records returns a copy of the retained records, oldest first.
func (l *AuditLog) Records() []AuditRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]AuditRecord(nil), l.records...)
}

func (l *AuditLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}
