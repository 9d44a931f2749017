package storage

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
	"github.com/valutatrade/valutahub/internal/domain"
)

const (
	historySegmentThreshold = 1000
	historyMaxSegments      = 100
)

// HistoryLog is the append-only journal of every rate observation. Entries
// are never mutated or removed; the WAL runs in sync-disk mode so a
// successful Append is durable before it returns.
type HistoryLog struct {
	wal *gowal.Wal
	mu  sync.Mutex
}

// NewHistoryLog opens (or creates) the journal under dir.
func NewHistoryLog(dir string) (*HistoryLog, error) {
	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "rates_",
		SegmentThreshold: historySegmentThreshold,
		MaxSegments:      historyMaxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init rate history log")
	}
	return &HistoryLog{wal: wal}, nil
}

// Append writes one observation to the journal.
func (h *HistoryLog) Append(rec domain.RateRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "marshal rate record")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.wal.Write(h.wal.CurrentIndex()+1, rec.ID, payload); err != nil {
		return &domain.PersistenceError{Store: "exchange_rates", Err: err}
	}
	return nil
}

// HistoryFilter narrows Query results. Zero values match everything.
type HistoryFilter struct {
	// Currency matches records where it appears on either side of the pair.
	Currency string
	// From/Until bound the record timestamp (inclusive).
	From  time.Time
	Until time.Time
}

func (f HistoryFilter) matches(rec domain.RateRecord) bool {
	if f.Currency != "" && rec.From != f.Currency && rec.To != f.Currency {
		return false
	}
	if !f.From.IsZero() && rec.Timestamp.Before(f.From) {
		return false
	}
	if !f.Until.IsZero() && rec.Timestamp.After(f.Until) {
		return false
	}
	return true
}

// Query replays the journal and returns matching records ordered by
// timestamp ascending. Each call restarts from the beginning of the WAL.
func (h *HistoryLog) Query(filter HistoryFilter) ([]domain.RateRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []domain.RateRecord
	for msg := range h.wal.Iterator() {
		var rec domain.RateRecord
		if err := json.Unmarshal(msg.Value, &rec); err != nil {
			return nil, errors.Wrapf(err, "decode rate record %s", msg.Key)
		}
		if filter.matches(rec) {
			out = append(out, rec)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// Len returns the number of journal entries written so far.
func (h *HistoryLog) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return int(h.wal.CurrentIndex())
}

// Close closes the underlying WAL.
func (h *HistoryLog) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.wal.Close()
}
