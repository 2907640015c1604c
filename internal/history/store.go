package history

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/cenkalti/backoff/v4"
)

// DefaultCapacity is the number of most recent records kept.
const DefaultCapacity = 50

// WritePolicy decides what happens when the durable mirror cannot be written.
type WritePolicy string

const (
	// PolicyWarn keeps the in-memory change and reports ErrNotPersisted.
	PolicyWarn WritePolicy = "warn"
	// PolicyRetry retries with backoff, then behaves like PolicyWarn.
	PolicyRetry WritePolicy = "retry"
	// PolicyFail rolls the in-memory change back and reports ErrPersistFailed.
	PolicyFail WritePolicy = "fail"
)

// ParsePolicy maps config strings to a policy; unknown values mean warn.
func ParsePolicy(s string) WritePolicy {
	switch WritePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyRetry:
		return PolicyRetry
	case PolicyFail:
		return PolicyFail
	default:
		return PolicyWarn
	}
}

// Restorer is implemented by each calculator variant that can repopulate its
// inputs from a stored record.
type Restorer interface {
	RestoreFrom(Record) error
}

// Store owns the history sequence, most recent first, and keeps the durable
// mirror in step with it.
type Store struct {
	mu       sync.Mutex
	p        Persistence
	records  []Record
	capacity int
	policy   WritePolicy
	attempts int
	interval time.Duration
	now      func() time.Time
	lastID   int64
	log      *slog.Logger
	loadErr  error
}

// Option configures a Store.
type Option func(*Store)

func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

func WithPolicy(p WritePolicy) Option { return func(s *Store) { s.policy = p } }

// WithRetry sets the attempt count and first backoff interval for PolicyRetry.
func WithRetry(attempts int, initial time.Duration) Option {
	return func(s *Store) {
		if attempts > 0 {
			s.attempts = attempts
		}
		if initial > 0 {
			s.interval = initial
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// New loads the durable history. Malformed content falls back to an empty
// history and is reported by LoadErr; any other read error is returned.
func New(ctx context.Context, p Persistence, opts ...Option) (*Store, error) {
	s := &Store{
		p:        p,
		capacity: DefaultCapacity,
		policy:   PolicyWarn,
		attempts: 3,
		interval: 100 * time.Millisecond,
		now:      time.Now,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	loaded, err := p.Load(ctx)
	switch {
	case errors.Is(err, ErrMalformed):
		s.loadErr = err
		s.log.Warn("history unreadable, starting empty", "err", err)
		loaded = nil
	case err != nil:
		return nil, fmt.Errorf("load history: %w", err)
	}
	if len(loaded) > s.capacity {
		loaded = loaded[:s.capacity]
	}
	s.records = loaded
	for _, r := range loaded {
		if r.ID > s.lastID {
			s.lastID = r.ID
		}
	}
	s.log.Debug("history loaded", "count", len(loaded))
	return s, nil
}

// LoadErr reports why the durable history was discarded at startup, if it was.
func (s *Store) LoadErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Capacity returns the maximum number of records kept.
func (s *Store) Capacity() int { return s.capacity }

// Policy returns the configured write policy.
func (s *Store) Policy() WritePolicy { return s.policy }

// Records returns a copy of the sequence, most recent first.
func (s *Store) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Latest returns the most recent record of the given kind.
func (s *Store) Latest(kind string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.Kind() == kind {
			return r, true
		}
	}
	return Record{}, false
}

// Append stamps fields with a timestamp and a unique id, puts the record
// first, drops whatever falls past capacity and writes the whole sequence to
// the durable mirror.
func (s *Store) Append(ctx context.Context, fields map[string]any) (Record, error) {
	norm, err := normalizeFields(fields)
	if err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	rec := Record{ID: id, Timestamp: now.Format(TimestampLayout), Fields: norm}

	prev := s.records
	next := make([]Record, 0, min(len(prev)+1, s.capacity))
	next = append(next, rec)
	next = append(next, prev...)
	if len(next) > s.capacity {
		next = next[:s.capacity]
	}
	s.records = next
	s.lastID = id

	if err := s.save(ctx, next); err != nil {
		if s.policy == PolicyFail {
			s.records = prev
			s.log.Error("history append rolled back", "id", id, "err", err)
			return Record{}, fmt.Errorf("%w: %w", ErrPersistFailed, err)
		}
		s.log.Warn("history append not persisted", "id", id, "err", err)
		return rec, fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}
	s.log.Debug("history append", "id", id, "kind", rec.Kind(), "len", len(next))
	return rec, nil
}

// Clear empties the history and removes the durable entry. Clearing an empty
// history is a no-op apart from the removal call.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.records
	s.records = nil
	if err := s.p.Clear(ctx); err != nil {
		if s.policy == PolicyFail {
			s.records = prev
			s.log.Error("history clear rolled back", "err", err)
			return fmt.Errorf("%w: %w", ErrPersistFailed, err)
		}
		s.log.Warn("history clear not persisted", "err", err)
		return fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}
	s.loadErr = nil
	s.log.Debug("history cleared", "dropped", len(prev))
	return nil
}

// Restore hands back the record unchanged once it is known to belong to a
// calculator variant. Repopulating inputs is the Restorer's job.
func (s *Store) Restore(rec Record) (Record, error) {
	switch rec.Kind() {
	case KindSimple, KindIntegral:
		return rec, nil
	default:
		return rec, fmt.Errorf("%w: %q", ErrUnknownKind, rec.Kind())
	}
}

// RestoreInto validates rec and passes it to r.
func (s *Store) RestoreInto(r Restorer, rec Record) error {
	rec, err := s.Restore(rec)
	if err != nil {
		return err
	}
	return r.RestoreFrom(rec)
}

// Search matches query against expression and result. Substring hits come
// first in recency order, then close fuzzy matches by edit distance.
func (s *Store) Search(query string, limit int) []Record {
	q := strings.ToLower(strings.TrimSpace(query))
	all := s.Records()
	if q == "" {
		if limit > 0 && len(all) > limit {
			all = all[:limit]
		}
		return all
	}

	type hit struct {
		rec   Record
		score float64
	}
	var hits []hit
	for _, r := range all {
		expr := strings.ToLower(r.Expression())
		res := strings.ToLower(r.Result())
		if strings.Contains(expr, q) || strings.Contains(res, q) || strings.Contains(r.Kind(), q) {
			hits = append(hits, hit{rec: r})
			continue
		}
		if expr == "" {
			continue
		}
		d := levenshtein.ComputeDistance(q, expr)
		score := float64(d) / float64(max(len(q), len(expr)))
		if score <= 0.5 {
			hits = append(hits, hit{rec: r, score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score < hits[j].score })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]Record, len(hits))
	for i, h := range hits {
		out[i] = h.rec
	}
	return out
}

func (s *Store) save(ctx context.Context, records []Record) error {
	if s.policy != PolicyRetry {
		return s.p.Save(ctx, records)
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.interval
	b.MaxElapsedTime = 0
	attempt := 0
	op := func() error {
		attempt++
		err := s.p.Save(ctx, records)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			s.log.Debug("history save retry", "attempt", attempt, "err", err)
		}
		return err
	}
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.attempts-1)), ctx))
}
