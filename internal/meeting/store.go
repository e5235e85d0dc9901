package meeting

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store owns every MeetingRecord. It is constructed once at process start and
// injected into the handlers and the hub; there is no package-level state.
//
// Mutations on the same meeting id are serialized by a per-record mutex while
// unrelated meetings proceed in parallel. Every operation checks the record's
// age first, so an expired record is treated as absent even between sweeper
// passes.
type Store struct {
	mu       sync.RWMutex // guards entries map
	entries  map[string]*entry
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
	onCommit CommitHook
}

type entry struct {
	mu      sync.Mutex
	rec     *Record
	deleted bool // set by sweep under mu; lookups holding a deleted entry retry
}

// CommitHook receives the snapshot of every successful mutation. It is
// invoked while the per-record lock is still held, so hook calls for one
// meeting arrive in commit order. Hooks must not call back into the store
// for the same meeting.
type CommitHook func(rec *Record)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithTTL overrides the retention window.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) { s.ttl = ttl }
}

// NewStore creates an empty store with a 24h retention window by default.
func NewStore(logger *zap.Logger, opts ...StoreOption) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		entries: make(map[string]*entry),
		ttl:     24 * time.Hour,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetCommitHook registers the propagation callback. Set once during wiring,
// before the store serves traffic.
func (s *Store) SetCommitHook(fn CommitHook) {
	s.onCommit = fn
}

func (s *Store) commit(rec *Record) *Record {
	snap := rec.Clone()
	if s.onCommit != nil {
		s.onCommit(snap.Clone())
	}
	return snap
}

// acquire returns the locked entry for a meeting id, creating it when create
// is set. The caller must unlock entry.mu. Entries marked deleted by a
// concurrent sweep are retried so a mutation never lands on a reclaimed
// record.
func (s *Store) acquire(meetingID string, create bool) (*entry, error) {
	for {
		s.mu.RLock()
		e := s.entries[meetingID]
		s.mu.RUnlock()

		if e == nil {
			if !create {
				return nil, ErrNotFound
			}
			s.mu.Lock()
			if e = s.entries[meetingID]; e == nil {
				e = &entry{rec: newRecord(meetingID, s.now())}
				s.entries[meetingID] = e
			}
			s.mu.Unlock()
		}

		e.mu.Lock()
		if e.deleted {
			e.mu.Unlock()
			continue
		}
		return e, nil
	}
}

func (s *Store) expired(r *Record) bool {
	return s.now().Sub(r.CreatedAt) > s.ttl
}

// remove drops an entry from the map. Called with e.mu held; safe because no
// path holds s.mu while waiting on an entry lock.
func (s *Store) remove(meetingID string, e *entry) {
	e.deleted = true
	s.mu.Lock()
	if s.entries[meetingID] == e {
		delete(s.entries, meetingID)
	}
	s.mu.Unlock()
}

// GetOrCreate returns the record for a meeting id, creating an empty one if
// absent. The host is unset until the first participant joins.
func (s *Store) GetOrCreate(meetingID string) (*Record, error) {
	if meetingID == "" {
		return nil, ErrInvalidInput
	}
	e, err := s.acquire(meetingID, true)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()
	if s.expired(e.rec) {
		e.rec = newRecord(meetingID, s.now())
	}
	return e.rec.Clone(), nil
}

// Get returns the record for a meeting id without creating it. Expired
// records are reclaimed on the spot and reported as not found.
func (s *Store) Get(meetingID string) (*Record, error) {
	if meetingID == "" {
		return nil, ErrInvalidInput
	}
	e, err := s.acquire(meetingID, false)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()
	if s.expired(e.rec) {
		s.remove(meetingID, e)
		return nil, ErrNotFound
	}
	return e.rec.Clone(), nil
}

// Join adds a participant to a meeting, creating the meeting if absent. The
// first joiner becomes host for the record's lifetime. Rejoining updates the
// display name and leaves the rate untouched. Returns the updated record and
// whether this participant is the host.
func (s *Store) Join(meetingID, participantID, name string) (*Record, bool, error) {
	if meetingID == "" || participantID == "" {
		return nil, false, ErrInvalidInput
	}
	e, err := s.acquire(meetingID, true)
	if err != nil {
		return nil, false, err
	}
	defer e.mu.Unlock()
	if s.expired(e.rec) {
		e.rec = newRecord(meetingID, s.now())
	}
	if e.rec.HostID == "" {
		e.rec.HostID = participantID
	}
	if p := e.rec.Find(participantID); p != nil {
		if name != "" {
			p.Name = name
		}
	} else {
		e.rec.Participants = append(e.rec.Participants, Participant{
			ID:   participantID,
			Name: name,
		})
	}
	return s.commit(e.rec), e.rec.HostID == participantID, nil
}

// SetRate replaces a participant's hourly rate wholesale, creating the
// meeting and appending the participant if either is unknown.
func (s *Store) SetRate(meetingID, participantID, name string, rate float64) (*Record, error) {
	if meetingID == "" || participantID == "" || rate < 0 {
		return nil, ErrInvalidInput
	}
	e, err := s.acquire(meetingID, true)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()
	if s.expired(e.rec) {
		e.rec = newRecord(meetingID, s.now())
	}
	if e.rec.HostID == "" {
		e.rec.HostID = participantID
	}
	if p := e.rec.Find(participantID); p != nil {
		p.HourlyRate = rate
		if name != "" {
			p.Name = name
		}
	} else {
		e.rec.Participants = append(e.rec.Participants, Participant{
			ID:         participantID,
			Name:       name,
			HourlyRate: rate,
		})
	}
	return s.commit(e.rec), nil
}

// Sweep removes every record older than the retention window and returns how
// many were reclaimed. Each key is locked individually, so a sweep never
// interleaves with an in-flight mutation on the same meeting and never blocks
// unrelated ones.
func (s *Store) Sweep() int {
	s.mu.RLock()
	candidates := make(map[string]*entry, len(s.entries))
	for id, e := range s.entries {
		candidates[id] = e
	}
	s.mu.RUnlock()

	removed := 0
	for id, e := range candidates {
		e.mu.Lock()
		if !e.deleted && s.expired(e.rec) {
			s.remove(id, e)
			removed++
		}
		e.mu.Unlock()
	}
	if removed > 0 {
		s.logger.Debug("reclaimed expired meetings", zap.Int("count", removed))
	}
	return removed
}

// Len returns the number of live records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
