package meeting

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func newTestStore(t *testing.T, opts ...StoreOption) *Store {
	t.Helper()
	return NewStore(nil, opts...)
}

func TestJoinCreatesMeetingAndHost(t *testing.T) {
	s := newTestStore(t)
	rec, isHost, err := s.Join("m1", "u1", "Alice")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if !isHost {
		t.Fatal("expected first joiner to be host")
	}
	if rec.HostID != "u1" {
		t.Fatalf("expected host u1, got %q", rec.HostID)
	}
	if len(rec.Participants) != 1 {
		t.Fatalf("expected 1 participant, got %d", len(rec.Participants))
	}
	if p := rec.Participants[0]; p.ID != "u1" || p.Name != "Alice" || p.HourlyRate != 0 {
		t.Fatalf("unexpected participant %+v", p)
	}
	if rec.ScheduledMinutes != DefaultScheduledMinutes {
		t.Fatalf("expected default scheduled minutes, got %d", rec.ScheduledMinutes)
	}
}

func TestJoinIsIdempotentPerParticipant(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 5; i++ {
		if _, _, err := s.Join("m1", "u1", "Alice"); err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
	}
	rec, _, err := s.Join("m1", "u2", "Bob")
	if err != nil {
		t.Fatalf("join u2: %v", err)
	}
	if len(rec.Participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(rec.Participants))
	}
}

func TestRejoinUpdatesNameKeepsRate(t *testing.T) {
	s := newTestStore(t)
	if _, _, err := s.Join("m1", "u1", "Alice"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := s.SetRate("m1", "u1", "Alice", 50); err != nil {
		t.Fatalf("set rate: %v", err)
	}
	rec, _, err := s.Join("m1", "u1", "Alice B")
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	p := rec.Find("u1")
	if p == nil {
		t.Fatal("participant missing after rejoin")
	}
	if p.Name != "Alice B" {
		t.Fatalf("expected updated name, got %q", p.Name)
	}
	if p.HourlyRate != 50 {
		t.Fatalf("expected rate preserved on rejoin, got %v", p.HourlyRate)
	}
}

func TestHostNeverReassigned(t *testing.T) {
	s := newTestStore(t)
	s.Join("m1", "u1", "Alice")
	rec, isHost, err := s.Join("m1", "u2", "Bob")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if isHost {
		t.Fatal("second joiner must not be host")
	}
	if rec.HostID != "u1" {
		t.Fatalf("host reassigned to %q", rec.HostID)
	}
}

func TestSetRateLastWriteWins(t *testing.T) {
	s := newTestStore(t)
	s.Join("m1", "u1", "Alice")
	for _, rate := range []float64{10, 99, 50} {
		if _, err := s.SetRate("m1", "u1", "Alice", rate); err != nil {
			t.Fatalf("set rate %v: %v", rate, err)
		}
	}
	rec, err := s.Get("m1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := rec.Find("u1").HourlyRate; got != 50 {
		t.Fatalf("expected final rate 50, got %v", got)
	}
}

func TestSetRateAppendsUnknownParticipant(t *testing.T) {
	s := newTestStore(t)
	rec, err := s.SetRate("m1", "u9", "Carol", 120)
	if err != nil {
		t.Fatalf("set rate: %v", err)
	}
	p := rec.Find("u9")
	if p == nil || p.HourlyRate != 120 || p.Name != "Carol" {
		t.Fatalf("unexpected participant %+v", p)
	}
}

func TestJoinThenRateScenario(t *testing.T) {
	s := newTestStore(t)
	rec, _, err := s.Join("m1", "u1", "Alice")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if len(rec.Participants) != 1 || rec.Participants[0].HourlyRate != 0 {
		t.Fatalf("unexpected record after join: %+v", rec)
	}
	rec, err = s.SetRate("m1", "u1", "Alice", 50)
	if err != nil {
		t.Fatalf("set rate: %v", err)
	}
	if got := rec.Find("u1").HourlyRate; got != 50 {
		t.Fatalf("expected rate 50, got %v", got)
	}
	if got := TotalCost(rec, 30); got != 25 {
		t.Fatalf("expected total cost 25.00 at 30 minutes, got %v", got)
	}
}

func TestGetDoesNotCreate(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("read-only lookup created a record")
	}
}

func TestInvalidInput(t *testing.T) {
	s := newTestStore(t)
	tests := []struct {
		name string
		call func() error
	}{
		{"empty meeting id on join", func() error { _, _, err := s.Join("", "u1", "Alice"); return err }},
		{"empty participant id on join", func() error { _, _, err := s.Join("m1", "", "Alice"); return err }},
		{"negative rate", func() error { _, err := s.SetRate("m1", "u1", "Alice", -5); return err }},
		{"empty meeting id on get", func() error { _, err := s.Get(""); return err }},
		{"empty meeting id on get-or-create", func() error { _, err := s.GetOrCreate(""); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
	if s.Len() != 0 {
		t.Fatalf("rejected input mutated state: %d records", s.Len())
	}
}

func TestSnapshotsAreIsolated(t *testing.T) {
	s := newTestStore(t)
	rec, _, err := s.Join("m1", "u1", "Alice")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	rec.Participants[0].HourlyRate = 9999
	rec.HostID = "intruder"

	fresh, err := s.Get("m1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fresh.Find("u1").HourlyRate != 0 || fresh.HostID != "u1" {
		t.Fatal("caller mutation leaked into store-owned record")
	}
}

func TestConcurrentJoinsAppearExactlyOnce(t *testing.T) {
	s := newTestStore(t)
	const workers = 32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := "a"
			if i%2 == 1 {
				id = "b"
			}
			if _, _, err := s.Join("m2", id, "User "+id); err != nil {
				t.Errorf("join %s: %v", id, err)
			}
		}(i)
	}
	wg.Wait()

	rec, err := s.Get("m2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(rec.Participants) != 2 {
		t.Fatalf("expected exactly 2 participants, got %d", len(rec.Participants))
	}
	seen := map[string]int{}
	for _, p := range rec.Participants {
		seen[p.ID]++
	}
	if seen["a"] != 1 || seen["b"] != 1 {
		t.Fatalf("duplicate or missing participants: %v", seen)
	}
}

func TestConcurrentRateUpdatesNoLostWrites(t *testing.T) {
	s := newTestStore(t)
	const meetings = 8
	var wg sync.WaitGroup
	for m := 0; m < meetings; m++ {
		for u := 0; u < 4; u++ {
			wg.Add(1)
			go func(m, u int) {
				defer wg.Done()
				mid := fmt.Sprintf("meet-%d", m)
				uid := fmt.Sprintf("user-%d", u)
				if _, err := s.SetRate(mid, uid, uid, float64(10*(u+1))); err != nil {
					t.Errorf("set rate: %v", err)
				}
			}(m, u)
		}
	}
	wg.Wait()

	for m := 0; m < meetings; m++ {
		rec, err := s.Get(fmt.Sprintf("meet-%d", m))
		if err != nil {
			t.Fatalf("get meet-%d: %v", m, err)
		}
		if len(rec.Participants) != 4 {
			t.Fatalf("meet-%d: expected 4 participants, got %d", m, len(rec.Participants))
		}
		for u := 0; u < 4; u++ {
			p := rec.Find(fmt.Sprintf("user-%d", u))
			if p == nil || p.HourlyRate != float64(10*(u+1)) {
				t.Fatalf("meet-%d: lost rate update for user-%d: %+v", m, u, p)
			}
		}
	}
}

func TestRetentionBoundary(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := created
	s := newTestStore(t, WithClock(func() time.Time { return current }))

	if _, _, err := s.Join("m1", "u1", "Alice"); err != nil {
		t.Fatalf("join: %v", err)
	}

	current = created.Add(23*time.Hour + 59*time.Minute)
	if _, err := s.Get("m1"); err != nil {
		t.Fatalf("record should survive until the TTL: %v", err)
	}

	current = created.Add(24*time.Hour + time.Minute)
	if _, err := s.Get("m1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound past the TTL, got %v", err)
	}
}

func TestExpiredRecordRecreatedOnMutation(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := created
	s := newTestStore(t, WithClock(func() time.Time { return current }))

	s.Join("m1", "u1", "Alice")
	s.SetRate("m1", "u1", "Alice", 50)

	current = created.Add(25 * time.Hour)
	rec, isHost, err := s.Join("m1", "u2", "Bob")
	if err != nil {
		t.Fatalf("join after expiry: %v", err)
	}
	if !isHost {
		t.Fatal("joiner of a recreated meeting should be its host")
	}
	if len(rec.Participants) != 1 || rec.Participants[0].ID != "u2" {
		t.Fatalf("expected a fresh record, got %+v", rec.Participants)
	}
	if !rec.CreatedAt.Equal(current) {
		t.Fatalf("expected new CreatedAt, got %v", rec.CreatedAt)
	}
}

func TestSweepReclaimsOnlyExpired(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := created
	s := newTestStore(t, WithClock(func() time.Time { return current }))

	s.Join("old", "u1", "Alice")
	current = created.Add(12 * time.Hour)
	s.Join("fresh", "u2", "Bob")

	current = created.Add(24*time.Hour + time.Minute)
	if n := s.Sweep(); n != 1 {
		t.Fatalf("expected 1 reclaimed record, got %d", n)
	}
	if _, err := s.Get("old"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected old meeting gone, got %v", err)
	}
	if _, err := s.Get("fresh"); err != nil {
		t.Fatalf("fresh meeting should survive sweep: %v", err)
	}
}

func TestSweepDoesNotFightConcurrentMutations(t *testing.T) {
	s := newTestStore(t, WithTTL(time.Nanosecond))
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			mid := fmt.Sprintf("m-%d", i%4)
			for j := 0; j < 50; j++ {
				if _, _, err := s.Join(mid, "u1", "Alice"); err != nil {
					t.Errorf("join: %v", err)
				}
			}
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 200; j++ {
			s.Sweep()
		}
	}()
	wg.Wait()
}

func TestGetOrCreate(t *testing.T) {
	s := newTestStore(t)
	rec, err := s.GetOrCreate("m1")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if rec.HostID != "" {
		t.Fatalf("host must be unset before first join, got %q", rec.HostID)
	}
	if len(rec.Participants) != 0 {
		t.Fatalf("expected empty record, got %d participants", len(rec.Participants))
	}
	again, err := s.GetOrCreate("m1")
	if err != nil {
		t.Fatalf("get or create again: %v", err)
	}
	if !again.CreatedAt.Equal(rec.CreatedAt) {
		t.Fatal("second call created a new record")
	}
}
