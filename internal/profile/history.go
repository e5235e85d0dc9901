package profile

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HistoryRepository handles meeting_sessions rows.
type HistoryRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository creates a session history repository.
func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

// Log inserts one finished meeting session and fills the generated id.
func (r *HistoryRepository) Log(ctx context.Context, s *MeetingSession) error {
	const q = `INSERT INTO meeting_sessions (id, user_id, user_name, meeting_id, session_date, duration_minutes, hourly_rate, cost, participants)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	date := s.Date
	if date.IsZero() {
		date = time.Now()
	}
	return r.pool.QueryRow(ctx, q, s.UserID, s.UserName, s.MeetingID, date, s.DurationMinutes, s.HourlyRate, s.Cost, s.Participants).
		Scan(&s.ID)
}

// ListByUser returns a user's sessions, newest first.
func (r *HistoryRepository) ListByUser(ctx context.Context, userID string) ([]MeetingSession, error) {
	const q = `SELECT id, user_id, user_name, meeting_id, session_date, duration_minutes, hourly_rate, cost, participants
		FROM meeting_sessions WHERE user_id = $1 ORDER BY session_date DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []MeetingSession
	for rows.Next() {
		var s MeetingSession
		if err := rows.Scan(&s.ID, &s.UserID, &s.UserName, &s.MeetingID, &s.Date, &s.DurationMinutes, &s.HourlyRate, &s.Cost, &s.Participants); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// DeleteByUser removes all of a user's sessions.
func (r *HistoryRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM meeting_sessions WHERE user_id = $1`, userID)
	return err
}
