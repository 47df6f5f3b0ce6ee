package store

import (
	"database/sql"
	"fmt"
	"time"
)

// LogSession records one completed phase.
func (s *Store) LogSession(phase string, durationSecs int64, endedAt time.Time) (*Session, error) {
	res, err := s.db.Exec(
		`INSERT INTO sessions (phase, duration, ended_at) VALUES (?, ?, ?)`,
		phase, durationSecs, endedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("log session: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetSession(id)
}

func (s *Store) GetSession(id int64) (*Session, error) {
	sess := &Session{}
	var endedAt string
	err := s.db.QueryRow(
		`SELECT id, phase, duration, ended_at FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.Phase, &sess.Duration, &endedAt)
	if err != nil {
		return nil, fmt.Errorf("get session %d: %w", id, err)
	}
	sess.EndedAt, _ = time.Parse(time.RFC3339, endedAt)
	return sess, nil
}

// ListSessions returns sessions newest first. A limit of 0 means no limit.
func (s *Store) ListSessions(limit int) ([]Session, error) {
	query := `SELECT id, phase, duration, ended_at FROM sessions ORDER BY ended_at DESC, id DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var endedAt string
		if err := rows.Scan(&sess.ID, &sess.Phase, &sess.Duration, &endedAt); err != nil {
			return nil, err
		}
		sess.EndedAt, _ = time.Parse(time.RFC3339, endedAt)
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// GetDailySummary aggregates completed time per phase per day in [from, to).
func (s *Store) GetDailySummary(from, to time.Time) ([]DailySummary, error) {
	rows, err := s.db.Query(`
		SELECT date(ended_at) AS day, phase, COALESCE(SUM(duration), 0), COUNT(*)
		FROM sessions
		WHERE ended_at >= ? AND ended_at < ?
		GROUP BY day, phase
		ORDER BY day, phase`,
		from.Format(time.RFC3339), to.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("daily summary: %w", err)
	}
	defer rows.Close()

	var summaries []DailySummary
	for rows.Next() {
		var ds DailySummary
		if err := rows.Scan(&ds.Date, &ds.Phase, &ds.TotalSeconds, &ds.SessionCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, ds)
	}
	return summaries, rows.Err()
}

// GetTodayWorkTotal returns today's completed work seconds.
func (s *Store) GetTodayWorkTotal() (int64, error) {
	today := time.Now().UTC().Format("2006-01-02")
	var total sql.NullInt64
	err := s.db.QueryRow(`
		SELECT COALESCE(SUM(duration), 0)
		FROM sessions
		WHERE date(ended_at) = ? AND phase = 'work'`, today,
	).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}
