package storage

import (
	"fmt"
	"time"
)

// Outcomes recorded when a cycle ends
const (
	OutcomeCompleted = "completed"
	OutcomeTimeout   = "timeout"
	OutcomeDisarmed  = "disarmed"
	OutcomeRearmed   = "rearmed"
)

// Cycle is one arm-to-disarm run of the engine
type Cycle struct {
	ID          int64     `json:"id"`
	ArmedAt     time.Time `json:"armed_at"`
	TriggeredAt time.Time `json:"triggered_at,omitzero"`
	EndedAt     time.Time `json:"ended_at,omitzero"`
	Outcome     string    `json:"outcome"`
	ImageCount  int       `json:"image_count"`
	TextLength  int       `json:"text_length"`
	TimeoutMs   int64     `json:"timeout_ms"`
}

// StartCycle inserts a running cycle and returns its ID
func (db *DB) StartCycle(armedAt time.Time, imageCount, textLength int, timeout time.Duration) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO cycles (armed_at, image_count, text_length, timeout_ms) VALUES (?, ?, ?, ?)`,
		armedAt.UnixMilli(), imageCount, textLength, timeout.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to start cycle: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

// MarkTriggered records when the user's paste was detected
func (db *DB) MarkTriggered(id int64, at time.Time) error {
	if _, err := db.conn.Exec(`UPDATE cycles SET triggered_at = ? WHERE id = ?`, at.UnixMilli(), id); err != nil {
		return fmt.Errorf("failed to mark cycle %d triggered: %w", id, err)
	}
	return nil
}

// FinishCycle records the end of a cycle. Finishing twice keeps the first outcome.
func (db *DB) FinishCycle(id int64, at time.Time, outcome string) error {
	_, err := db.conn.Exec(
		`UPDATE cycles SET ended_at = ?, outcome = ? WHERE id = ? AND outcome = ''`,
		at.UnixMilli(), outcome, id,
	)
	if err != nil {
		return fmt.Errorf("failed to finish cycle %d: %w", id, err)
	}
	return nil
}

// RecentCycles returns the newest cycles first
func (db *DB) RecentCycles(limit int) ([]Cycle, error) {
	rows, err := db.conn.Query(`
		SELECT id, armed_at, triggered_at, ended_at, outcome, image_count, text_length, timeout_ms
		FROM cycles
		ORDER BY armed_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query cycles: %w", err)
	}
	defer rows.Close()

	var cycles []Cycle
	for rows.Next() {
		var (
			c                       Cycle
			armed, triggered, ended int64
		)
		if err := rows.Scan(&c.ID, &armed, &triggered, &ended, &c.Outcome, &c.ImageCount, &c.TextLength, &c.TimeoutMs); err != nil {
			return nil, fmt.Errorf("failed to scan cycle: %w", err)
		}
		c.ArmedAt = fromMillis(armed)
		c.TriggeredAt = fromMillis(triggered)
		c.EndedAt = fromMillis(ended)
		cycles = append(cycles, c)
	}

	return cycles, rows.Err()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
