package storage

import "fmt"

// Summary counts cycles per outcome
type Summary struct {
	Total        int     `json:"total"`
	Completed    int     `json:"completed"`
	Timeout      int     `json:"timeout"`
	Disarmed     int     `json:"disarmed"`
	Rearmed      int     `json:"rearmed"`
	Running      int     `json:"running"`
	TotalImages  int     `json:"total_images"`
	AvgTriggerMs float64 `json:"avg_trigger_ms"`
}

// Summary aggregates every recorded cycle
func (db *DB) Summary() (*Summary, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN outcome = 'completed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN outcome = 'timeout' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN outcome = 'disarmed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN outcome = 'rearmed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN outcome = '' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN triggered_at > 0 THEN image_count ELSE 0 END), 0),
			COALESCE(AVG(CASE WHEN triggered_at > 0 THEN triggered_at - armed_at END), 0.0)
		FROM cycles
	`

	var s Summary
	err := db.conn.QueryRow(query).Scan(
		&s.Total, &s.Completed, &s.Timeout, &s.Disarmed, &s.Rearmed, &s.Running,
		&s.TotalImages, &s.AvgTriggerMs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query summary: %w", err)
	}

	return &s, nil
}
