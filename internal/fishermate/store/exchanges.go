package store

import (
	"context"
	"fmt"
	"time"

	"github.com/fishermate/fishermate/internal/fishermate/channel"
	"github.com/fishermate/fishermate/internal/fishermate/session"
)

// Record implements channel.Recorder.
func (s *Store) Record(ctx context.Context, e channel.Exchange) error {
	at := e.At
	if at.IsZero() {
		at = s.now()
	}
	degraded := 0
	if e.Degraded {
		degraded = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exchanges (ts, trace_id, channel, user_mask, intent, language, messages, degraded)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, at.UTC(), e.TraceID, string(e.Channel), e.User, e.Intent, e.Language, e.Messages, degraded)
	if err != nil {
		return fmt.Errorf("store: record exchange: %w", err)
	}
	return nil
}

// Recent returns the latest exchanges, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]channel.Exchange, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT ts, trace_id, channel, user_mask, intent, language, messages, degraded
		FROM exchanges
		ORDER BY ts DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: query exchanges: %w", err)
	}
	defer rows.Close()

	var out []channel.Exchange
	for rows.Next() {
		var (
			e        channel.Exchange
			ch       string
			degraded int
		)
		if err := rows.Scan(&e.At, &e.TraceID, &ch, &e.User, &e.Intent, &e.Language, &e.Messages, &degraded); err != nil {
			return nil, fmt.Errorf("store: scan exchange: %w", err)
		}
		e.Channel = session.Channel(ch)
		e.Degraded = degraded != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

// Summary aggregates the exchange log over a window.
type Summary struct {
	Total     int            `json:"total"`
	Degraded  int            `json:"degraded"`
	ByIntent  map[string]int `json:"by_intent"`
	ByChannel map[string]int `json:"by_channel"`
}

// Summarize aggregates exchanges recorded at or after since.
func (s *Store) Summarize(ctx context.Context, since time.Time) (Summary, error) {
	sum := Summary{ByIntent: map[string]int{}, ByChannel: map[string]int{}}
	rows, err := s.db.QueryContext(ctx, `
		SELECT channel, intent, COUNT(*), SUM(degraded)
		FROM exchanges
		WHERE ts >= ?
		GROUP BY channel, intent
	`, since.UTC())
	if err != nil {
		return sum, fmt.Errorf("store: summarize exchanges: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ch, intent string
		var n, degraded int
		if err := rows.Scan(&ch, &intent, &n, &degraded); err != nil {
			return sum, fmt.Errorf("store: scan summary: %w", err)
		}
		sum.Total += n
		sum.Degraded += degraded
		sum.ByIntent[intent] += n
		sum.ByChannel[ch] += n
	}
	return sum, rows.Err()
}

// RecordBroadcast logs the outcome of one SMS broadcast.
func (s *Store) RecordBroadcast(ctx context.Context, traceID string, total, succeeded, failed int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO broadcasts (ts, trace_id, total, succeeded, failed) VALUES (?, ?, ?, ?, ?)
	`, s.now().UTC(), traceID, total, succeeded, failed)
	if err != nil {
		return fmt.Errorf("store: record broadcast: %w", err)
	}
	return nil
}
