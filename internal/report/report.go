// Package report delivers finished run reports to logs and message brokers.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"gol-bench/internal/engine"
)

// Sink receives run reports.
type Sink interface {
	Publish(ctx context.Context, r engine.RunReport) error
	Close() error
}

// Payload is the wire form of a run report.
type Payload struct {
	RunID                string    `json:"run_id"`
	Status               string    `json:"status"`
	Workers              int       `json:"workers"`
	Width                int       `json:"width"`
	Height               int       `json:"height"`
	Edge                 string    `json:"edge"`
	Pattern              string    `json:"pattern"`
	Seed                 int64     `json:"seed"`
	Generations          int       `json:"generations"`
	Population           int       `json:"population"`
	ElapsedMS            float64   `json:"elapsed_ms"`
	GenerationsPerSecond float64   `json:"generations_per_second"`
	CellUpdatesPerSecond float64   `json:"cell_updates_per_second"`
	Error                string    `json:"error,omitempty"`
	Timestamp            time.Time `json:"timestamp"`
}

// NewPayload flattens r for publication.
func NewPayload(r engine.RunReport, at time.Time) Payload {
	p := Payload{
		RunID:                r.RunID.String(),
		Status:               string(r.Status),
		Workers:              r.Config.Workers,
		Width:                r.Config.Width,
		Height:               r.Config.Height,
		Edge:                 r.Config.Edge.String(),
		Pattern:              r.Config.Pattern,
		Seed:                 r.Config.Seed,
		Generations:          r.Generations,
		Population:           r.Board.Population(),
		ElapsedMS:            float64(r.Elapsed) / float64(time.Millisecond),
		GenerationsPerSecond: r.GenerationsPerSecond(),
		CellUpdatesPerSecond: r.CellUpdatesPerSecond(),
		Timestamp:            at.UTC(),
	}
	if r.Config.Initial != nil {
		p.Pattern = "custom"
	} else if p.Pattern == "" {
		p.Pattern = engine.DefaultPattern
	}
	if r.Err != nil {
		p.Error = r.Err.Error()
	}
	return p
}

// JSON marshals the payload.
func (p Payload) JSON() ([]byte, error) {
	return json.Marshal(p)
}

// LogSink writes each report as a structured log line.
type LogSink struct {
	log *slog.Logger
}

// NewLogSink returns a sink logging to log, or slog.Default() when nil.
func NewLogSink(log *slog.Logger) *LogSink {
	if log == nil {
		log = slog.Default()
	}
	return &LogSink{log: log}
}

// Publish logs the report.
func (s *LogSink) Publish(ctx context.Context, r engine.RunReport) error {
	level := slog.LevelInfo
	if r.Status == engine.StatusFailed {
		level = slog.LevelError
	}
	attrs := []any{
		"run_id", r.RunID.String(),
		"status", r.Status,
		"workers", r.Config.Workers,
		"size", r.Board.Size(),
		"generations", r.Generations,
		"elapsed", r.Elapsed.Round(time.Microsecond),
		"gen_per_sec", r.GenerationsPerSecond(),
		"cells_per_sec", r.CellUpdatesPerSecond(),
	}
	if r.Err != nil {
		attrs = append(attrs, "error", r.Err)
	}
	s.log.Log(ctx, level, "benchmark result", attrs...)
	return nil
}

// Close is a no-op.
func (s *LogSink) Close() error { return nil }

// Multi fans reports out to several sinks.
type Multi []Sink

// Publish delivers r to every sink and joins their errors.
func (m Multi) Publish(ctx context.Context, r engine.RunReport) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink and joins their errors.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
