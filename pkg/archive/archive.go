// Package archive keeps a history of built reports.
//
// Each run of `flowprof report --archive` stores the report JSON together
// with the input hashes and headline totals, so runs can be listed and
// compared later. [Mongo] is the production backend; [Memory] serves tests
// and single-process servers.
package archive

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/flowprof/pkg/report"
)

// ErrNotFound is returned by Get for unknown ids.
var ErrNotFound = errors.New("archived report not found")

// Entry is one archived run.
type Entry struct {
	ID        string
	CreatedAt time.Time
	Title     string
	LogPath   string
	SpecPath  string
	LogHash   string
	SpecHash  string
	Totals    report.Totals
	Report    *report.Report
}

// Summary is the listing form of an Entry, without the report body.
type Summary struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Title     string        `json:"title,omitempty"`
	LogPath   string        `json:"log_path,omitempty"`
	Totals    report.Totals `json:"totals"`
}

// Summary returns the listing form of e.
func (e Entry) Summary() Summary {
	return Summary{ID: e.ID, CreatedAt: e.CreatedAt, Title: e.Title, LogPath: e.LogPath, Totals: e.Totals}
}

// Store persists entries.
type Store interface {
	// Put stores e, assigning ID and CreatedAt when unset, and returns the id.
	Put(ctx context.Context, e Entry) (string, error)
	Get(ctx context.Context, id string) (*Entry, error)
	// List returns the newest entries first, at most limit (0 means 50).
	List(ctx context.Context, limit int) ([]Summary, error)
	Close(ctx context.Context) error
}

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 50

func prepare(e *Entry, now time.Time) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now.UTC()
	}
	if e.Report != nil {
		e.Totals = e.Report.Totals
	}
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
