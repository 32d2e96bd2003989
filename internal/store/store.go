// Package store persists audit results. The pipeline never reads its own
// prior results; every run treats candidates fresh, so the interface is
// write-only and "already exists" dedup stays with the caller.
package store

import (
	"context"

	"github.com/sells-group/citation-audit/internal/model"
)

// Store accepts citation records keyed by (business, directory).
type Store interface {
	SaveRecord(ctx context.Context, rec model.CitationRecord) error
	SaveSummary(ctx context.Context, summary model.AuditSummary) error
	Close() error
}
