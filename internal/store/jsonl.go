package store

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/citation-audit/internal/model"
)

// JSONLStore appends records to a JSON-lines file, one object per line.
// Records and the final summary share the file; the summary line carries
// a "summary" kind marker so downstream tooling can split them.
type JSONLStore struct {
	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
}

type jsonlLine struct {
	Kind    string                `json:"kind"`
	Record  *model.CitationRecord `json:"record,omitempty"`
	Summary *model.AuditSummary   `json:"summary,omitempty"`
}

// OpenJSONL opens (or creates) the JSONL file for appending.
func OpenJSONL(path string) (*JSONLStore, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, eris.Wrapf(err, "store: open %s", path)
	}
	return &JSONLStore{f: f, enc: json.NewEncoder(f)}, nil
}

// SaveRecord appends one citation record.
func (s *JSONLStore) SaveRecord(ctx context.Context, rec model.CitationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(jsonlLine{Kind: "record", Record: &rec}); err != nil {
		return eris.Wrap(err, "store: encode record")
	}
	return nil
}

// SaveSummary appends the audit summary.
func (s *JSONLStore) SaveSummary(ctx context.Context, summary model.AuditSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(jsonlLine{Kind: "summary", Summary: &summary}); err != nil {
		return eris.Wrap(err, "store: encode summary")
	}
	return nil
}

// Close flushes and closes the underlying file.
func (s *JSONLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.f.Close(); err != nil {
		return eris.Wrap(err, "store: close")
	}
	return nil
}
