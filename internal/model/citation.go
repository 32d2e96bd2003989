package model

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DirectoryCategory stratifies discovered directories by priority bucket.
type DirectoryCategory string

const (
	CategorySpecialty DirectoryCategory = "specialty" // industry-specific
	CategoryLocal     DirectoryCategory = "local"     // city/regional
	CategoryGeneral   DirectoryCategory = "general"   // general business
)

// ValidationStatus tracks a directory candidate through validation.
type ValidationStatus string

const (
	ValidationPending   ValidationStatus = "pending"
	ValidationValidated ValidationStatus = "validated"
	ValidationCorrected ValidationStatus = "corrected"
	ValidationDiscarded ValidationStatus = "discarded"
)

// DirectoryCandidate is one directory surfaced by discovery. Candidates are
// never deleted; failed validation marks them discarded.
type DirectoryCandidate struct {
	Name     string            `json:"name"`
	URL      string            `json:"url"`
	Category DirectoryCategory `json:"category"`
	Status   ValidationStatus  `json:"status"`
}

// Domain returns the candidate's base domain, lowercased with any "www."
// prefix stripped. Returns "" for unparseable URLs.
func (d DirectoryCandidate) Domain() string {
	return BaseDomain(d.URL)
}

// BaseDomain extracts the base domain from a URL (https://www.ada.org/foo
// -> ada.org). Bare domains without a scheme are accepted.
func BaseDomain(rawURL string) string {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// MatchKind classifies how a profile candidate was identified.
type MatchKind string

const (
	MatchProfile      MatchKind = "profile_match" // name tokens in URL slug or title
	MatchDoctor       MatchKind = "doctor_match"  // practitioner alias in title/snippet
	MatchList         MatchKind = "list_match"    // list page that names the business
	MatchValidated    MatchKind = "validated"     // confirmed by fetching the page body
	MatchDirectSearch MatchKind = "direct_search" // found via the directory's own search
	MatchUncertain    MatchKind = "uncertain"
)

// ResolveStatus is the outcome of profile resolution for one directory.
type ResolveStatus string

const (
	ResolveFound         ResolveStatus = "found"
	ResolveNotFound      ResolveStatus = "not_found"
	ResolveNotSearchable ResolveStatus = "not_searchable"
)

// ProfileCandidate is the resolved profile listing for a business on one
// directory. Immutable once created; a re-run produces a new candidate.
type ProfileCandidate struct {
	DirectoryName string        `json:"directory_name"`
	Directory     string        `json:"directory_domain"`
	Status        ResolveStatus `json:"status"`
	URL           string        `json:"url,omitempty"`
	Title         string        `json:"title,omitempty"`
	Match         MatchKind     `json:"match,omitempty"`
	Query         string        `json:"query,omitempty"` // search query that produced it
}

// VerifyStatus is the outcome of NAP verification for one profile URL.
type VerifyStatus string

const (
	VerifyFound    VerifyStatus = "found"
	VerifyNotFound VerifyStatus = "not_found"
	VerifyError    VerifyStatus = "error"
	VerifyBlocked  VerifyStatus = "blocked"
)

// NapVerificationResult is the terminal verification record for one URL.
// Field flags are tri-state: nil means "not checked".
//
// Invariants: PhoneOK == true implies Confidence >= 90; Status == blocked
// implies Confidence == 0 and all field flags nil.
type NapVerificationResult struct {
	URL        string       `json:"url"`
	Status     VerifyStatus `json:"status"`
	Confidence int          `json:"confidence"` // 0-100
	NameOK     *bool        `json:"name_ok"`
	AddressOK  *bool        `json:"address_ok"`
	PhoneOK    *bool        `json:"phone_ok"`
	WebsiteOK  *bool        `json:"website_ok"`
	Details    string       `json:"details"` // 4-line NAP+W summary
}

// CitationState is the lifecycle state of one directory within an audit.
type CitationState string

const (
	StatePending          CitationState = "pending"
	StateCandidate        CitationState = "candidate"
	StateValidated        CitationState = "validated"
	StateDiscarded        CitationState = "discarded"
	StateResolvedFound    CitationState = "resolved_found"
	StateResolvedNotFound CitationState = "resolved_not_found"
	StateNotSearchable    CitationState = "not_searchable"
	StateVerified         CitationState = "verified"
	StateBlocked          CitationState = "blocked"
	StateError            CitationState = "error"
)

// Terminal reports whether the state ends the directory's pipeline. Any
// terminal state may re-enter at pending via an explicit refresh.
func (s CitationState) Terminal() bool {
	switch s {
	case StateDiscarded, StateResolvedNotFound, StateNotSearchable,
		StateVerified, StateBlocked, StateError:
		return true
	}
	return false
}

// CitationRecord is the final per-directory audit record, composing the
// candidate, resolution, and verification stages with a lifecycle state.
type CitationRecord struct {
	ID           string                 `json:"id"`
	AuditID      string                 `json:"audit_id"`
	Business     string                 `json:"business"`
	Directory    DirectoryCandidate     `json:"directory"`
	Profile      *ProfileCandidate      `json:"profile,omitempty"`
	Verification *NapVerificationResult `json:"verification,omitempty"`
	State        CitationState          `json:"state"`
	SubmitURL    string                 `json:"submit_url,omitempty"` // claim/submission URL for gaps
	Details      string                 `json:"details,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

// NewCitationRecord creates a record in the candidate state.
func NewCitationRecord(auditID string, business BusinessProfile, dir DirectoryCandidate) CitationRecord {
	return CitationRecord{
		ID:        uuid.NewString(),
		AuditID:   auditID,
		Business:  business.Name,
		Directory: dir,
		State:     StateCandidate,
		CreatedAt: time.Now().UTC(),
	}
}

// AuditSummary aggregates per-directory outcomes for a whole audit.
type AuditSummary struct {
	AuditID       string `json:"audit_id"`
	Business      string `json:"business"`
	Discovered    int    `json:"discovered"`
	Validated     int    `json:"validated"`
	Found         int    `json:"found"`
	NotFound      int    `json:"not_found"`
	NotSearchable int    `json:"not_searchable"`
	Verified      int    `json:"verified"`
	Blocked       int    `json:"blocked"`
	Errors        int    `json:"errors"`
}

// Observe folds one terminal record into the summary counts.
func (s *AuditSummary) Observe(rec CitationRecord) {
	s.Discovered++
	switch rec.Directory.Status {
	case ValidationValidated, ValidationCorrected:
		s.Validated++
	}
	switch rec.State {
	case StateVerified:
		s.Found++
		s.Verified++
	case StateResolvedFound:
		s.Found++
	case StateResolvedNotFound:
		s.NotFound++
	case StateNotSearchable:
		s.NotSearchable++
	case StateBlocked:
		s.Found++
		s.Blocked++
	case StateError:
		s.Errors++
	}
}
