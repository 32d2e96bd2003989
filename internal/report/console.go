// Package report renders audit results for humans: a console summary and
// an XLSX workbook with one row per directory.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/citation-audit/internal/model"
)

// stateOrder ranks states for display, most actionable first.
var stateOrder = map[model.CitationState]int{
	model.StateResolvedNotFound: 0,
	model.StateBlocked:          1,
	model.StateError:            2,
	model.StateVerified:         3,
	model.StateResolvedFound:    4,
	model.StateNotSearchable:    5,
	model.StateDiscarded:        6,
}

// FormatConsole renders a human-readable audit report.
func FormatConsole(business model.BusinessProfile, records []model.CitationRecord, summary model.AuditSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Citation Audit: %s\n", business.Name)
	if loc := business.LocationTerm(); loc != "" {
		fmt.Fprintf(&b, "Location: %s\n", loc)
	}
	fmt.Fprintf(&b, "Audit ID: %s\n\n", summary.AuditID)

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- Directories discovered: %d\n", summary.Discovered)
	fmt.Fprintf(&b, "- Listings found: %d\n", summary.Found)
	fmt.Fprintf(&b, "- Verified: %d\n", summary.Verified)
	fmt.Fprintf(&b, "- Missing (submission opportunities): %d\n", summary.NotFound)
	fmt.Fprintf(&b, "- Not searchable: %d\n", summary.NotSearchable)
	fmt.Fprintf(&b, "- Blocked: %d\n", summary.Blocked)
	fmt.Fprintf(&b, "- Errors: %d\n\n", summary.Errors)

	sorted := make([]model.CitationRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		oi, oj := stateOrder[sorted[i].State], stateOrder[sorted[j].State]
		if oi != oj {
			return oi < oj
		}
		return sorted[i].Directory.Name < sorted[j].Directory.Name
	})

	b.WriteString("## Directories\n")
	for _, rec := range sorted {
		fmt.Fprintf(&b, "- **%s** (%s): %s\n", rec.Directory.Name, rec.Directory.Domain(), stateLabel(rec.State))
		if rec.Profile != nil && rec.Profile.URL != "" {
			fmt.Fprintf(&b, "  URL: %s\n", rec.Profile.URL)
		}
		if rec.Verification != nil {
			fmt.Fprintf(&b, "  Confidence: %d%%\n", rec.Verification.Confidence)
			if rec.Verification.Details != "" {
				fmt.Fprintf(&b, "  %s\n", rec.Verification.Details)
			}
		} else if rec.Details != "" {
			fmt.Fprintf(&b, "  %s\n", rec.Details)
		}
		if rec.SubmitURL != "" {
			fmt.Fprintf(&b, "  Submit: %s\n", rec.SubmitURL)
		}
	}

	return b.String()
}

func stateLabel(s model.CitationState) string {
	switch s {
	case model.StateVerified:
		return "verified"
	case model.StateResolvedFound:
		return "found (unverified)"
	case model.StateResolvedNotFound:
		return "MISSING"
	case model.StateNotSearchable:
		return "not searchable"
	case model.StateBlocked:
		return "blocked"
	case model.StateDiscarded:
		return "discarded"
	case model.StateError:
		return "error"
	}
	return string(s)
}

// flag renders a tri-state check flag.
func flag(v *bool) string {
	switch {
	case v == nil:
		return "—"
	case *v:
		return "✓"
	default:
		return "✗"
	}
}
