package pipeline

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/citation-audit/internal/model"
	"github.com/sells-group/citation-audit/internal/resilience"
)

// Discover runs only the discovery stage.
func (p *Pipeline) Discover(ctx context.Context, business model.BusinessProfile, maxResults int) []model.DirectoryCandidate {
	return p.discoverer.Discover(ctx, business, maxResults)
}

// Resolve runs only the resolution stage for one directory candidate.
func (p *Pipeline) Resolve(ctx context.Context, business model.BusinessProfile, cand model.DirectoryCandidate) (*model.ProfileCandidate, error) {
	if err := p.waitHost(ctx, cand.Domain()); err != nil {
		return nil, err
	}
	return p.resolver.Resolve(ctx, business, cand)
}

// Verify fetches one profile URL and scores its NAP data against the
// business. Fetch failures surface as error or blocked results rather
// than a returned error so partial re-runs behave like the full audit.
func (p *Pipeline) Verify(ctx context.Context, business model.BusinessProfile, profileURL string) model.NapVerificationResult {
	if err := p.waitHost(ctx, model.BaseDomain(profileURL)); err != nil {
		return model.NapVerificationResult{
			URL:     profileURL,
			Status:  model.VerifyError,
			Details: err.Error(),
		}
	}

	page, err := p.fetcher.Fetch(ctx, profileURL)
	switch {
	case err == nil:
		return p.verifier.Verify(page, business)
	case resilience.IsDeadLink(err):
		return model.NapVerificationResult{
			URL:     profileURL,
			Status:  model.VerifyNotFound,
			Details: "listing URL no longer exists",
		}
	case resilience.IsBlocked(err):
		return p.verifier.Blocked(profileURL)
	default:
		return model.NapVerificationResult{
			URL:     profileURL,
			Status:  model.VerifyError,
			Details: err.Error(),
		}
	}
}

// Refresh re-runs the full per-directory pipeline for one directory,
// producing a fresh terminal record that replaces any prior result.
// Cached pages for the resolved profile are invalidated so the verdict
// reflects the live listing.
func (p *Pipeline) Refresh(ctx context.Context, business model.BusinessProfile, cand model.DirectoryCandidate) model.CitationRecord {
	auditID := uuid.NewString()
	zap.L().Info("refreshing directory",
		zap.String("audit_id", auditID),
		zap.String("directory", cand.Name))
	return p.processDirectory(ctx, auditID, business, cand, true)
}
