// Package pipeline orchestrates the citation audit: discover candidate
// directories, resolve each one to a profile URL, fetch the profile, and
// verify its NAP data against the business ground truth. Directories run
// through independent worker pipelines with their own deadline budgets,
// so one stuck fetch never stalls the rest of the audit.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/citation-audit/internal/config"
	"github.com/sells-group/citation-audit/internal/fetch"
	"github.com/sells-group/citation-audit/internal/model"
	"github.com/sells-group/citation-audit/internal/registry"
	"github.com/sells-group/citation-audit/internal/resilience"
)

// Discoverer produces validated directory candidates for a business.
type Discoverer interface {
	Discover(ctx context.Context, business model.BusinessProfile, maxResults int) []model.DirectoryCandidate
}

// ProfileResolver locates the business's profile URL on one directory.
type ProfileResolver interface {
	Resolve(ctx context.Context, business model.BusinessProfile, cand model.DirectoryCandidate) (*model.ProfileCandidate, error)
}

// PageFetcher retrieves a profile page. Satisfied by fetch.Cascade.
type PageFetcher interface {
	Fetch(ctx context.Context, targetURL string) (*fetch.Page, error)
}

// CacheInvalidator is implemented by fetchers that keep a page cache.
// Refresh drops the cached copy of a profile before re-fetching it.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, url string) error
}

// Verifier scores a fetched profile page against the business NAP data.
type Verifier interface {
	Verify(page *fetch.Page, business model.BusinessProfile) model.NapVerificationResult
	Blocked(targetURL string) model.NapVerificationResult
}

// Pipeline runs the full audit for one business.
type Pipeline struct {
	discoverer Discoverer
	resolver   ProfileResolver
	fetcher    PageFetcher
	verifier   Verifier
	reg        *registry.Registry

	concurrency int
	dirTimeout  time.Duration
	hostRate    rate.Limit
	hostBurst   int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates a Pipeline from its stage collaborators.
func New(cfg config.PipelineConfig, d Discoverer, r ProfileResolver, f PageFetcher, v Verifier, reg *registry.Registry) *Pipeline {
	if reg == nil {
		reg = registry.New()
	}
	p := &Pipeline{
		discoverer:  d,
		resolver:    r,
		fetcher:     f,
		verifier:    v,
		reg:         reg,
		concurrency: cfg.Concurrency,
		dirTimeout:  time.Duration(cfg.DirectoryTimeoutSecs) * time.Second,
		hostRate:    rate.Limit(cfg.HostRatePerSec),
		hostBurst:   cfg.HostBurst,
		limiters:    make(map[string]*rate.Limiter),
	}
	if p.concurrency <= 0 {
		p.concurrency = 5
	}
	if p.dirTimeout <= 0 {
		p.dirTimeout = 3 * time.Minute
	}
	if p.hostRate <= 0 {
		p.hostRate = rate.Limit(1)
	}
	if p.hostBurst <= 0 {
		p.hostBurst = 2
	}
	return p
}

// Run executes the audit and streams one terminal CitationRecord per
// discovered directory. The channel closes when every directory has
// reached a terminal state; a single directory's failure never fails
// the audit. Callers drain the channel until it closes: cancelled
// directories still deliver their ERROR records.
func (p *Pipeline) Run(ctx context.Context, business model.BusinessProfile, maxDirectories int) <-chan model.CitationRecord {
	out := make(chan model.CitationRecord)

	go func() {
		defer close(out)

		auditID := uuid.NewString()
		log := zap.L().With(zap.String("audit_id", auditID), zap.String("business", business.Name))
		log.Info("audit starting", zap.Int("max_directories", maxDirectories))

		candidates := p.discoverer.Discover(ctx, business, maxDirectories)
		log.Info("discovery complete", zap.Int("candidates", len(candidates)))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.concurrency)
		for _, cand := range candidates {
			cand := cand
			g.Go(func() error {
				// Every directory delivers exactly one record, even after
				// cancellation. A select on gctx here would race the
				// consumer and drop records nondeterministically.
				out <- p.processDirectory(gctx, auditID, business, cand, false)
				return nil
			})
		}
		_ = g.Wait()
		log.Info("audit complete")
	}()

	return out
}

// RunCollect runs the audit to completion and returns all records plus
// the aggregate summary.
func (p *Pipeline) RunCollect(ctx context.Context, business model.BusinessProfile, maxDirectories int) ([]model.CitationRecord, model.AuditSummary) {
	var records []model.CitationRecord
	summary := model.AuditSummary{Business: business.Name}
	for rec := range p.Run(ctx, business, maxDirectories) {
		if summary.AuditID == "" {
			summary.AuditID = rec.AuditID
		}
		records = append(records, rec)
		summary.Observe(rec)
	}
	return records, summary
}

// processDirectory takes one validated candidate through resolution and
// verification under its own deadline budget. fresh bypasses any cached
// copy of the resolved profile page.
func (p *Pipeline) processDirectory(ctx context.Context, auditID string, business model.BusinessProfile, cand model.DirectoryCandidate, fresh bool) model.CitationRecord {
	rec := model.NewCitationRecord(auditID, business, cand)
	log := zap.L().With(zap.String("audit_id", auditID), zap.String("directory", cand.Name))

	dctx, cancel := context.WithTimeout(ctx, p.dirTimeout)
	defer cancel()

	switch cand.Status {
	case model.ValidationValidated, model.ValidationCorrected:
		rec.State = model.StateValidated
	case model.ValidationDiscarded:
		rec.State = model.StateDiscarded
		rec.Details = "directory failed validation"
		return rec
	default:
		rec.State = model.StateCandidate
	}

	if err := p.waitHost(dctx, cand.Domain()); err != nil {
		return p.fail(rec, dctx, err)
	}

	prof, err := p.resolver.Resolve(dctx, business, cand)
	if err != nil {
		var ambiguous *resilience.AmbiguousMatchError
		if errors.As(err, &ambiguous) {
			// Listings surfaced but none cleared the thresholds. A gap
			// record beats a false match.
			rec.Profile = &model.ProfileCandidate{
				DirectoryName: cand.Name,
				Directory:     ambiguous.Directory,
				Query:         ambiguous.Query,
				Status:        model.ResolveNotFound,
				Match:         model.MatchUncertain,
			}
			rec.State = model.StateResolvedNotFound
			rec.SubmitURL = p.reg.SubmitURLFor(cand)
			rec.Details = "search results found but none matched confidently"
			return rec
		}
		return p.fail(rec, dctx, err)
	}
	rec.Profile = prof

	switch prof.Status {
	case model.ResolveNotSearchable:
		rec.State = model.StateNotSearchable
		rec.SubmitURL = p.reg.SubmitURLFor(cand)
		rec.Details = "directory cannot be searched; check listing manually"
		return rec
	case model.ResolveNotFound:
		rec.State = model.StateResolvedNotFound
		rec.SubmitURL = p.reg.SubmitURLFor(cand)
		rec.Details = "no listing found"
		return rec
	}

	rec.State = model.StateResolvedFound
	log.Debug("profile resolved", zap.String("url", prof.URL), zap.String("match", string(prof.Match)))

	if err := p.waitHost(dctx, model.BaseDomain(prof.URL)); err != nil {
		return p.fail(rec, dctx, err)
	}

	if fresh {
		if inv, ok := p.fetcher.(CacheInvalidator); ok {
			if ierr := inv.Invalidate(dctx, prof.URL); ierr != nil {
				log.Warn("cache invalidation failed", zap.String("url", prof.URL), zap.Error(ierr))
			}
		}
	}

	page, err := p.fetcher.Fetch(dctx, prof.URL)
	switch {
	case err == nil:
		v := p.verifier.Verify(page, business)
		rec.Verification = &v
		rec.State = model.StateVerified
		rec.Details = v.Details
	case resilience.IsDeadLink(err):
		// The resolved URL is gone. Dead links are terminal: the record
		// drops to not-found regardless of how promising the URL looked.
		log.Debug("resolved URL is a dead link", zap.String("url", prof.URL))
		rec.Profile.Status = model.ResolveNotFound
		rec.State = model.StateResolvedNotFound
		rec.SubmitURL = p.reg.SubmitURLFor(cand)
		rec.Details = "listing URL no longer exists"
	case resilience.IsBlocked(err):
		v := p.verifier.Blocked(prof.URL)
		rec.Verification = &v
		rec.State = model.StateBlocked
		rec.Details = v.Details
	default:
		return p.fail(rec, dctx, err)
	}
	return rec
}

// fail marks the record ERROR, distinguishing deadline expiry from other
// failures so cancelled directories surface as timeouts.
func (p *Pipeline) fail(rec model.CitationRecord, ctx context.Context, err error) model.CitationRecord {
	rec.State = model.StateError
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		rec.Details = "directory deadline exceeded"
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		rec.Details = "audit cancelled"
	default:
		rec.Details = err.Error()
	}
	zap.L().Warn("directory pipeline failed",
		zap.String("directory", rec.Directory.Name),
		zap.String("details", rec.Details))
	return rec
}

// waitHost applies the shared per-host rate limit before any network
// operation against that host.
func (p *Pipeline) waitHost(ctx context.Context, host string) error {
	if host == "" {
		return nil
	}
	p.mu.Lock()
	lim, ok := p.limiters[host]
	if !ok {
		lim = rate.NewLimiter(p.hostRate, p.hostBurst)
		p.limiters[host] = lim
	}
	p.mu.Unlock()
	return lim.Wait(ctx)
}
