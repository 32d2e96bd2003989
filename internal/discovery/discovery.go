// Package discovery finds candidate citation directories for a business
// by asking a research model, then filtering and validating the raw
// list. Discovery never fails an audit: malformed research output
// degrades to an empty candidate list.
package discovery

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/citation-audit/internal/model"
	"github.com/sells-group/citation-audit/internal/resilience"
	"github.com/sells-group/citation-audit/pkg/perplexity"
)

// CandidateValidator confirms reachability and domain identity for one
// candidate, possibly correcting its URL.
type CandidateValidator interface {
	Validate(ctx context.Context, cand model.DirectoryCandidate) model.DirectoryCandidate
}

// Discoverer produces validated directory candidates for a business.
type Discoverer struct {
	research  perplexity.Client
	validator CandidateValidator
}

// New creates a Discoverer.
func New(research perplexity.Client, validator CandidateValidator) *Discoverer {
	return &Discoverer{research: research, validator: validator}
}

// rawDirectory is the JSON shape the research prompt asks for.
type rawDirectory struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Category string `json:"category"`
}

// Discover queries the research model, filters the raw list, validates
// the survivors, and returns at most maxResults validated or corrected
// candidates.
func (d *Discoverer) Discover(ctx context.Context, business model.BusinessProfile, maxResults int) []model.DirectoryCandidate {
	raw := d.runResearch(ctx, business)
	if len(raw) == 0 {
		return nil
	}

	filtered := applyFilters(raw, business.Country)
	zap.L().Info("discovery: filtered raw candidates",
		zap.String("business", business.Name),
		zap.Int("raw", len(raw)),
		zap.Int("kept", len(filtered)),
	)

	kept := make([]model.DirectoryCandidate, 0, len(filtered))
	for _, cand := range filtered {
		if maxResults > 0 && len(kept) >= maxResults {
			break
		}
		if ctx.Err() != nil {
			break
		}
		validated := d.validator.Validate(ctx, cand)
		switch validated.Status {
		case model.ValidationValidated, model.ValidationCorrected:
			kept = append(kept, validated)
		default:
			zap.L().Debug("discovery: discarding candidate",
				zap.String("directory", cand.Name),
				zap.String("url", cand.URL),
			)
		}
	}
	return kept
}

// runResearch runs the three-bucket research prompt and parses the reply.
func (d *Discoverer) runResearch(ctx context.Context, business model.BusinessProfile) []model.DirectoryCandidate {
	// Low temperature for precision.
	temp := 0.2
	maxTokens := 8000
	resp, err := d.research.ChatCompletion(ctx, perplexity.ChatCompletionRequest{
		Messages: []perplexity.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(business)},
		},
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		zap.L().Warn("discovery: research request failed",
			zap.String("business", business.Name),
			zap.Error(err),
		)
		return nil
	}
	if len(resp.Choices) == 0 {
		return nil
	}

	cands, err := parseDirectories(resp.Choices[0].Message.Content)
	if err != nil {
		zap.L().Warn("discovery: unparseable research output",
			zap.String("business", business.Name),
			zap.Error(err),
		)
		return nil
	}
	return cands
}

// parseDirectories decodes the research reply, tolerating markdown
// fences and a bare top-level array. Unparseable output comes back as a
// MalformedResponseError; the caller degrades it to an empty list.
func parseDirectories(content string) ([]model.DirectoryCandidate, error) {
	content = strings.ReplaceAll(content, "```json", "")
	content = strings.ReplaceAll(content, "```", "")
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil
	}

	var wrapper struct {
		Directories []rawDirectory `json:"directories"`
	}
	var raw []rawDirectory
	if err := json.Unmarshal([]byte(content), &wrapper); err == nil && len(wrapper.Directories) > 0 {
		raw = wrapper.Directories
	} else if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, &resilience.MalformedResponseError{Source: "perplexity", Err: err}
	}

	cands := make([]model.DirectoryCandidate, 0, len(raw))
	for _, r := range raw {
		cands = append(cands, model.DirectoryCandidate{
			Name:     strings.TrimSpace(r.Name),
			URL:      strings.TrimSpace(r.URL),
			Category: model.DirectoryCategory(strings.ToLower(r.Category)),
			Status:   model.ValidationPending,
		})
	}
	return cands, nil
}
