package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/citation-audit/internal/fetch"
	"github.com/sells-group/citation-audit/internal/model"
	"github.com/sells-group/citation-audit/internal/registry"
	"github.com/sells-group/citation-audit/internal/resilience"
	"github.com/sells-group/citation-audit/pkg/serper"
)

type stubSearch struct {
	queries []string
	results map[string][]serper.Result
	err     error
}

func (s *stubSearch) Search(_ context.Context, query string, _ ...serper.SearchOption) ([]serper.Result, error) {
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	return s.results[query], nil
}

type stubFetcher struct {
	pages map[string]*fetch.Page
	errs  map[string]error
	calls []string
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (*fetch.Page, error) {
	f.calls = append(f.calls, url)
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	if p, ok := f.pages[url]; ok {
		return p, nil
	}
	return nil, errors.New("connection refused")
}

func testBusiness() model.BusinessProfile {
	return model.BusinessProfile{
		Name:     "Acme Dental Group",
		Street:   "123 Main St",
		City:     "Austin",
		Region:   "TX",
		Phone:    "(512) 555-0147",
		Category: "general_dentistry",
	}
}

func yelpCandidate() model.DirectoryCandidate {
	return model.DirectoryCandidate{
		Name:     "Yelp",
		URL:      "https://www.yelp.com",
		Category: model.CategoryGeneral,
		Status:   model.ValidationValidated,
	}
}

func TestResolve_NotSearchable(t *testing.T) {
	r := New(&stubSearch{}, nil, registry.New())

	prof, err := r.Resolve(context.Background(), testBusiness(), model.DirectoryCandidate{
		Name: "Google Business Profile",
		URL:  "https://business.google.com",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ResolveNotSearchable, prof.Status)
	assert.Empty(t, prof.URL)
}

func TestResolve_ProfileMatchBySlug(t *testing.T) {
	query := `site:yelp.com "Acme Dental Group" Austin TX`
	search := &stubSearch{results: map[string][]serper.Result{
		query: {
			{URL: "https://www.yelp.com/biz/acme-dental-group-austin", Title: "ACME DENTAL GROUP - Updated 2026"},
			{URL: "https://www.yelp.com/biz/other-practice", Title: "Other Practice"},
		},
	}}
	r := New(search, nil, registry.New())

	prof, err := r.Resolve(context.Background(), testBusiness(), yelpCandidate())
	require.NoError(t, err)
	assert.Equal(t, model.ResolveFound, prof.Status)
	assert.Equal(t, model.MatchProfile, prof.Match)
	assert.Equal(t, "https://www.yelp.com/biz/acme-dental-group-austin", prof.URL)
	assert.Equal(t, query, prof.Query)
}

func TestResolve_DoctorMatch(t *testing.T) {
	query := `site:healthgrades.com "Dr. Jane Smith" Austin TX`
	search := &stubSearch{results: map[string][]serper.Result{
		query: {
			{
				URL:     "https://www.healthgrades.com/physician/dr-js-xyz123",
				Title:   "Jane Smith, DDS - Dentistry",
				Snippet: "Dr. Jane Smith is a dentist in Austin, TX.",
			},
		},
	}}
	r := New(search, nil, registry.New())

	biz := testBusiness()
	biz.Alias = "Dr. Jane Smith"
	prof, err := r.Resolve(context.Background(), biz, model.DirectoryCandidate{
		Name: "Healthgrades",
		URL:  "https://www.healthgrades.com",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ResolveFound, prof.Status)
	assert.Equal(t, model.MatchDoctor, prof.Match)
}

func TestResolve_ListPageUpgradedWhenNamed(t *testing.T) {
	query := `site:yelp.com "Acme Dental Group" Austin TX`
	search := &stubSearch{results: map[string][]serper.Result{
		query: {
			{
				URL:     "https://www.yelp.com/best-dentists-austin",
				Title:   "Best Dentists in Austin",
				Snippet: "Top picks include Acme Dental Group and more.",
			},
		},
	}}
	r := New(search, nil, registry.New())

	prof, err := r.Resolve(context.Background(), testBusiness(), yelpCandidate())
	require.NoError(t, err)
	assert.Equal(t, model.ResolveFound, prof.Status)
	assert.Equal(t, model.MatchProfile, prof.Match)
}

func TestResolve_DomainCorrectionApplied(t *testing.T) {
	query := `site:ada.org "Acme Dental Group" Austin TX`
	search := &stubSearch{results: map[string][]serper.Result{
		query: {
			{URL: "https://findadentist.ada.org/dentist/acme-dental-group", Title: "Acme Dental Group"},
		},
	}}
	r := New(search, nil, registry.New())

	prof, err := r.Resolve(context.Background(), testBusiness(), model.DirectoryCandidate{
		Name: "American Dental Association Find-a-Dentist",
		URL:  "https://1800dentist.com",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ResolveFound, prof.Status)
	assert.Equal(t, "ada.org", prof.Directory)
	require.Len(t, search.queries, 1)
	assert.Equal(t, query, search.queries[0])
}

func TestResolve_LocationFallback(t *testing.T) {
	fallback := `site:yellowpages.com.au "Acme Dental Group"`
	search := &stubSearch{results: map[string][]serper.Result{
		fallback: {
			{URL: "https://www.yellowpages.com.au/nsw/sydney/acme-dental-group-123", Title: "Acme Dental Group | Yellow Pages"},
		},
	}}
	r := New(search, nil, registry.New())

	biz := testBusiness()
	biz.City = "Sydney"
	biz.Region = "NSW"
	biz.Country = "Australia"

	prof, err := r.Resolve(context.Background(), biz, model.DirectoryCandidate{
		Name: "Yellow Pages Australia",
		URL:  "https://www.yellowpages.com.au",
	})
	require.NoError(t, err)
	require.Len(t, search.queries, 2)
	assert.Equal(t, `site:yellowpages.com.au "Acme Dental Group" Australia`, search.queries[0])
	assert.Equal(t, fallback, search.queries[1])
	assert.Equal(t, model.ResolveFound, prof.Status)
	assert.Equal(t, fallback, prof.Query)
}

func TestResolve_HomepageResultsFiltered(t *testing.T) {
	query := `site:yelp.com "Acme Dental Group" Austin TX`
	fallback := `site:yelp.com "Acme Dental Group"`
	homepages := []serper.Result{
		{URL: "https://www.yelp.com/", Title: "Yelp"},
		{URL: "https://www.yelp.com/index.html", Title: "Yelp"},
	}
	search := &stubSearch{results: map[string][]serper.Result{
		query:    homepages,
		fallback: homepages,
	}}
	r := New(search, nil, registry.New())

	prof, err := r.Resolve(context.Background(), testBusiness(), yelpCandidate())
	require.NoError(t, err)
	assert.Equal(t, model.ResolveNotFound, prof.Status)
}

func TestResolve_SearchError(t *testing.T) {
	search := &stubSearch{err: errors.New("quota exceeded")}
	r := New(search, nil, registry.New())

	_, err := r.Resolve(context.Background(), testBusiness(), yelpCandidate())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestResolve_UncertainConfirmedByFetch(t *testing.T) {
	query := `site:dentaldir.com "Acme Dental Group" Austin TX`
	uncertainURL := "https://dentaldir.com/profiles/98172"
	search := &stubSearch{results: map[string][]serper.Result{
		query: {
			{URL: uncertainURL, Title: "Provider Profile", Snippet: "Dental provider details."},
		},
	}}
	fetcher := &stubFetcher{pages: map[string]*fetch.Page{
		uncertainURL: {
			URL:   uncertainURL,
			Title: "Provider Profile",
			Text:  "Welcome to Acme Dental Group, serving Austin since 2005.",
		},
	}}
	r := New(search, fetcher, registry.New())

	prof, err := r.Resolve(context.Background(), testBusiness(), model.DirectoryCandidate{
		Name: "Dental Directory",
		URL:  "https://dentaldir.com",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ResolveFound, prof.Status)
	assert.Equal(t, model.MatchValidated, prof.Match)
	assert.Equal(t, uncertainURL, prof.URL)
}

func TestResolve_UncertainDeadLinkRejected(t *testing.T) {
	query := `site:dentaldir.com "Acme Dental Group" Austin TX`
	deadURL := "https://dentaldir.com/profiles/41220"
	search := &stubSearch{results: map[string][]serper.Result{
		query: {
			{URL: deadURL, Title: "Provider Profile", Snippet: "Dental provider details."},
		},
	}}
	fetcher := &stubFetcher{errs: map[string]error{
		deadURL: &resilience.DeadLinkError{URL: deadURL, StatusCode: 404},
	}}
	r := New(search, fetcher, registry.New())

	prof, err := r.Resolve(context.Background(), testBusiness(), model.DirectoryCandidate{
		Name: "Dental Directory",
		URL:  "https://dentaldir.com",
	})
	// A 404 during confirmation rejects the result outright; what is
	// left is an ambiguous miss, not a match.
	require.Error(t, err)
	assert.True(t, resilience.IsAmbiguous(err))
	assert.Nil(t, prof)
}

func TestResolve_UncertainBlockedAssumedValid(t *testing.T) {
	query := `site:dentaldir.com "Acme Dental Group" Austin TX`
	blockedURL := "https://dentaldir.com/profiles/55512"
	search := &stubSearch{results: map[string][]serper.Result{
		query: {
			{URL: blockedURL, Title: "Provider Profile", Snippet: "Dental provider details."},
		},
	}}
	fetcher := &stubFetcher{errs: map[string]error{
		blockedURL: &resilience.BlockedError{URL: blockedURL, Reason: "cloudflare challenge"},
	}}
	r := New(search, fetcher, registry.New())

	prof, err := r.Resolve(context.Background(), testBusiness(), model.DirectoryCandidate{
		Name: "Dental Directory",
		URL:  "https://dentaldir.com",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ResolveFound, prof.Status)
	assert.Equal(t, model.MatchValidated, prof.Match)
	assert.Equal(t, blockedURL, prof.URL)
}

func TestResolve_UncertainSoft404Rejected(t *testing.T) {
	query := `site:dentaldir.com "Acme Dental Group" Austin TX`
	softURL := "https://dentaldir.com/profiles/77001"
	search := &stubSearch{results: map[string][]serper.Result{
		query: {
			{URL: softURL, Title: "Provider Profile", Snippet: "Dental provider details."},
		},
	}}
	fetcher := &stubFetcher{pages: map[string]*fetch.Page{
		softURL: {
			URL:  softURL,
			Text: "Page not found. Acme Dental Group may have moved.",
		},
	}}
	r := New(search, fetcher, registry.New())

	prof, err := r.Resolve(context.Background(), testBusiness(), model.DirectoryCandidate{
		Name: "Dental Directory",
		URL:  "https://dentaldir.com",
	})
	require.Error(t, err)
	assert.True(t, resilience.IsAmbiguous(err))
	assert.Nil(t, prof)
}

func TestResolve_SearchPageProfileLinkExtracted(t *testing.T) {
	query := `site:dentaldir.com "Acme Dental Group" Austin TX`
	searchPageURL := "https://dentaldir.com/search?location=austin"
	search := &stubSearch{results: map[string][]serper.Result{
		query: {
			{URL: searchPageURL, Title: "Dentist Listings", Snippet: "Browse dentists."},
		},
	}}
	fetcher := &stubFetcher{pages: map[string]*fetch.Page{
		searchPageURL: {
			URL:   searchPageURL,
			Title: "Search Results",
			Text:  "Search results for dentists in Austin: Acme Dental Group and 12 others.",
			HTML: `<html><body>
				<a href="/search?page=2">Next page</a>
				<a href="/listing/acme-dental-group-austin">Acme Dental Group</a>
			</body></html>`,
		},
	}}
	r := New(search, fetcher, registry.New())

	prof, err := r.Resolve(context.Background(), testBusiness(), model.DirectoryCandidate{
		Name: "Dental Directory",
		URL:  "https://dentaldir.com",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ResolveFound, prof.Status)
	assert.Equal(t, model.MatchValidated, prof.Match)
	assert.Equal(t, "https://dentaldir.com/listing/acme-dental-group-austin", prof.URL)
	assert.Equal(t, "Acme Dental Group", prof.Title)
}

func TestResolve_DirectSearchFallback(t *testing.T) {
	searchPageURL := "https://www.yelp.com/search?find_desc=Acme+Dental+Group&find_loc=Austin"
	search := &stubSearch{results: map[string][]serper.Result{}}
	fetcher := &stubFetcher{pages: map[string]*fetch.Page{
		searchPageURL: {
			URL:  searchPageURL,
			Text: "Results: Acme Dental Group",
			HTML: `<html><body><a href="/biz/acme-dental-group-austin">Acme Dental Group</a></body></html>`,
		},
	}}
	r := New(search, fetcher, registry.New())

	prof, err := r.Resolve(context.Background(), testBusiness(), yelpCandidate())
	require.NoError(t, err)
	require.Contains(t, fetcher.calls, searchPageURL)
	assert.Equal(t, model.ResolveFound, prof.Status)
	assert.Equal(t, model.MatchDirectSearch, prof.Match)
	assert.Equal(t, "https://yelp.com/biz/acme-dental-group-austin", prof.URL)
}

func TestResolve_MaxConfirmLimit(t *testing.T) {
	query := `site:dentaldir.com "Acme Dental Group" Austin TX`
	var results []serper.Result
	for _, u := range []string{
		"https://dentaldir.com/profiles/1",
		"https://dentaldir.com/profiles/2",
		"https://dentaldir.com/profiles/3",
		"https://dentaldir.com/profiles/4",
	} {
		results = append(results, serper.Result{URL: u, Title: "Provider Profile"})
	}
	search := &stubSearch{results: map[string][]serper.Result{query: results}}
	fetcher := &stubFetcher{errs: map[string]error{}}
	for _, res := range results {
		fetcher.errs[res.URL] = errors.New("connection refused")
	}
	r := New(search, fetcher, registry.New(), WithMaxConfirm(2))

	prof, err := r.Resolve(context.Background(), testBusiness(), model.DirectoryCandidate{
		Name: "Dental Directory",
		URL:  "https://dentaldir.com",
	})
	require.Error(t, err)
	assert.True(t, resilience.IsAmbiguous(err))
	assert.Nil(t, prof)
	// Two confirmation fetches, then one direct-search attempt is skipped
	// because dentaldir.com has no search template.
	assert.Len(t, fetcher.calls, 2)
}

func TestNameInText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"Acme Dental Group", "Welcome to Acme Dental Group", true},
		{"Acme Dental Group", "acme dental in Austin", true},
		{"Dr. Jane Smith", "Jane Smith, DDS", true},
		{"Northwestern Medicine", "Dr. Smith trained at Northwestern in internal medicine", false},
		{"Smile", "Visit Smile today", true},
		{"Smile", "Smiling faces", false},
		{"", "anything", false},
		{"Acme Dental Group", "", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, NameInText(tc.name, tc.text), "name=%q text=%q", tc.name, tc.text)
	}
}

func TestExtractProfileLink_SkipsNavigationLinks(t *testing.T) {
	html := `<html><body>
		<a href="/search?q=dentist">Search dentists</a>
		<a href="/category/dental">Dental category</a>
		<a href="/browse/austin">Browse Austin</a>
		<a href="https://dentaldir.com/listing/acme-dental-group">Acme Dental Group</a>
	</body></html>`

	link, title := extractProfileLink(html, "Acme Dental Group", "dentaldir.com")
	assert.Equal(t, "https://dentaldir.com/listing/acme-dental-group", link)
	assert.Equal(t, "Acme Dental Group", title)
}

func TestExtractProfileLink_NoMatch(t *testing.T) {
	html := `<html><body><a href="/listing/other-practice">Other Practice</a></body></html>`
	link, _ := extractProfileLink(html, "Acme Dental Group", "dentaldir.com")
	assert.Empty(t, link)
}
