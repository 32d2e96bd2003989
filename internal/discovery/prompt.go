package discovery

import (
	"fmt"
	"strings"

	"github.com/sells-group/citation-audit/internal/model"
)

// serviceLocalization maps a (service keyword, country keyword) pair to
// the term locals actually search for. A US "mover" is an Australian
// "Removalist"; asking the research model for the US term returns US
// directories.
var serviceLocalization = []struct {
	service   string
	country   string
	localized string
}{
	{"mover", "australia", "Removalist"},
	{"moving", "australia", "Removalists"},
	{"mover", "united kingdom", "Removals"},
	{"moving", "united kingdom", "Removals"},
	{"mover", "uk", "Removals"},
	{"moving", "uk", "Removals"},
	{"mover", "new zealand", "Removalist"},
	{"moving", "new zealand", "Removalists"},
	{"mover", "ireland", "Removals"},
	{"moving", "ireland", "Removals"},
	{"mover", "india", "Packers and Movers"},
	{"moving", "india", "Packers and Movers"},

	{"lawyer", "australia", "Solicitor"},
	{"attorney", "australia", "Solicitor"},
	{"law firm", "australia", "Solicitors"},
	{"lawyer", "uk", "Solicitor"},
	{"attorney", "uk", "Solicitor"},
	{"law firm", "uk", "Solicitors"},
	{"lawyer", "new zealand", "Barrister and Solicitor"},
	{"attorney", "new zealand", "Barrister and Solicitor"},
	{"lawyer", "ireland", "Solicitor"},
	{"attorney", "ireland", "Solicitor"},
	{"lawyer", "india", "Advocate"},
	{"attorney", "india", "Advocate"},

	{"real estate", "uk", "Estate Agents"},
	{"realtor", "uk", "Estate Agents"},
	{"real estate", "ireland", "Estate Agents"},
	{"realtor", "ireland", "Auctioneers"},
	{"real estate", "australia", "Real Estate Agents"},
	{"realtor", "australia", "Real Estate Agents"},
	{"real estate", "india", "Property Dealers"},

	{"hvac", "australia", "Air Conditioning"},
	{"hvac", "uk", "Air Conditioning"},
	{"hvac", "united kingdom", "Air Conditioning"},
	{"hvac", "new zealand", "Heat Pumps"},
	{"auto repair", "australia", "Mechanic"},
	{"auto repair", "uk", "Garage"},
	{"mechanic", "uk", "Garage"},

	{"drug store", "australia", "Chemist"},
	{"drug store", "uk", "Chemist"},
	{"pharmacy", "australia", "Chemist"},
	{"pharmacy", "uk", "Chemist"},
	{"drug store", "new zealand", "Chemist"},
	{"gym", "uk", "Fitness Centre"},
	{"gym", "australia", "Fitness Centre"},

	{"bar", "uk", "Pub"},
	{"bar", "australia", "Pub"},
	{"bar", "ireland", "Pub"},
	{"liquor store", "australia", "Bottle Shop"},
	{"liquor store", "uk", "Off Licence"},
	{"liquor store", "ireland", "Off Licence"},
	{"liquor store", "new zealand", "Bottle Store"},
}

// LocalizeService returns the country-local term for a service type,
// or the input unchanged when no mapping applies.
func LocalizeService(serviceType, country string) string {
	s := strings.ToLower(serviceType)
	c := strings.ToLower(country)
	for _, entry := range serviceLocalization {
		if strings.Contains(s, entry.service) && strings.Contains(c, entry.country) {
			return entry.localized
		}
	}
	return serviceType
}

const systemPrompt = "You are a strategic SEO auditor. You find gaps and opportunities."

// buildPrompt renders the three-bucket research prompt: industry
// directories, local/regional directories, general directories.
func buildPrompt(business model.BusinessProfile) string {
	localized := LocalizeService(business.Category, business.Country)
	country := business.Country
	if country == "" {
		country = "United States"
	}

	return fmt.Sprintf(`You are conducting a comprehensive Citation Audit for local SEO.

TARGET BUSINESS:
- Name: %q
- Location: %s, %s, %s
- Category/Industry: %s (Local Term: %s)

YOUR TASK: Find ALL citation directories where this business IS listed or SHOULD BE listed.

USE THIS DISCOVERY METHOD (search the web for each):

**PRIORITY 1 - INDUSTRY SPECIFIC DIRECTORIES (%s)** [15+ directories]
Search: "Best directories for %s businesses"
Search: "Where are %s listed online in %s?"
Search: "%s %s association directory"
Find: National %s associations and industry-specific review and listing sites

**PRIORITY 2 - LOCAL & REGIONAL DIRECTORIES (%s, %s)** [10+ directories]
Search: "Business directories in %s %s"
Search: "%s %s association directory"
Find: %s Chamber of Commerce, %s Chamber of Commerce, regional business alliances

**PRIORITY 3 - GENERAL BUSINESS DIRECTORIES** [15+ directories]
Search: "Top local business directories %s"
Find: Yelp, YellowPages, BBB, SuperPages, Manta, Hotfrog, Angi, Thumbtack
Find: Map platforms: Apple Maps, Bing Places, Foursquare, MapQuest

FOCUS ON:
- Directories in %s ONLY.
- Directories that allow FREE business profile creation with NAP (Name, Address, Phone)
- Directories where similar %s businesses in %s/%s are actually listed

STRICT EXCLUSIONS (NEVER include):
- Facebook / Meta / Instagram / LinkedIn
- Google Business Profile / Google Maps (handled separately)
- CareDash
- B2B/Agency directories (Clutch, Sortlist, GoodFirms, UpCity)
- Wrong country domains (e.g., .au, .uk for US businesses)
- SEO tools (Yext, BrightLocal, Moz, Whitespark)
- Paid-only directories

OUTPUT REQUIREMENTS:
- Provide at least 40 high-quality directories
- Tag each with category: "specialty", "local", or "general"
- URL must be homepage domain only (e.g., https://yelp.com)

Return JSON with key "directories" containing list of objects:
{"name": "Directory Name", "url": "https://domain.com", "category": "specialty|local|general"}`,
		business.Name,
		business.City, business.Region, country,
		business.Category, localized,
		localized,
		localized,
		localized, country,
		country, localized,
		localized,
		business.City, business.Region,
		business.City, business.Region,
		business.Region, localized,
		business.City, business.Region,
		country,
		country,
		business.Category, business.City, business.Region,
	)
}
