package registry

// Directory name keywords mapped to the domain the directory actually
// lives on. Applied when the research step returns a plausible name
// with a wrong or recycled URL.
var defaultCorrections = map[string]string{
	"american dental association":            "ada.org",
	"ada find-a-dentist":                     "ada.org",
	"academy of general dentistry":           "agd.org",
	"american academy of cosmetic dentistry": "aacd.com",
	"american academy of implant dentistry":  "aaid.com",
	"better business bureau":                 "bbb.org",
}

// Directories whose profiles never appear in site-scoped web search
// results. These resolve straight to NOT_SEARCHABLE.
var defaultNotSearchable = []string{
	"google.com",
	"business.google.com",
	"google.com/maps",
	"facebook.com",
	"caredash.com",
}

// On-site search URL templates, used as a last resort when web search
// fails to surface a profile. {query} and {location} are substituted
// URL-escaped.
var defaultSearchURLs = map[string]string{
	"yelp.com":             "https://www.yelp.com/search?find_desc={query}&find_loc={location}",
	"yelp.com.au":          "https://www.yelp.com.au/search?find_desc={query}&find_loc={location}",
	"yellowpages.com":      "https://www.yellowpages.com/search?search_terms={query}&geo_location_terms={location}",
	"yellowpages.com.au":   "https://www.yellowpages.com.au/search/listings?clue={query}&locationClue={location}",
	"truelocal.com.au":     "https://www.truelocal.com.au/search/{query}/{location}",
	"hotfrog.com.au":       "https://www.hotfrog.com.au/search/{location}/{query}",
	"localsearch.com.au":   "https://www.localsearch.com.au/find/{query}/{location}",
	"startlocal.com.au":    "https://www.startlocal.com.au/search/?q={query}&loc={location}",
	"cylex-australia.com":  "https://www.cylex-australia.com/search/{query}.html",
	"cylex.com.au":         "https://www.cylex.com.au/search/{query}.html",
	"productreview.com.au": "https://www.productreview.com.au/search?q={query}",
	"hipages.com.au":       "https://hipages.com.au/find/{query}",
}

// Submission / claim URLs surfaced alongside NOT_FOUND results so the
// listing can be created or claimed.
var defaultSubmitURLs = map[string]string{
	// General business directories
	"yelp.com":              "https://biz.yelp.com/claim",
	"yellowpages.com":       "https://adsolutions.yp.com/free-listing",
	"bbb.org":               "https://www.bbb.org/get-accredited",
	"manta.com":             "https://www.manta.com/claim",
	"mapquest.com":          "https://www.mapquest.com/my-business",
	"superpages.com":        "https://www.superpages.com/claim",
	"citysearch.com":        "https://www.citysearch.com/claim",
	"foursquare.com":        "https://business.foursquare.com/",
	"hotfrog.com":           "https://www.hotfrog.com/add-your-business",
	"brownbook.net":         "https://www.brownbook.net/business/add/",
	"chamberofcommerce.com": "https://www.chamberofcommerce.com/add-your-business",
	"merchantcircle.com":    "https://www.merchantcircle.com/signup",
	"judysbook.com":         "https://www.judysbook.com/claim",
	"showmelocal.com":       "https://www.showmelocal.com/Businesses/Add",
	"dexknows.com":          "https://www.dexknows.com/claim",
	"ezlocal.com":           "https://www.ezlocal.com/claim",
	"cylex.us":              "https://www.cylex.us/add-company/",
	"tupalo.com":            "https://www.tupalo.com/add-your-business",
	"localdatabase.com":     "https://www.localdatabase.com/add-business",
	"yellowbot.com":         "https://www.yellowbot.com/claim",

	// Healthcare
	"healthgrades.com":   "https://update.healthgrades.com/",
	"vitals.com":         "https://www.vitals.com/doctors/claim",
	"zocdoc.com":         "https://www.zocdoc.com/join",
	"webmd.com":          "https://doctor.webmd.com/providers/claim",
	"ratemds.com":        "https://www.ratemds.com/doctors/claim/",
	"doctoroogle.com":    "https://www.doctoroogle.com/claim",
	"wellness.com":       "https://www.wellness.com/provider/claim",
	"sharecare.com":      "https://www.sharecare.com/doctor/claim",
	"caredash.com":       "https://www.caredash.com/doctors/claim",
	"docspot.com":        "https://www.docspot.com/claim",
	"healthline.com":     "https://www.healthline.com/health/find-doctor-claim",
	"doctoralia.com":     "https://pro.doctoralia.com/",
	"doximity.com":       "https://www.doximity.com/register",
	"castleconnolly.com": "https://www.castleconnolly.com/register",
	"usnews.com":         "https://health.usnews.com/doctors/claim",
	"realself.com":       "https://www.realself.com/doctors/join",
	"plasticsurgery.org": "https://find.plasticsurgery.org/update",
	"asps.org":           "https://find.plasticsurgery.org/update",

	// Dental
	"dentistry.com":        "https://www.dentistry.com/claim",
	"dentalplans.com":      "https://www.dentalplans.com/claim",
	"1800dentist.com":      "https://www.1800dentist.com/dentist/register",
	"everydayhealth.com":   "https://www.everydayhealth.com/claim",
	"findadentist.ada.org": "https://www.ada.org/member-center/update-profile",
	"dentist.com":          "https://www.dentist.com/claim",
	"askthedentist.com":    "https://askthedentist.com/claim",

	// Insurance / Medicare
	"medicare.gov":         "https://www.medicare.gov/manage-your-health/information-for-providers",
	"healthinsurance.org":  "https://www.healthinsurance.org/claim",
	"ehealthinsurance.com": "https://www.ehealthinsurance.com/partner",

	// Mental health
	"psychologytoday.com": "https://www.psychologytoday.com/us/therapists/signup",
	"goodtherapy.org":     "https://www.goodtherapy.org/therapist-signup/",
	"therapytribe.com":    "https://www.therapytribe.com/add-listing/",
	"betterhelp.com":      "https://www.betterhelp.com/counselor-signup/",
	"talkspace.com":       "https://www.talkspace.com/providers",
	"zencare.co":          "https://zencare.co/join",
	"theravive.com":       "https://www.theravive.com/therapist-login",

	// Chiropractic / physical therapy
	"chirodirectory.com": "https://www.chirodirectory.com/add-listing/",
	"chirobase.org":      "https://www.chirobase.org/add",
	"spine-health.com":   "https://www.spine-health.com/directory/claim",

	// Eye care
	"allaboutvision.com": "https://www.allaboutvision.com/claim",
	"aao.org":            "https://www.aao.org/find-ophthalmologist/update",

	// Senior / home health
	"caring.com":        "https://www.caring.com/partners/provider-sign-up",
	"senioradvisor.com": "https://www.senioradvisor.com/claim",
	"aplaceformom.com":  "https://www.aplaceformom.com/partners",

	// Maps
	"google.com": "https://business.google.com/",
	"bing.com":   "https://www.bingplaces.com/",
	"apple.com":  "https://mapsconnect.apple.com/",
	"here.com":   "https://www.here.com/business",
	"waze.com":   "https://biz.waze.com/",

	// Social
	"facebook.com":  "https://www.facebook.com/pages/create/",
	"nextdoor.com":  "https://business.nextdoor.com/",
	"alignable.com": "https://www.alignable.com/signup",
}
