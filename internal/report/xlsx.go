package report

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/citation-audit/internal/model"
)

var citationHeaders = []string{
	"Directory", "Domain", "Category", "State", "Profile URL", "Match",
	"Confidence", "Name", "Address", "Phone", "Website", "Submit URL", "Details",
}

// WriteXLSX writes the audit workbook: a Citations sheet with one row per
// directory and a Summary sheet with the aggregate counts.
func WriteXLSX(path string, records []model.CitationRecord, summary model.AuditSummary) error {
	f := xlsx.NewFile()

	citations, err := f.AddSheet("Citations")
	if err != nil {
		return eris.Wrap(err, "report: add citations sheet")
	}

	header := citations.AddRow()
	for _, h := range citationHeaders {
		header.AddCell().Value = h
	}

	for _, rec := range records {
		row := citations.AddRow()
		row.AddCell().Value = rec.Directory.Name
		row.AddCell().Value = rec.Directory.Domain()
		row.AddCell().Value = string(rec.Directory.Category)
		row.AddCell().Value = string(rec.State)

		profileURL, match := "", ""
		if rec.Profile != nil {
			profileURL = rec.Profile.URL
			match = string(rec.Profile.Match)
		}
		row.AddCell().Value = profileURL
		row.AddCell().Value = match

		if rec.Verification != nil {
			row.AddCell().SetInt(rec.Verification.Confidence)
			row.AddCell().Value = flag(rec.Verification.NameOK)
			row.AddCell().Value = flag(rec.Verification.AddressOK)
			row.AddCell().Value = flag(rec.Verification.PhoneOK)
			row.AddCell().Value = flag(rec.Verification.WebsiteOK)
		} else {
			for i := 0; i < 5; i++ {
				row.AddCell()
			}
		}

		row.AddCell().Value = rec.SubmitURL
		details := rec.Details
		if rec.Verification != nil && rec.Verification.Details != "" {
			details = rec.Verification.Details
		}
		row.AddCell().Value = details
	}

	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}
	addCount := func(label string, n int) {
		row := sheet.AddRow()
		row.AddCell().Value = label
		row.AddCell().SetInt(n)
	}
	row := sheet.AddRow()
	row.AddCell().Value = "Business"
	row.AddCell().Value = summary.Business
	addCount("Discovered", summary.Discovered)
	addCount("Validated", summary.Validated)
	addCount("Found", summary.Found)
	addCount("Not found", summary.NotFound)
	addCount("Not searchable", summary.NotSearchable)
	addCount("Verified", summary.Verified)
	addCount("Blocked", summary.Blocked)
	addCount("Errors", summary.Errors)

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save %s", path)
	}
	return nil
}
