package testutil

import (
	"fmt"
	"html"
	"strings"

	"github.com/courtdesk/causelist/internal/models"
)

// GenerateSelectPage renders a minimal court-site page holding one <select>
// with a "Select ..." placeholder followed by opts.
func GenerateSelectPage(id string, opts []models.Option) string {
	var b strings.Builder
	b.WriteString("<html><body><form>")
	fmt.Fprintf(&b, `<select id="%s" name="%s">`, id, id)
	b.WriteString(`<option value="0">Select</option>`)
	for _, o := range opts {
		fmt.Fprintf(&b, `<option value="%s">%s</option>`, html.EscapeString(o.Value), html.EscapeString(o.Text))
	}
	b.WriteString("</select></form></body></html>")
	return b.String()
}

// GenerateCauseListPage renders a cause-list page with a header row and one
// row per case.
func GenerateCauseListPage(courtName string, cases []models.CaseEntry) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	fmt.Fprintf(&b, "<h3>%s</h3>", html.EscapeString(courtName))
	b.WriteString("<table><thead><tr><th>Sr No</th><th>Case</th><th>Party Name</th><th>Purpose</th></tr></thead><tbody>")
	b.WriteString(`<tr><td colspan="4">Civil Cases</td></tr>`)
	for _, c := range cases {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>\n  %s\n</td><td>%s</td><td>%s</td></tr>",
			html.EscapeString(c.SrNo), html.EscapeString(c.CaseNo),
			html.EscapeString(c.PartyName), html.EscapeString(c.Purpose))
	}
	b.WriteString("</tbody></table></body></html>")
	return b.String()
}

// SampleCases returns a small cause list used across tests.
func SampleCases() []models.CaseEntry {
	return []models.CaseEntry{
		{SrNo: "1", CaseNo: "CS/123/2024", PartyName: "Ram Kumar vs State", Purpose: "Arguments"},
		{SrNo: "2", CaseNo: "CR/456/2024", PartyName: "Rajesh Singh vs Mohan Lal", Purpose: "Evidence"},
		{SrNo: "3", CaseNo: "FIR/789/2024 KAHC010012342024", PartyName: "State vs Suresh Kumar", Purpose: "Bail Hearing"},
	}
}
