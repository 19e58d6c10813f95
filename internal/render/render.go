// Package render draws the controller view as HTML for the web host and as
// plain text for the CLI. Server-supplied strings are stripped of markup
// before they reach either output.
package render

import (
	"embed"
	"fmt"
	"html"
	"html/template"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/courtdesk/causelist/internal/client"
	"github.com/courtdesk/causelist/internal/controller"
	"github.com/courtdesk/causelist/internal/models"
	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy

	templates = template.Must(template.New("").Funcs(template.FuncMap{
		"clean":   clean,
		"fileURL": FileURL,
		"day":     newDayView,
		"field":   newSelectView,
	}).ParseFS(templateFS, "templates/*.gohtml"))
)

func sanitizer() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// clean strips tags from s. The strict policy already escapes what remains,
// so the result is marked safe to avoid escaping it twice.
func clean(s string) template.HTML {
	return template.HTML(sanitizer().Sanitize(s))
}

// plain is clean for text output.
func plain(s string) string {
	return strings.TrimSpace(html.UnescapeString(sanitizer().Sanitize(s)))
}

// FileURL is the download link of a generated file.
func FileURL(filename string) string {
	return client.PathDownloadFile + url.PathEscape(filename)
}

type dayView struct {
	Label  string
	Listed bool
	Day    *models.DayResult
}

func newDayView(label string, d *models.DayResult) dayView {
	v := dayView{Label: label, Listed: d.Listed(), Day: d}
	if d == nil {
		v.Day = &models.DayResult{}
	}
	return v
}

type selectView struct {
	Action string
	ID     string
	Label  string
	Select controller.Select
}

func newSelectView(action, id, label string, s controller.Select) selectView {
	return selectView{Action: action, ID: id, Label: label, Select: s}
}

// Page writes the full HTML page for v.
func Page(w io.Writer, v controller.View) error {
	return templates.ExecuteTemplate(w, "page", v)
}

// Panel writes the HTML fragment of a result panel. An empty panel writes
// nothing visible.
func Panel(w io.Writer, p controller.Panel) error {
	return templates.ExecuteTemplate(w, "panel", p)
}

// Text writes a result panel as plain text.
func Text(w io.Writer, p controller.Panel) error {
	var b strings.Builder
	switch {
	case p.Banner != nil:
		fmt.Fprintf(&b, "[%s] %s\n", strings.ToUpper(string(p.Banner.Kind)), plain(p.Banner.Message))
	case p.Download != nil:
		fmt.Fprintf(&b, "Success! %s\n", plain(p.Download.Message))
		fmt.Fprintf(&b, "File: %s\n", plain(p.Download.Filename))
		fmt.Fprintf(&b, "Cases Found: %d\n", p.Download.CasesFound)
	case p.Bulk != nil:
		fmt.Fprintf(&b, "Success! %s\n", plain(p.Bulk.Message))
		fmt.Fprintf(&b, "Total Cases: %d\n", p.Bulk.TotalCases)
		b.WriteString("PDF Files:\n")
		for _, f := range p.Bulk.Files {
			fmt.Fprintf(&b, "  - %s\n", plain(f))
		}
	case p.Lookup != nil:
		writeDayText(&b, "Today", p.Lookup.Today)
		writeDayText(&b, "Tomorrow", p.Lookup.Tomorrow)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeDayText(b *strings.Builder, label string, d *models.DayResult) {
	if !d.Listed() {
		fmt.Fprintf(b, "Not Listed %s\n", label)
		return
	}
	fmt.Fprintf(b, "Listed %s\n", label)
	fmt.Fprintf(b, "  Date: %s\n", plain(d.Date))
	fmt.Fprintf(b, "  Serial Number: %s\n", plain(d.SerialNumber))
	fmt.Fprintf(b, "  Case Number: %s\n", plain(d.CaseNumber))
}
