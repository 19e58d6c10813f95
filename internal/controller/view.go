package controller

import (
	"fmt"

	"github.com/courtdesk/causelist/internal/models"
)

// Level is a position in the main cascade.
type Level int

const (
	LevelState Level = iota
	LevelDistrict
	LevelComplex
	LevelCourt
)

var levelNames = [...]string{"state", "district", "complex", "court"}

// noun used in "Error loading <thing>" banners for the fetch that populates
// the level.
var levelThings = [...]string{"states", "districts", "court complexes", "courts"}

var levelPlaceholders = [...]string{"Select State", "Select District", "Select Court Complex", "Select Court (Optional)"}

func (l Level) String() string {
	if l < LevelState || l > LevelCourt {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel maps "state", "district", "complex" or "court" to a Level.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if name == s {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("unknown level %q", s)
}

// Select is one drop-down: its options in server order, the chosen value and
// whether it accepts input.
type Select struct {
	Placeholder string
	Options     []models.Option
	Value       string
	Enabled     bool
}

func newSelect(placeholder string, enabled bool) Select {
	return Select{Placeholder: placeholder, Enabled: enabled}
}

func (s Select) clone() Select {
	s.Options = append([]models.Option(nil), s.Options...)
	return s
}

// SelectedText returns the label of the chosen option, or "" when nothing is
// selected.
func (s Select) SelectedText() string {
	for _, o := range s.Options {
		if o.Value == s.Value {
			return o.Text
		}
	}
	return ""
}

// BannerKind is the alert style of a banner.
type BannerKind string

const (
	BannerSuccess BannerKind = "success"
	BannerDanger  BannerKind = "danger"
	BannerWarning BannerKind = "warning"
)

// Banner is a dismissible alert holding plain text.
type Banner struct {
	Kind    BannerKind
	Message string
}

// Panel is the result area of a form. At most one field is set; a zero Panel
// is empty.
type Panel struct {
	Banner   *Banner
	Download *models.DownloadResult
	Bulk     *models.BulkDownloadResult
	Lookup   *models.LookupResult
}

func (p Panel) Empty() bool {
	return p.Banner == nil && p.Download == nil && p.Bulk == nil && p.Lookup == nil
}

func (p Panel) clone() Panel {
	if p.Banner != nil {
		b := *p.Banner
		p.Banner = &b
	}
	if p.Download != nil {
		d := *p.Download
		p.Download = &d
	}
	if p.Bulk != nil {
		b := *p.Bulk
		b.Files = append([]string(nil), b.Files...)
		p.Bulk = &b
	}
	if p.Lookup != nil {
		l := models.LookupResult{}
		if p.Lookup.Today != nil {
			d := *p.Lookup.Today
			l.Today = &d
		}
		if p.Lookup.Tomorrow != nil {
			d := *p.Lookup.Tomorrow
			l.Tomorrow = &d
		}
		p.Lookup = &l
	}
	return p
}

func bannerPanel(kind BannerKind, msg string) Panel {
	return Panel{Banner: &Banner{Kind: kind, Message: msg}}
}

// MainForm is the cascading cause-list download form.
type MainForm struct {
	Selects [4]Select
	// Date is the ISO (YYYY-MM-DD) value of the date input.
	Date               string
	DownloadEnabled    bool
	DownloadAllEnabled bool
	Loading            bool
	Result             Panel
}

// Select returns the drop-down at level.
func (f MainForm) Select(level Level) Select {
	return f.Selects[level]
}

// LookupForm is the case lookup form.
type LookupForm struct {
	State      Select
	District   Select
	CNR        string
	CaseType   string
	CaseNumber string
	CaseYear   string
	Loading    bool
	Result     Panel
}

// View is everything a host needs to draw both forms.
type View struct {
	Main   MainForm
	Lookup LookupForm
}

func newView(date string) View {
	v := View{
		Main: MainForm{Date: date},
		Lookup: LookupForm{
			State:    newSelect(levelPlaceholders[LevelState], true),
			District: newSelect(levelPlaceholders[LevelDistrict], false),
		},
	}
	for l := LevelState; l <= LevelCourt; l++ {
		v.Main.Selects[l] = newSelect(levelPlaceholders[l], l == LevelState)
	}
	return v
}

func (v View) clone() View {
	for i := range v.Main.Selects {
		v.Main.Selects[i] = v.Main.Selects[i].clone()
	}
	v.Main.Result = v.Main.Result.clone()
	v.Lookup.State = v.Lookup.State.clone()
	v.Lookup.District = v.Lookup.District.clone()
	v.Lookup.Result = v.Lookup.Result.clone()
	return v
}
