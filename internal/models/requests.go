package models

import "strings"

// DateLayout is the DD/MM/YYYY layout the backend expects for cause-list dates.
const DateLayout = "02/01/2006"

// LocationRequest carries the cascade selections used by the option listing endpoints.
type LocationRequest struct {
	StateCode    string `json:"state_code"`
	DistrictCode string `json:"district_code,omitempty"`
	ComplexCode  string `json:"complex_code,omitempty"`
}

// CauseListRequest asks the backend to generate cause lists. CourtCode is
// required for a single download and left empty for a bulk download.
type CauseListRequest struct {
	StateCode    string `json:"state_code"`
	DistrictCode string `json:"district_code"`
	ComplexCode  string `json:"complex_code"`
	CourtCode    string `json:"court_code,omitempty"`
	Date         string `json:"date"`
}

// LookupRequest identifies a case either by CNR or by the
// (CaseType, CaseNumber, CaseYear) triple.
type LookupRequest struct {
	StateCode    string `json:"state_code"`
	DistrictCode string `json:"district_code"`
	CNR          string `json:"cnr"`
	CaseType     string `json:"case_type"`
	CaseNumber   string `json:"case_number"`
	CaseYear     string `json:"case_year"`
}

// HasIdentifier reports whether the request names a case, either by CNR or
// by a complete type/number/year triple.
func (r LookupRequest) HasIdentifier() bool {
	if strings.TrimSpace(r.CNR) != "" {
		return true
	}
	return strings.TrimSpace(r.CaseType) != "" &&
		strings.TrimSpace(r.CaseNumber) != "" &&
		strings.TrimSpace(r.CaseYear) != ""
}

// CasePattern returns the "type/number/year" string cause-list rows are
// matched against. It is empty unless the triple is complete.
func (r LookupRequest) CasePattern() string {
	if r.CaseType == "" || r.CaseNumber == "" || r.CaseYear == "" {
		return ""
	}
	return r.CaseType + "/" + r.CaseNumber + "/" + r.CaseYear
}
