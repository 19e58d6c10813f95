package models

// CourtRef addresses a single court within the cascade.
type CourtRef struct {
	StateCode    string
	DistrictCode string
	ComplexCode  string
	CourtCode    string
	CourtName    string
}

// CaseEntry is one row of a published cause list.
type CaseEntry struct {
	SrNo      string `json:"sr_no"`
	CaseNo    string `json:"case_no"`
	PartyName string `json:"party_name"`
	Purpose   string `json:"purpose"`
}

// CauseList is a court's docket for a single date.
type CauseList struct {
	Date      string      `json:"date"`
	CourtCode string      `json:"court_code"`
	CourtName string      `json:"court_name"`
	Cases     []CaseEntry `json:"cases"`
}

// DisplayName returns the court name, falling back to the court code.
func (c CauseList) DisplayName() string {
	if c.CourtName != "" {
		return c.CourtName
	}
	if c.CourtCode != "" {
		return c.CourtCode
	}
	return "N/A"
}
