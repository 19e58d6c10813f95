package models

// DownloadResult is the payload of a successful single cause-list download.
type DownloadResult struct {
	Message    string `json:"message"`
	Filename   string `json:"filename"`
	CasesFound int    `json:"cases_found"`
}

// BulkDownloadResult is the payload of a successful "download all" request.
type BulkDownloadResult struct {
	Message    string   `json:"message"`
	TotalCases int      `json:"total_cases"`
	Files      []string `json:"files"`
}

// DayResult reports whether a case appears in the cause list of one day.
// Only Found is guaranteed to be present.
type DayResult struct {
	Found        bool   `json:"found"`
	Date         string `json:"date,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
	CaseNumber   string `json:"case_number,omitempty"`
	Error        string `json:"error,omitempty"`
}

// LookupResult holds the lookup outcome for today and tomorrow. A nil day is
// treated the same as a day where the case was not found.
type LookupResult struct {
	Today    *DayResult `json:"today"`
	Tomorrow *DayResult `json:"tomorrow"`
}

// Listed reports whether the day result represents a found case.
func (d *DayResult) Listed() bool {
	return d != nil && d.Found
}
