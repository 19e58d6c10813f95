package models

// Envelope is the wrapper shared by every JSON response of the API.
// Payload fields are decoded separately from the same body.
type Envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type StatesResponse struct {
	Envelope
	States []Option `json:"states"`
}

type DistrictsResponse struct {
	Envelope
	Districts []Option `json:"districts"`
}

type ComplexesResponse struct {
	Envelope
	Complexes []Option `json:"complexes"`
}

type CourtsResponse struct {
	Envelope
	Courts []Option `json:"courts"`
}

type DownloadResponse struct {
	Envelope
	DownloadResult
}

type BulkDownloadResponse struct {
	Envelope
	BulkDownloadResult
}

type LookupResponse struct {
	Envelope
	Results *LookupResult `json:"results,omitempty"`
}

// Failure returns the server message and true when the response reports
// success=false.
func (e Envelope) Failure() (string, bool) {
	if e.Success {
		return "", false
	}
	if e.Error == "" {
		return "unknown error", true
	}
	return e.Error, true
}
