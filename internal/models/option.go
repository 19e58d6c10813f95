package models

// Option is a selectable entry in one of the cascading lists (state,
// district, court complex or court).
type Option struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}
