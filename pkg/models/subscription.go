package models

// Subscription holds one connection's filter preferences. A connection has
// at most one; replacing overwrites. If AllEvents is set the other fields
// are ignored for filtering.
type Subscription struct {
	Subjects   []string `json:"subjects"`
	Industries []string `json:"industries"`
	Symbols    []string `json:"symbols"`
	AllEvents  bool     `json:"all_events"`
}
