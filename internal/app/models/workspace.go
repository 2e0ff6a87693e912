package models

import "time"

// KeyMode describes how the answer key of an exam is acquired
type KeyMode string

// KeyMode constants
const (
	KeyModeScan   KeyMode = "scan"
	KeyModeManual KeyMode = "manual"
)

// IsValid reports whether the key mode is one of the known variants
func (m KeyMode) IsValid() bool {
	return m == KeyModeScan || m == KeyModeManual
}

// Workspace is an exam folder: one exam administration holding captured
// answer sheets and their scan results. Persisted as metadata.json.
type Workspace struct {
	ID         string    `json:"id"`
	SchoolYear string    `json:"schoolYear"`
	Section    string    `json:"section"`
	Subject    string    `json:"subject"`
	KeyMode    KeyMode   `json:"keyMode"`
	CreatedAt  time.Time `json:"createdAt"`
}

// WorkspaceSummary holds the counters shown above a workspace's results
type WorkspaceSummary struct {
	Images  int `json:"images"`
	Results int `json:"results"`
	Pending int `json:"pending"`
	High    int `json:"high"`
	Low     int `json:"low"`
}
