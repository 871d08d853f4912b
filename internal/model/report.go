package model

import "time"

// Report describes one materialization pass
type Report struct {
	PassID     string        `json:"pass_id"`
	OutputRoot string        `json:"output_root"`
	Backend    string        `json:"backend"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration_ns"`

	Facts FactCounts `json:"facts"`
	Write WriteStats `json:"writes"`

	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
	Generation  *Generation  `json:"generation,omitempty"` // Present when facts were generated from text
}

// FactCounts summarizes what was extracted and how it was classified
type FactCounts struct {
	Binary       int `json:"binary"`
	Unary        int `json:"unary"`
	Hierarchical int `json:"hierarchical"`
	Associative  int `json:"associative"`
}

// WriteStats counts mutations performed against the node store
type WriteStats struct {
	ContainersCreated int `json:"containers_created"`
	NotesCreated      int `json:"notes_created"`
	LinesAppended     int `json:"lines_appended"`
	LinesSkipped      int `json:"lines_skipped"` // Already present
	FactsAbsorbed     int `json:"facts_absorbed"`
}

// Generation summarizes the text-to-facts stage
type Generation struct {
	Provider     string   `json:"provider"`
	Model        string   `json:"model"`
	Chunks       int      `json:"chunks"`
	CacheHits    int      `json:"cache_hits"`
	FailedChunks []int    `json:"failed_chunks,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

// CountDiagnostics returns how many diagnostics of kind are present
func (r *Report) CountDiagnostics(kind DiagnosticKind) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			n++
		}
	}
	return n
}
