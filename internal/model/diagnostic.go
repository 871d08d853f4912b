package model

// DiagnosticKind classifies a recoverable condition met during a pass
type DiagnosticKind string

const (
	DiagParseSkipped        DiagnosticKind = "parse_skipped"         // Fragment did not match the clause grammar
	DiagSelfReferential     DiagnosticKind = "self_referential_fact" // Hierarchical fact with subject == object
	DiagCycleBroken         DiagnosticKind = "cycle_broken"          // Hierarchical edge that would close a cycle
	DiagUnresolvedPlacement DiagnosticKind = "unresolved_placement"  // Associative subject never placed by hierarchy
)

// Diagnostic records a recovered condition. Diagnostics never interrupt a
// pass; they are logged and carried into the report.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Message string         `json:"message"`
	Offset  int            `json:"offset,omitempty"` // Byte offset in the raw text (parse diagnostics only)
}
