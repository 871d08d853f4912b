package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/ppiankov/factgraph/internal/model"
)

// Renderer writes pass reports
type Renderer struct {
	out io.Writer
}

// NewRenderer creates a renderer that prints summaries to out
func NewRenderer(out io.Writer) *Renderer {
	if out == nil {
		out = os.Stderr
	}
	return &Renderer{out: out}
}

// RenderJSON writes the report as indented JSON, creating parent directories
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}

	return os.WriteFile(path, append(data, '\n'), 0644)
}

// RenderSummary prints a human-readable summary of the pass. Verbose adds
// every diagnostic message.
func (r *Renderer) RenderSummary(report *model.Report, verbose bool) {
	w := r.out

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  Pass %s\n", report.PassID)
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Output:        %s (%s)\n", report.OutputRoot, report.Backend)
	fmt.Fprintf(w, "  Duration:      %s\n", report.Duration.Round(1e6))

	if g := report.Generation; g != nil {
		fmt.Fprintf(w, "  Generation:    %s/%s, %d chunks (%d cached, %d failed)\n",
			g.Provider, g.Model, g.Chunks, g.CacheHits, len(g.FailedChunks))
	}

	f := report.Facts
	fmt.Fprintf(w, "  Facts:         %d binary (%d hierarchical, %d associative), %d unary\n",
		f.Binary, f.Hierarchical, f.Associative, f.Unary)

	s := report.Write
	fmt.Fprintf(w, "  Containers:    %d created\n", s.ContainersCreated)
	fmt.Fprintf(w, "  Notes:         %d created\n", s.NotesCreated)
	fmt.Fprintf(w, "  Links:         %d appended, %d already present, %d absorbed\n",
		s.LinesAppended, s.LinesSkipped, s.FactsAbsorbed)

	if len(report.Diagnostics) > 0 {
		counts := make(map[model.DiagnosticKind]int)
		for _, d := range report.Diagnostics {
			counts[d.Kind]++
		}
		kinds := make([]string, 0, len(counts))
		for k := range counts {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)

		fmt.Fprintf(w, "\n  Diagnostics:\n")
		for _, k := range kinds {
			fmt.Fprintf(w, "    %-24s %d\n", k, counts[model.DiagnosticKind(k)])
		}
		if verbose {
			fmt.Fprintf(w, "\n")
			for _, d := range report.Diagnostics {
				fmt.Fprintf(w, "    [%s] %s\n", d.Kind, d.Message)
			}
		}
	}

	if report.Generation != nil && verbose {
		for _, warning := range report.Generation.Warnings {
			fmt.Fprintf(w, "  ⚠ %s\n", warning)
		}
	}

	fmt.Fprintf(w, "\n")
}
