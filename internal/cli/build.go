package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/ppiankov/factgraph/internal/logger"
	"github.com/ppiankov/factgraph/internal/model"
	"github.com/ppiankov/factgraph/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	outJSON      string
	buildTimeout time.Duration
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build <facts-file>",
	Short: "Materialize a facts file into the note graph",
	Long: `Build reads Prolog-style facts and writes them into the output root:
- Hierarchical relations become nested containers with waypoint notes
- Other binary relations become typed cross-links
- Unary facts become leaf notes grouped by predicate

Use "-" to read facts from stdin. Malformed fragments are skipped and
reported; running the same facts again changes nothing.

Example:
  factgraph build facts.pl --out ./vault
  factgraph build facts.pl --parent "has part, contains" --child "part of"
  cat facts.pl | factgraph build - --backend neo4j`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd.Flags(), buildFlagKeys)
	},
	RunE: runBuild,
}

// buildFlagKeys maps build flags to config keys
var buildFlagKeys = map[string]string{
	"out":     "output.dir",
	"backend": "store.backend",
	"parent":  "relations.parent",
	"child":   "relations.child",
}

func init() {
	rootCmd.AddCommand(buildCmd)
	addGraphFlags(buildCmd)
	buildCmd.Flags().DurationVar(&buildTimeout, "timeout", 5*time.Minute, "overall build timeout")
}

// addGraphFlags registers the flags shared by every command that writes the graph
func addGraphFlags(cmd *cobra.Command) {
	defaults := model.DefaultConfig()
	cmd.Flags().String("out", defaults.Output.Dir, "output root for the note graph")
	cmd.Flags().String("backend", defaults.Store.Backend, "node store backend (fs, memory, neo4j)")
	cmd.Flags().String("parent", defaults.Relations.Parent, "comma-separated hierarchical relations")
	cmd.Flags().String("child", defaults.Relations.Child, "comma-separated inverse relations")
	cmd.Flags().StringVar(&outJSON, "json", "", "write the pass report as JSON to this path")
}

// bindFlags binds the running command's flags so they override config.
// Binding happens per invocation because commands share config keys.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) error {
	for flag, key := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("bind --%s: %w", flag, err)
		}
	}
	return nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	raw, err := readInput(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(buildTimeout)
	defer cancel()

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Building: %s\n", args[0])
		fmt.Fprintf(os.Stderr, "Output:   %s (%s)\n", cfg.Output.Dir, cfg.Store.Backend)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.NewPipeline(ctx, cfg, logger.Get())
	if err != nil {
		return err
	}
	defer func() { _ = p.Close(context.Background()) }()

	report, err := p.Build(ctx, string(raw))
	if err != nil {
		if report != nil {
			_ = p.RenderReport(report, reportPath(cfg), cfg.Output.Verbose)
		}
		return fmt.Errorf("build failed: %w", err)
	}

	return p.RenderReport(report, reportPath(cfg), cfg.Output.Verbose)
}

// readInput reads a file, or stdin for "-"
func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// commandContext bounds a command by timeout and cancels it on interrupt
func commandContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	if timeout <= 0 {
		return ctx, stop
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	return tctx, func() {
		cancel()
		stop()
	}
}

func reportPath(cfg *model.Config) string {
	if outJSON != "" {
		return outJSON
	}
	return cfg.Output.ReportPath
}
