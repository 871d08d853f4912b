package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/ppiankov/factgraph/internal/logger"
	"github.com/ppiankov/factgraph/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is overridden at build time with -ldflags
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "factgraph",
	Short: "factgraph - materialize logic facts into a linked note graph",
	Long: `factgraph turns Prolog-style facts into a navigable knowledge graph.

Hierarchical relations (by default "has part") become nested containers,
every other binary relation becomes a typed cross-link, and unary facts
become leaf notes grouped by predicate. Facts can be read from a file or
generated from prose by an LLM.

Passes are idempotent: running the same facts twice changes nothing.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Init(viper.GetString("log.mode"), verbose)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of factgraph.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("factgraph %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.factgraph/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in .env, the config file and ENV variables
func initConfig() {
	// A missing .env is normal
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".factgraph"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match FACTGRAPH_*
	viper.SetEnvPrefix("FACTGRAPH")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig merges defaults, the config file, FACTGRAPH_* variables and
// provider API keys from the environment
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	// AutomaticEnv only answers for keys viper already knows
	for _, key := range configKeys {
		_ = viper.BindEnv(key)
	}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.Output.Verbose = cfg.Output.Verbose || verbose
	applyProviderEnv(cfg)
	return cfg, nil
}

// applyProviderEnv fills credentials the config file should not hold
func applyProviderEnv(cfg *model.Config) {
	switch cfg.LLM.Provider {
	case "openai":
		if key := os.Getenv("OPENAI_API_KEY"); key != "" && cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = key
		}
	case "anthropic", "claude":
		if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = key
		}
	case "ollama":
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	if pw := os.Getenv("NEO4J_PASSWORD"); pw != "" && cfg.Store.Neo4j.Password == "" {
		cfg.Store.Neo4j.Password = pw
	}
}
