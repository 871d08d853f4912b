package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/factgraph/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// envKeyReplacer maps nested keys to variables: llm.model -> FACTGRAPH_LLM_MODEL
var envKeyReplacer = strings.NewReplacer(".", "_")

// configKeys lists every leaf key that may come from the environment
var configKeys = []string{
	"relations.parent",
	"relations.child",
	"output.dir",
	"output.keep_intermediate",
	"output.report_path",
	"store.backend",
	"store.neo4j.uri",
	"store.neo4j.user",
	"store.neo4j.password",
	"store.neo4j.database",
	"store.neo4j.timeout",
	"llm.provider",
	"llm.model",
	"llm.api_key",
	"llm.base_url",
	"llm.timeout",
	"llm.max_tokens",
	"llm.ontology",
	"llm.review",
	"llm.domain",
	"chunking.size",
	"cache.enabled",
	"cache.backend",
	"cache.dir",
	"cache.ttl",
	"cache.redis_addr",
	"concurrency.workers",
	"rate_limiting.requests_per_second",
	"rate_limiting.burst_size",
	"http.http_proxy",
	"http.https_proxy",
	"http.no_proxy",
	"log.mode",
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage factgraph configuration",
	Long: `Manage factgraph configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (FACTGRAPH_*)
3. Config file (~/.factgraph/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after merging defaults, config file and environment.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}

		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println("  Current Configuration")
		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println()
		fmt.Println(string(yamlData))
		fmt.Println("Secrets (api_key, neo4j password) are never printed.")
		fmt.Println()

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.factgraph/config.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error finding home directory: %w", err)
		}

		configPath := cfgFile
		if configPath == "" {
			configPath = filepath.Join(home, ".factgraph", "config.yaml")
		}

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'factgraph config show' to view it, or delete it first to recreate", configPath)
		}

		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}

		yamlData, err := yaml.Marshal(model.DefaultConfig())
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}

		var b strings.Builder
		b.WriteString("# factgraph configuration\n")
		b.WriteString("#\n")
		b.WriteString("# Configuration hierarchy (highest to lowest priority):\n")
		b.WriteString("#   1. CLI flags\n")
		b.WriteString("#   2. Environment variables (FACTGRAPH_*, e.g. FACTGRAPH_LLM_MODEL)\n")
		b.WriteString("#   3. This config file\n")
		b.WriteString("#   4. Built-in defaults\n\n")
		b.Write(yamlData)
		b.WriteString("\n# Credentials (use environment variables or a .env file):\n")
		b.WriteString("#   export OPENAI_API_KEY=sk-...\n")
		b.WriteString("#   export ANTHROPIC_API_KEY=sk-ant-...\n")
		b.WriteString("#   export OLLAMA_BASE_URL=http://localhost:11434\n")
		b.WriteString("#   export NEO4J_PASSWORD=...\n")

		if err := os.WriteFile(configPath, []byte(b.String()), 0644); err != nil {
			return fmt.Errorf("error writing config: %w", err)
		}

		fmt.Printf("✓ Created default configuration: %s\n", configPath)
		fmt.Printf("\nTo view the configuration:\n")
		fmt.Printf("  factgraph config show\n")
		fmt.Printf("\nTo customize, edit the file with your preferred editor:\n")
		fmt.Printf("  $EDITOR %s\n", configPath)
		fmt.Printf("\n")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
