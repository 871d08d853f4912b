package model

import "time"

// Config is the complete factgraph configuration.
// Precedence: CLI flags > FACTGRAPH_* env > config file > DefaultConfig.
type Config struct {
	Relations    RelationsConfig   `yaml:"relations" mapstructure:"relations"`
	Output       OutputConfig      `yaml:"output" mapstructure:"output"`
	Store        StoreConfig       `yaml:"store" mapstructure:"store"`
	LLM          LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Chunking     ChunkingConfig    `yaml:"chunking" mapstructure:"chunking"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	HTTP         HTTPConfig        `yaml:"http" mapstructure:"http"`
	Log          LogConfig         `yaml:"log" mapstructure:"log"`
}

// RelationsConfig holds the comma-separated relation name lists
type RelationsConfig struct {
	Parent string `yaml:"parent" mapstructure:"parent"` // Relations whose subject contains the object
	Child  string `yaml:"child" mapstructure:"child"`   // Inverse relations, rendered as cross-links
}

// OutputConfig controls where and how the graph is written
type OutputConfig struct {
	Dir              string `yaml:"dir" mapstructure:"dir"`
	KeepIntermediate bool   `yaml:"keep_intermediate" mapstructure:"keep_intermediate"` // Write generated/content.txt and content.pl
	ReportPath       string `yaml:"report_path" mapstructure:"report_path"`
	Verbose          bool   `yaml:"verbose" mapstructure:"verbose"`
}

// StoreConfig selects the node store backend
type StoreConfig struct {
	Backend string      `yaml:"backend" mapstructure:"backend"` // fs, memory, neo4j
	Neo4j   Neo4jConfig `yaml:"neo4j" mapstructure:"neo4j"`
}

// Neo4jConfig holds Neo4j connection settings
type Neo4jConfig struct {
	URI      string        `yaml:"uri" mapstructure:"uri"`
	User     string        `yaml:"user" mapstructure:"user"`
	Password string        `yaml:"-" mapstructure:"password"`
	Database string        `yaml:"database" mapstructure:"database"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// LLMConfig configures the fact generation provider
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	Ontology  string `yaml:"ontology,omitempty" mapstructure:"ontology"` // Empty means the built-in ontology
	Review    bool   `yaml:"review" mapstructure:"review"`                 // Send each answer back for a correction pass
	Domain    string `yaml:"domain,omitempty" mapstructure:"domain"`       // Subject area named in the review prompt
}

// ChunkingConfig controls how source text is split before generation
type ChunkingConfig struct {
	Size int `yaml:"size" mapstructure:"size"` // Max characters per chunk
}

// CacheConfig configures the generation response cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Backend   string        `yaml:"backend" mapstructure:"backend"` // memory, disk, layered, redis
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	TTL       time.Duration `yaml:"ttl" mapstructure:"ttl"`
	RedisAddr string        `yaml:"redis_addr,omitempty" mapstructure:"redis_addr"`
}

// ConcurrencyConfig controls chunk generation parallelism
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitConfig throttles provider requests
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// HTTPConfig holds proxy settings for provider clients
type HTTPConfig struct {
	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// LogConfig selects the logger mode
type LogConfig struct {
	Mode string `yaml:"mode" mapstructure:"mode"` // development, production
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Relations: RelationsConfig{
			Parent: "has part",
			Child:  "part of",
		},
		Output: OutputConfig{
			Dir:              "./factgraph-out",
			KeepIntermediate: true,
		},
		Store: StoreConfig{
			Backend: "fs",
			Neo4j: Neo4jConfig{
				URI:     "bolt://localhost:7687",
				User:    "neo4j",
				Timeout: 10 * time.Second,
			},
		},
		LLM: LLMConfig{
			Provider:  "anthropic",
			Model:     "", // Provider default
			Timeout:   120,
			MaxTokens: 4096,
		},
		Chunking: ChunkingConfig{
			Size: 2000,
		},
		Cache: CacheConfig{
			Enabled: true,
			Backend: "layered",
			Dir:     defaultCacheDir(),
			TTL:     7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 2,
			BurstSize:         2,
		},
		Log: LogConfig{
			Mode: "development",
		},
	}
}
