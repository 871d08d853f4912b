package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/factgraph/internal/cache"
	"github.com/ppiankov/factgraph/internal/chunk"
	"github.com/ppiankov/factgraph/internal/extract"
	"github.com/ppiankov/factgraph/internal/llm"
	"github.com/ppiankov/factgraph/internal/materialize"
	"github.com/ppiankov/factgraph/internal/model"
	"github.com/ppiankov/factgraph/internal/relation"
	"github.com/ppiankov/factgraph/internal/store"
	"github.com/ppiankov/factgraph/internal/worker"
	"go.uber.org/zap"
)

// GeneratedDir is the directory under the output root that holds the
// intermediate source text and generated facts
const GeneratedDir = "generated"

// Pipeline orchestrates text -> facts -> graph
type Pipeline struct {
	config     *model.Config
	classifier *relation.Classifier
	store      store.Store
	provider   llm.Provider // nil when generation is not configured
	cache      cache.Cache  // nil when disabled
	limiter    *worker.Limiter
	renderer   *Renderer
	logger     *zap.Logger

	providerErr error
	closers     []func(context.Context) error
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithStore replaces the configured node store
func WithStore(s store.Store) Option {
	return func(p *Pipeline) { p.store = s }
}

// WithProvider replaces the configured generation provider
func WithProvider(provider llm.Provider) Option {
	return func(p *Pipeline) {
		p.provider = provider
		p.providerErr = nil
	}
}

// WithCache replaces the configured response cache
func WithCache(c cache.Cache) Option {
	return func(p *Pipeline) { p.cache = c }
}

// ChunkFailure records a chunk that produced no facts
type ChunkFailure struct {
	Index int
	Err   error
}

func (f ChunkFailure) Error() string {
	return fmt.Sprintf("chunk %d: %v", f.Index, f.Err)
}

// NewPipeline creates a pipeline from cfg. An unusable provider does not
// fail construction since Build never needs one; Generate reports it.
func NewPipeline(ctx context.Context, cfg *model.Config, logger *zap.Logger, opts ...Option) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pipeline{
		config:     cfg,
		classifier: relation.NewClassifier(cfg.Relations.Parent, cfg.Relations.Child),
		limiter:    worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
		renderer:   NewRenderer(os.Stderr),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.provider == nil && p.providerErr == nil {
		provider, err := llm.NewProvider(llm.ConfigFromModel(*cfg))
		if err != nil {
			logger.Warn("fact generation unavailable", zap.String("provider", cfg.LLM.Provider), zap.Error(err))
			p.providerErr = err
		} else {
			p.provider = provider
		}
	}

	if p.cache == nil {
		c, err := cache.New(cfg.Cache)
		if err != nil {
			logger.Warn("response cache disabled", zap.String("backend", cfg.Cache.Backend), zap.Error(err))
		} else if c != nil {
			p.cache = c
			if closer, ok := c.(interface{ Close() error }); ok {
				p.closers = append(p.closers, func(context.Context) error { return closer.Close() })
			}
		}
	}

	if p.store == nil {
		s, err := p.openStore(ctx)
		if err != nil {
			_ = p.Close(ctx)
			return nil, err
		}
		p.store = s
	}

	return p, nil
}

func (p *Pipeline) openStore(ctx context.Context) (store.Store, error) {
	switch strings.ToLower(p.config.Store.Backend) {
	case "", "fs":
		return store.NewFileStore(p.config.Output.Dir), nil
	case "memory":
		return store.NewMemoryStore(), nil
	case "neo4j":
		nc := p.config.Store.Neo4j
		s, err := store.NewNeo4jStore(ctx, store.Neo4jConfig{
			URI:      nc.URI,
			User:     nc.User,
			Password: nc.Password,
			Database: nc.Database,
			Timeout:  nc.Timeout,
		}, p.Root(), p.logger)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		p.closers = append(p.closers, s.Close)
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s (supported: fs, memory, neo4j)", p.config.Store.Backend)
	}
}

// Close releases backend connections
func (p *Pipeline) Close(ctx context.Context) error {
	var errs []error
	for _, closeFn := range p.closers {
		if err := closeFn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	p.closers = nil
	return errors.Join(errs...)
}

// Root is the output root every pass of this pipeline writes under
func (p *Pipeline) Root() string {
	return p.config.Output.Dir
}

// Store returns the node store passes write to
func (p *Pipeline) Store() store.Store {
	return p.store
}

// Generate turns source text into raw fact text, one provider request per
// chunk. Failed chunks are returned alongside the text of the others; only
// a missing provider, a canceled context or every chunk failing is an error.
func (p *Pipeline) Generate(ctx context.Context, text string) (string, []ChunkFailure, error) {
	raw, _, failures, err := p.generate(ctx, text)
	return raw, failures, err
}

func (p *Pipeline) generate(ctx context.Context, text string) (string, *model.Generation, []ChunkFailure, error) {
	if p.provider == nil {
		if p.providerErr != nil {
			return "", nil, nil, fmt.Errorf("fact generation unavailable: %w", p.providerErr)
		}
		return "", nil, nil, errors.New("fact generation unavailable: no llm provider configured")
	}

	cfg := p.config.LLM
	gen := &model.Generation{Provider: p.provider.Name(), Model: cfg.Model}

	chunks := chunk.Split(text, p.config.Chunking.Size)
	gen.Chunks = len(chunks)
	if len(chunks) == 0 {
		return "", gen, nil, nil
	}

	opts := worker.ChunkOptions{
		Workers:      p.config.Concurrency.Workers,
		SystemPrompt: llm.BuildSystemPrompt(cfg.Ontology),
		Model:        cfg.Model,
		MaxTokens:    cfg.MaxTokens,
		Cache:        p.cache,
		CacheTTL:     p.config.Cache.TTL,
		Limiter:      p.limiter,
		Logger:       p.logger,
	}
	if cfg.Review {
		opts.ReviewPrompt = llm.BuildReviewPrompt(cfg.Domain, cfg.Ontology)
	}

	p.logger.Info("generating facts",
		zap.String("provider", gen.Provider),
		zap.String("model", gen.Model),
		zap.Int("chunks", len(chunks)),
	)

	results := worker.NewChunkProcessor(p.provider, opts).Process(ctx, chunks)

	var (
		parts    []string
		failures []ChunkFailure
	)
	for _, r := range results {
		if r.Error != nil {
			failures = append(failures, ChunkFailure{Index: r.Index, Err: r.Error})
			gen.FailedChunks = append(gen.FailedChunks, r.Index)
			gen.Warnings = append(gen.Warnings, fmt.Sprintf("chunk %d: %v", r.Index, r.Error))
			p.logger.Warn("chunk generation failed", zap.Int("chunk", r.Index), zap.Error(r.Error))
			continue
		}
		if r.Cached {
			gen.CacheHits++
		}
		if gen.Model == "" {
			gen.Model = r.Model
		}
		if t := llm.CleanCodeFences(r.Text); t != "" {
			parts = append(parts, t)
		}
	}

	if err := ctx.Err(); err != nil {
		return "", gen, failures, err
	}
	if len(failures) == len(chunks) {
		return "", gen, failures, fmt.Errorf("all %d chunks failed: %w", len(chunks), failures[0].Err)
	}

	return strings.Join(parts, "\n"), gen, failures, nil
}

// Build materializes raw fact text into the store. Passes over the same
// output root are serialized. The report is returned even when a store
// failure aborts the pass.
func (p *Pipeline) Build(ctx context.Context, raw string) (*model.Report, error) {
	root := p.Root()
	release := store.Acquire(root)
	defer release()

	started := time.Now()
	report := &model.Report{
		PassID:     uuid.NewString(),
		OutputRoot: root,
		Backend:    p.backendName(),
		StartedAt:  started.UTC(),
	}
	log := p.logger.With(zap.String("pass_id", report.PassID))

	facts, diags := extract.Extract(raw)
	for _, d := range diags {
		log.Debug("skipped fragment", zap.Int("offset", d.Offset), zap.String("message", d.Message))
	}
	report.Diagnostics = append(report.Diagnostics, diags...)

	result, err := materialize.New(p.store, log).Materialize(ctx, facts, p.classifier)
	if result != nil {
		report.Facts = result.Counts
		report.Write = result.Stats
		report.Diagnostics = append(report.Diagnostics, result.Diagnostics...)
	}
	report.Duration = time.Since(started)

	if err != nil {
		return report, fmt.Errorf("materialize: %w", err)
	}
	return report, nil
}

// Run generates facts from text and builds them. With
// output.keep_intermediate the source text and the generated facts are kept
// under the output root.
func (p *Pipeline) Run(ctx context.Context, text string) (*model.Report, error) {
	raw, gen, _, err := p.generate(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	if p.config.Output.KeepIntermediate {
		if err := p.writeIntermediate(text, raw); err != nil {
			return nil, err
		}
	}

	report, err := p.Build(ctx, raw)
	if report != nil {
		report.Generation = gen
	}
	return report, err
}

func (p *Pipeline) writeIntermediate(text, raw string) error {
	dir := filepath.Join(p.Root(), GeneratedDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "content.txt"), []byte(text), 0644); err != nil {
		return fmt.Errorf("write source text: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "content.pl"), []byte(raw), 0644); err != nil {
		return fmt.Errorf("write generated facts: %w", err)
	}
	return nil
}

// RenderReport writes the JSON report when jsonPath is set and prints the
// summary
func (p *Pipeline) RenderReport(report *model.Report, jsonPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	p.renderer.RenderSummary(report, verbose)
	return nil
}

func (p *Pipeline) backendName() string {
	switch p.store.(type) {
	case *store.FileStore:
		return "fs"
	case *store.MemoryStore:
		return "memory"
	case *store.Neo4jStore:
		return "neo4j"
	default:
		return p.config.Store.Backend
	}
}
