package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ppiankov/factgraph/internal/cache"
	"github.com/ppiankov/factgraph/internal/llm"
	"go.uber.org/zap"
)

// ChunkOptions configures chunk generation
type ChunkOptions struct {
	Workers      int
	SystemPrompt string
	Model        string
	MaxTokens    int

	// ReviewPrompt, when set, sends every generated answer back to the
	// provider together with its chunk for a correction pass
	ReviewPrompt string

	Cache    cache.Cache
	CacheTTL time.Duration
	Limiter  *Limiter
	Logger   *zap.Logger
}

// ChunkResult is the outcome of one chunk. Results are returned in chunk
// order regardless of completion order.
type ChunkResult struct {
	Index      int
	Text       string
	Model      string // Model that answered, as reported by the provider
	Cached     bool
	TokensUsed int
	Error      error
}

// GetError returns the chunk error
func (r *ChunkResult) GetError() error {
	return r.Error
}

// cachedChunk is the cache payload for a generated chunk
type cachedChunk struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

// ChunkJob generates facts for one chunk
type ChunkJob struct {
	Index     int
	Chunk     string
	processor *ChunkProcessor
}

// Execute runs the chunk through the cache, limiter and provider
func (j *ChunkJob) Execute(ctx context.Context) Result {
	r := j.processor.generate(ctx, j.Chunk)
	r.Index = j.Index
	return r
}

// ChunkProcessor turns text chunks into raw fact text concurrently
type ChunkProcessor struct {
	provider llm.Provider
	opts     ChunkOptions
}

// NewChunkProcessor creates a processor for provider
func NewChunkProcessor(provider llm.Provider, opts ChunkOptions) *ChunkProcessor {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Limiter == nil {
		opts.Limiter = NewLimiter(0, 1)
	}
	return &ChunkProcessor{provider: provider, opts: opts}
}

// Process generates every chunk and returns one result per chunk, ordered by
// index. A failed chunk carries its error; the others are unaffected. Chunks
// never started because ctx ended are reported with ctx's error.
func (p *ChunkProcessor) Process(ctx context.Context, chunks []string) []*ChunkResult {
	if len(chunks) == 0 {
		return []*ChunkResult{}
	}

	jobs := make([]Job, len(chunks))
	for i, c := range chunks {
		jobs[i] = &ChunkJob{Index: i, Chunk: c, processor: p}
	}

	pool := NewPool(ctx, p.opts.Workers)
	raw := pool.Run(jobs)

	out := make([]*ChunkResult, len(chunks))
	for _, r := range raw {
		cr := r.(*ChunkResult)
		out[cr.Index] = cr
	}
	for i := range out {
		if out[i] == nil {
			err := ctx.Err()
			if err == nil {
				err = errors.New("chunk not processed")
			}
			out[i] = &ChunkResult{Index: i, Error: err}
		}
	}
	return out
}

func (p *ChunkProcessor) cacheKey(chunk string) string {
	return cache.CacheKey(p.provider.Name(), p.opts.Model, p.opts.SystemPrompt, p.opts.ReviewPrompt, chunk)
}

func (p *ChunkProcessor) generate(ctx context.Context, chunk string) *ChunkResult {
	log := p.opts.Logger.With(zap.String("provider", p.provider.Name()))

	var key string
	if p.opts.Cache != nil {
		key = p.cacheKey(chunk)
		if data, ok := p.opts.Cache.Get(key); ok {
			var entry cachedChunk
			if err := json.Unmarshal(data, &entry); err == nil {
				log.Debug("chunk served from cache")
				return &ChunkResult{Text: entry.Text, Model: entry.Model, Cached: true}
			}
		}
	}

	resp, err := p.call(ctx, chunk, p.opts.SystemPrompt)
	if err != nil {
		return &ChunkResult{Error: err}
	}
	result := &ChunkResult{Text: resp.Text, Model: resp.Model, TokensUsed: resp.TokensUsed}

	if p.opts.ReviewPrompt != "" {
		review, err := p.call(ctx, "Text:\n"+chunk+"\n\nProlog:\n"+result.Text, p.opts.ReviewPrompt)
		if err != nil {
			return &ChunkResult{TokensUsed: result.TokensUsed, Error: fmt.Errorf("review: %w", err)}
		}
		result.Text = review.Text
		result.TokensUsed += review.TokensUsed
	}

	if p.opts.Cache != nil {
		data, _ := json.Marshal(cachedChunk{Text: result.Text, Model: result.Model})
		if err := p.opts.Cache.Set(key, data, p.opts.CacheTTL); err != nil {
			log.Warn("failed to cache chunk", zap.Error(err))
		}
	}

	return result
}

func (p *ChunkProcessor) call(ctx context.Context, chunk, systemPrompt string) (*llm.GenerateResponse, error) {
	if err := p.opts.Limiter.Wait(ctx, p.provider.Name()); err != nil {
		return nil, err
	}

	resp, err := p.provider.Generate(ctx, llm.GenerateRequest{
		Chunk:        chunk,
		SystemPrompt: systemPrompt,
		Model:        p.opts.Model,
		MaxTokens:    p.opts.MaxTokens,
	})
	if err != nil {
		return nil, err
	}
	if resp.Text == "" {
		return nil, fmt.Errorf("empty response from %s", p.provider.Name())
	}
	return resp, nil
}
