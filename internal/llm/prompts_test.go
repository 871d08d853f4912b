package llm

import (
	"strings"
	"testing"
)

func TestBuildSystemPrompt_DefaultOntology(t *testing.T) {
	prompt := BuildSystemPrompt("")
	if !strings.Contains(prompt, "predicates of arity 2") {
		t.Error("prompt should request arity-two predicates")
	}
	if !strings.Contains(prompt, "has part") {
		t.Error("default ontology should be embedded")
	}
}

func TestBuildSystemPrompt_CustomOntology(t *testing.T) {
	prompt := BuildSystemPrompt("Object Properties: eats, likes")
	if !strings.Contains(prompt, "eats, likes") {
		t.Error("custom ontology missing from prompt")
	}
	if strings.Contains(prompt, "Chronoid") {
		t.Error("default ontology should not appear with a custom one")
	}
}

func TestBuildReviewPrompt(t *testing.T) {
	prompt := BuildReviewPrompt("anatomy", "")
	if !strings.Contains(prompt, "field of anatomy") {
		t.Errorf("domain missing from review prompt: %q", prompt)
	}
	if !strings.Contains(BuildReviewPrompt("", "x"), "field of the text") {
		t.Error("empty domain should fall back to the text")
	}
}

func TestCleanCodeFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```prolog\nhas_part(a, b).\n```", "has_part(a, b)."},
		{"```\nis_a(cat, animal).\n```", "is_a(cat, animal)."},
		{"likes(x, y).", "likes(x, y)."},
		{"Here you go:\n```prolog\na(b, c).\n```\nDone.", "Here you go:\n\na(b, c).\n\nDone."},
	}
	for _, tt := range tests {
		if got := CleanCodeFences(tt.in); got != tt.want {
			t.Errorf("CleanCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(Config{})
	if err != nil || p != nil {
		t.Fatalf("empty provider should disable generation, got %v, %v", p, err)
	}

	if _, err := NewProvider(Config{Provider: "bogus"}); err == nil {
		t.Error("expected error for unknown provider")
	}

	p, err = NewProvider(Config{Provider: "Claude", APIKey: "k"})
	if err != nil {
		t.Fatalf("NewProvider(claude): %v", err)
	}
	if p.Name() != "anthropic" {
		t.Errorf("Name() = %s, want anthropic", p.Name())
	}

	p, err = NewProvider(Config{Provider: "ollama"})
	if err != nil {
		t.Fatalf("NewProvider(ollama): %v", err)
	}
	if p.Name() != "ollama" {
		t.Errorf("Name() = %s, want ollama", p.Name())
	}

	p, err = NewProvider(Config{Provider: "openai"})
	if err == nil {
		t.Fatal("expected error for openai without key")
	}
	if p != nil {
		t.Errorf("failed constructor leaked a non-nil provider: %#v", p)
	}
}

func TestSupportedProviders(t *testing.T) {
	got := strings.Join(SupportedProviders(), ",")
	if got != "anthropic,claude,ollama,openai" {
		t.Errorf("SupportedProviders() = %s", got)
	}
}

func TestResolveDefaults(t *testing.T) {
	cfg := Config{Model: "m1", Ontology: "Object Properties: eats"}
	req := cfg.resolve(GenerateRequest{Chunk: "c"}, "fallback")

	if req.Model != "m1" {
		t.Errorf("Model = %s, want m1", req.Model)
	}
	if req.MaxTokens != 4096 {
		t.Errorf("MaxTokens = %d, want 4096", req.MaxTokens)
	}
	if !strings.Contains(req.SystemPrompt, "eats") {
		t.Error("system prompt should use the configured ontology")
	}

	req = Config{}.resolve(GenerateRequest{}, "fallback")
	if req.Model != "fallback" {
		t.Errorf("Model = %s, want fallback", req.Model)
	}
}
