// Package materialize writes classified facts into a node store as nested
// containers, waypoint notes and link lines.
package materialize

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/factgraph/internal/hierarchy"
	"github.com/ppiankov/factgraph/internal/model"
	"github.com/ppiankov/factgraph/internal/relation"
	"github.com/ppiankov/factgraph/internal/store"
	"go.uber.org/zap"
)

const (
	// Waypoint marks a structural note with no content of its own
	Waypoint = "%% Waypoint %%"

	// UncategorizedDir holds associative subjects the hierarchy never placed
	UncategorizedDir = "uncategorized"
)

// LinkLine renders a typed cross-reference line
func LinkLine(predicate, target string) string {
	return predicate + "::[[" + store.Sanitize(target) + "]]"
}

// Result is the outcome of one pass
type Result struct {
	Counts      model.FactCounts
	Stats       model.WriteStats
	Diagnostics []model.Diagnostic
	Placement   *PlacementIndex
}

// Materializer turns a fact set into store writes. A Materializer is safe to
// reuse across passes; all per-pass state lives in a pass value.
type Materializer struct {
	store  store.Store
	logger *zap.Logger
}

// New creates a materializer over s
func New(s store.Store, logger *zap.Logger) *Materializer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Materializer{store: s, logger: logger}
}

type pass struct {
	ctx    context.Context
	store  store.Store
	logger *zap.Logger

	forest *hierarchy.Forest
	index  *PlacementIndex
	result *Result

	uncategorizedReady bool
}

// Materialize writes facts to the store. Hierarchical facts become nested
// containers, associative facts become link lines and unary facts become
// leaf notes under a container per predicate. Every write is guarded by an
// existence or containment check, so running it again over the same store
// changes nothing.
//
// Only store failures abort; what was written before the failure stays
// valid and a re-run completes it.
func (m *Materializer) Materialize(ctx context.Context, facts *model.FactSet, classifier *relation.Classifier) (*Result, error) {
	classified := classifier.Classify(facts.Binary)
	forest, diags := hierarchy.Build(classified.Hierarchical)

	p := &pass{
		ctx:    ctx,
		store:  m.store,
		logger: m.logger,
		forest: forest,
		index:  newPlacementIndex(),
		result: &Result{
			Counts: model.FactCounts{
				Binary:       len(facts.Binary),
				Unary:        facts.UnaryCount(),
				Hierarchical: len(classified.Hierarchical),
				Associative:  len(classified.Associative),
			},
			Diagnostics: diags,
		},
	}
	p.result.Placement = p.index

	for _, d := range diags {
		m.logger.Debug("hierarchy diagnostic", zap.String("kind", string(d.Kind)), zap.String("message", d.Message))
	}

	if err := p.hierarchy(classified.Hierarchical); err != nil {
		return p.result, err
	}
	if err := p.associative(classified.Associative); err != nil {
		return p.result, err
	}
	if err := p.unary(facts); err != nil {
		return p.result, err
	}

	m.logger.Info("materialized facts",
		zap.Int("placed", p.index.Len()),
		zap.Int("containers_created", p.result.Stats.ContainersCreated),
		zap.Int("notes_created", p.result.Stats.NotesCreated),
		zap.Int("lines_appended", p.result.Stats.LinesAppended),
		zap.Int("lines_skipped", p.result.Stats.LinesSkipped),
		zap.Int("diagnostics", len(p.result.Diagnostics)),
	)
	return p.result, nil
}

// hierarchy places every tree reachable from a hierarchical fact's root
func (p *pass) hierarchy(facts []model.BinaryFact) error {
	for _, fact := range facts {
		if err := p.ctx.Err(); err != nil {
			return err
		}
		if fact.IsSelfReferential() {
			continue
		}

		root := p.forest.FindRoot(fact.Subject)
		if p.index.traversal.Claimed(root) {
			continue
		}

		rootPath := store.Path{store.Sanitize(root)}
		if err := p.ensureContainer(rootPath); err != nil {
			return err
		}
		p.index.place(root, rootPath)

		err := p.forest.Walk(root, p.index.traversal, func(e hierarchy.Edge) error {
			parentPath, _ := p.index.Lookup(e.Parent)
			if !e.Claimed {
				childPath := parentPath.Child(store.Sanitize(e.Child))
				if err := p.ensureContainer(childPath); err != nil {
					return err
				}
				p.index.place(e.Child, childPath)
			}
			return p.appendOnce(store.NoteOf(parentPath), LinkLine(e.Predicate, e.Child))
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// associative links subjects to objects. A fact touching an entity the
// hierarchy placed is absorbed by the containment. Otherwise the line goes to
// the top-level container named after the subject when one exists, and to
// the uncategorized container when none does.
func (p *pass) associative(facts []model.BinaryFact) error {
	for _, fact := range facts {
		if err := p.ctx.Err(); err != nil {
			return err
		}

		if p.index.traversal.Claimed(fact.Subject) || p.index.traversal.Claimed(fact.Object) {
			p.result.Stats.FactsAbsorbed++
			p.logger.Debug("absorbed by hierarchy", zap.String("fact", fact.String()))
			continue
		}

		line := LinkLine(fact.Predicate, fact.Object)
		top := store.NoteOf(store.Path{store.Sanitize(fact.Subject)})
		exists, err := p.store.Exists(p.ctx, top)
		if err != nil {
			return err
		}
		if exists {
			if err := p.appendOnce(top, line); err != nil {
				return err
			}
			continue
		}

		dir := store.Path{UncategorizedDir}
		if !p.uncategorizedReady {
			if err := p.store.Create(p.ctx, dir); err != nil {
				return err
			}
			p.uncategorizedReady = true
		}
		if err := p.appendOnce(store.LeafOf(dir, store.Sanitize(fact.Subject)), line); err != nil {
			return err
		}

		d := model.Diagnostic{
			Kind:    model.DiagUnresolvedPlacement,
			Message: fmt.Sprintf("%s: %q has no place in the hierarchy", fact, fact.Subject),
		}
		p.result.Diagnostics = append(p.result.Diagnostics, d)
		p.logger.Debug("unresolved placement", zap.String("fact", fact.String()))
	}
	return nil
}

// unary writes a container per predicate and a seeded leaf note per argument
func (p *pass) unary(facts *model.FactSet) error {
	for _, predicate := range facts.UnaryPredicates() {
		dir := store.Path{store.Sanitize(predicate)}
		if err := p.ensureContainer(dir); err != nil {
			return err
		}

		for _, arg := range facts.Arguments(predicate) {
			if err := p.ctx.Err(); err != nil {
				return err
			}
			ref := store.LeafOf(dir, store.Sanitize(arg))
			exists, err := p.store.Exists(p.ctx, ref)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			if err := p.store.WriteBody(p.ctx, ref, "# "+arg+"\n\n"); err != nil {
				return err
			}
			p.result.Stats.NotesCreated++
		}
	}
	return nil
}

// ensureContainer creates the container and its waypoint note when the note
// is missing
func (p *pass) ensureContainer(dir store.Path) error {
	ref := store.NoteOf(dir)
	exists, err := p.store.Exists(p.ctx, ref)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if err := p.store.Create(p.ctx, dir); err != nil {
		return err
	}
	if err := p.store.WriteBody(p.ctx, ref, Waypoint+"\n"); err != nil {
		return err
	}
	p.result.Stats.ContainersCreated++
	p.result.Stats.NotesCreated++
	p.logger.Debug("created container", zap.String("path", dir.String()))
	return nil
}

// appendOnce appends line to the note unless an identical line is present
func (p *pass) appendOnce(ref store.Ref, line string) error {
	body, err := p.store.ReadBody(p.ctx, ref)
	if err != nil {
		return err
	}
	if hasLine(body, line) {
		p.result.Stats.LinesSkipped++
		return nil
	}

	if body == "" {
		exists, err := p.store.Exists(p.ctx, ref)
		if err != nil {
			return err
		}
		if !exists {
			p.result.Stats.NotesCreated++
		}
	}

	if err := p.store.AppendLine(p.ctx, ref, line); err != nil {
		return err
	}
	p.result.Stats.LinesAppended++
	return nil
}

func hasLine(body, line string) bool {
	for _, l := range strings.Split(body, "\n") {
		if l == line {
			return true
		}
	}
	return false
}
