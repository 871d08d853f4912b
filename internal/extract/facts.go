package extract

import (
	"fmt"
	"strings"

	"github.com/ppiankov/factgraph/internal/model"
)

// Grammar accepted by the fact parser:
//
//	clause := IDENT '(' ws arg ws [ ',' ws arg ws ] ')' '.'
//	arg    := IDENT | QUOTED
//	IDENT  := [A-Za-z0-9_]+
//	QUOTED := '\'' [^']+ '\''
//
// The predicate name must touch its opening parenthesis. Any text that is
// not a clause is ignored.

// FactExtractor parses fact-bearing text into a FactSet
type FactExtractor struct{}

// NewFactExtractor creates a new fact extractor
func NewFactExtractor() *FactExtractor {
	return &FactExtractor{}
}

// Extract parses every well-formed clause in raw. Malformed clauses are
// skipped and reported as diagnostics; Extract never fails.
func (e *FactExtractor) Extract(raw string) (*model.FactSet, []model.Diagnostic) {
	p := &parser{src: raw}
	facts := model.NewFactSet()
	var diags []model.Diagnostic

	for p.pos < len(p.src) {
		start, name, ok := p.nextCandidate()
		if !ok {
			break
		}

		// Position just after '(' so a failed clause does not swallow a
		// valid one nested inside it.
		resume := p.pos + 1

		args, err := p.clause()
		if err != nil {
			diags = append(diags, model.Diagnostic{
				Kind:    model.DiagParseSkipped,
				Message: fmt.Sprintf("%s(...: %v", name, err),
				Offset:  start,
			})
			p.pos = resume
			continue
		}

		switch len(args) {
		case 1:
			facts.AddUnary(name, args[0])
		case 2:
			facts.AddBinary(model.BinaryFact{Predicate: name, Subject: args[0], Object: args[1]})
		}
	}

	return facts, diags
}

// Extract is a convenience wrapper around a zero-value FactExtractor
func Extract(raw string) (*model.FactSet, []model.Diagnostic) {
	return NewFactExtractor().Extract(raw)
}

type parser struct {
	src string
	pos int
}

// nextCandidate advances to the next identifier immediately followed by '('.
// On success pos points at the '('.
func (p *parser) nextCandidate() (int, string, bool) {
	for p.pos < len(p.src) {
		if !isIdentByte(p.src[p.pos]) {
			p.pos++
			continue
		}
		start := p.pos
		for p.pos < len(p.src) && isIdentByte(p.src[p.pos]) {
			p.pos++
		}
		if p.pos < len(p.src) && p.src[p.pos] == '(' {
			return start, p.src[start:p.pos], true
		}
	}
	return 0, "", false
}

// clause parses '(' args ')' '.' with pos on the opening parenthesis
func (p *parser) clause() ([]string, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}

	var args []string
	for {
		p.skipSpace()
		arg, err := p.arg()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipSpace()

		if p.pos >= len(p.src) {
			return nil, errUnterminated
		}
		if p.src[p.pos] == ',' {
			if len(args) == 2 {
				return nil, errArity
			}
			p.pos++
			continue
		}
		break
	}

	if err := p.expect(')'); err != nil {
		return nil, err
	}
	if err := p.expect('.'); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) arg() (string, error) {
	if p.pos >= len(p.src) {
		return "", errUnterminated
	}
	if p.src[p.pos] == '\'' {
		return p.quoted()
	}
	start := p.pos
	for p.pos < len(p.src) && isIdentByte(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return "", fmt.Errorf("expected argument at offset %d", p.pos)
	}
	return p.src[start:p.pos], nil
}

func (p *parser) quoted() (string, error) {
	p.pos++ // opening quote
	end := strings.IndexByte(p.src[p.pos:], '\'')
	if end < 0 {
		return "", errUnbalancedQuote
	}
	if end == 0 {
		return "", fmt.Errorf("empty quoted argument at offset %d", p.pos)
	}
	val := p.src[p.pos : p.pos+end]
	p.pos += end + 1
	return val, nil
}

func (p *parser) expect(c byte) error {
	if p.pos >= len(p.src) {
		return errUnterminated
	}
	if p.src[p.pos] != c {
		return fmt.Errorf("expected %q at offset %d, found %q", c, p.pos, p.src[p.pos])
	}
	p.pos++
	return nil
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func isIdentByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

var (
	errUnterminated    = fmt.Errorf("unterminated clause")
	errArity           = fmt.Errorf("more than two arguments")
	errUnbalancedQuote = fmt.Errorf("unbalanced quote")
)
