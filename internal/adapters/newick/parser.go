// Package newick parses rooted lineage trees from Newick notation, the
// format single-cell phylogeny pipelines emit. Internal node names are
// optional; leaf labels carry cell identifiers.
package newick

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/molonc/treealign/pkg/domain"
)

// Parser implements ports.TreeLoader for Newick input.
type Parser struct{}

// New creates a Newick parser.
func New() *Parser {
	return &Parser{}
}

// Load reads a single Newick tree, e.g. "((a:0.1,b:0.2)x:0.3,c);".
// Quoted labels ('like this') and unnamed internal nodes are supported.
func (p *Parser) Load(r io.Reader) (*domain.Clade, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read newick input: %w", err)
	}

	s := &scanner{input: string(data)}
	s.skipSpace()
	root, err := s.parseClade()
	if err != nil {
		return nil, err
	}
	s.skipSpace()
	if !s.consume(';') {
		return nil, s.errorf("expected ';' terminating the tree")
	}
	return root, nil
}

type scanner struct {
	input string
	pos   int
}

func (s *scanner) errorf(format string, args ...any) error {
	return fmt.Errorf("newick: %s at offset %d", fmt.Sprintf(format, args...), s.pos)
}

func (s *scanner) peek() (byte, bool) {
	if s.pos >= len(s.input) {
		return 0, false
	}
	return s.input[s.pos], true
}

func (s *scanner) consume(c byte) bool {
	if ch, ok := s.peek(); ok && ch == c {
		s.pos++
		return true
	}
	return false
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.input) {
		switch s.input[s.pos] {
		case ' ', '\t', '\n', '\r':
			s.pos++
		default:
			return
		}
	}
}

// parseClade parses "(child,child,...)name:length" or "name:length".
func (s *scanner) parseClade() (*domain.Clade, error) {
	clade := &domain.Clade{}

	s.skipSpace()
	if s.consume('(') {
		for {
			child, err := s.parseClade()
			if err != nil {
				return nil, err
			}
			clade.Children = append(clade.Children, child)

			s.skipSpace()
			if s.consume(',') {
				continue
			}
			if s.consume(')') {
				break
			}
			return nil, s.errorf("expected ',' or ')'")
		}
	}

	s.skipSpace()
	name, err := s.parseLabel()
	if err != nil {
		return nil, err
	}
	clade.Name = name

	s.skipSpace()
	if s.consume(':') {
		length, err := s.parseLength()
		if err != nil {
			return nil, err
		}
		clade.BranchLength = length
	}

	if clade.IsLeaf() && clade.Name == "" {
		return nil, s.errorf("leaf without a cell identifier")
	}
	return clade, nil
}

func (s *scanner) parseLabel() (string, error) {
	if s.consume('\'') {
		start := s.pos
		for {
			ch, ok := s.peek()
			if !ok {
				return "", s.errorf("unterminated quoted label")
			}
			if ch == '\'' {
				label := s.input[start:s.pos]
				s.pos++
				return label, nil
			}
			s.pos++
		}
	}

	start := s.pos
	for s.pos < len(s.input) && !strings.ContainsRune("(),:; \t\n\r", rune(s.input[s.pos])) {
		s.pos++
	}
	return s.input[start:s.pos], nil
}

func (s *scanner) parseLength() (float64, error) {
	s.skipSpace()
	start := s.pos
	for s.pos < len(s.input) && !strings.ContainsRune("(),:; \t\n\r", rune(s.input[s.pos])) {
		s.pos++
	}
	raw := s.input[start:s.pos]
	if raw == "" {
		return 0, s.errorf("expected branch length after ':'")
	}
	length, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, s.errorf("invalid branch length %q", raw)
	}
	return length, nil
}
