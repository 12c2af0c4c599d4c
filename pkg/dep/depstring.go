package dep

import (
	"strings"

	"github.com/ppphp/entropago/pkg/exception"
	"github.com/ppphp/entropago/pkg/util/msg"
)

const (
	LogicAnd = '&'
	LogicOr  = '|'
)

// PackageMatch identifies a package inside a repository. The kernel only
// compares matches, it never looks inside them.
type PackageMatch struct {
	PackageID    int
	RepositoryID string
}

// Repository is a package catalogue atoms can be matched against. With
// multi set every matching package is returned, otherwise at most the best
// one. Implementations must not mutate state visible to other callers.
type Repository interface {
	Match(atom string, multi bool) []PackageMatch
	RepositoryID() string
}

type Operator int

const (
	OpAnd Operator = iota
	OpOr
)

func (o Operator) String() string {
	if o == OpOr {
		return string(LogicOr)
	}
	return string(LogicAnd)
}

// DependencyNode is either a leaf holding an atom, or a group of children
// joined by one operator. Leaves have no children.
type DependencyNode struct {
	Atom     string
	Op       Operator
	Children []*DependencyNode
}

func (n *DependencyNode) IsLeaf() bool {
	return n.Children == nil
}

func (n *DependencyNode) String() string {
	if n.IsLeaf() {
		return n.Atom
	}
	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		if c.IsLeaf() {
			parts[i] = c.String()
		} else {
			parts[i] = "(" + c.String() + ")"
		}
	}
	return strings.Join(parts, " "+n.Op.String()+" ")
}

type tokenKind int

const (
	tokenLeaf tokenKind = iota
	tokenAnd
	tokenOr
	tokenGroup
)

type token struct {
	kind  tokenKind
	value string
	sub   []token
}

func malformed(dep, why string) error {
	return exception.Raisef(exception.KindMalformedDependency, "malformed dependency %q: %s", dep, why)
}

// splitSubs tokenizes one nesting level of dep. Whitespace is dropped,
// operators are only seen at depth 0 and parenthesised content becomes a
// recursively tokenized group.
func splitSubs(dep string) ([]token, error) {
	var (
		tokens []token
		leaf   strings.Builder
	)
	flush := func() {
		if leaf.Len() > 0 {
			tokens = append(tokens, token{kind: tokenLeaf, value: leaf.String()})
			leaf.Reset()
		}
	}
	for i := 0; i < len(dep); i++ {
		c := dep[i]
		switch c {
		case ' ', '\t', '\n', '\r':
		case LogicAnd:
			flush()
			tokens = append(tokens, token{kind: tokenAnd})
		case LogicOr:
			flush()
			tokens = append(tokens, token{kind: tokenOr})
		case '(':
			if leaf.Len() > 0 {
				return nil, malformed(dep, "missing operator before group")
			}
			depth, j := 1, i+1
			for ; j < len(dep) && depth > 0; j++ {
				switch dep[j] {
				case '(':
					depth++
				case ')':
					depth--
				}
			}
			if depth != 0 {
				return nil, malformed(dep, "unbalanced parenthesis")
			}
			inner := dep[i+1 : j-1]
			if strings.TrimSpace(inner) == "" {
				return nil, malformed(dep, "empty group")
			}
			sub, err := splitSubs(inner)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokenGroup, sub: sub})
			i = j - 1
		case ')':
			return nil, malformed(dep, "unbalanced parenthesis")
		default:
			if leaf.Len() == 0 && len(tokens) > 0 && tokens[len(tokens)-1].kind == tokenGroup {
				return nil, malformed(dep, "missing operator after group")
			}
			leaf.WriteByte(c)
		}
	}
	flush()
	return tokens, nil
}

// buildNode turns one level of tokens into a group node. Operands and
// operators must alternate, and a level may use only one operator.
func buildNode(dep string, tokens []token) (*DependencyNode, error) {
	if len(tokens) == 0 {
		return nil, malformed(dep, "empty expression")
	}
	node := &DependencyNode{Op: OpAnd}
	var opKind tokenKind = -1
	for i, t := range tokens {
		isOperand := t.kind == tokenLeaf || t.kind == tokenGroup
		if isOperand != (i%2 == 0) {
			return nil, malformed(dep, "operator without operand")
		}
		switch t.kind {
		case tokenLeaf:
			node.Children = append(node.Children, &DependencyNode{Atom: t.value})
		case tokenGroup:
			child, err := buildNode(dep, t.sub)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
		default:
			if opKind != -1 && opKind != t.kind {
				return nil, malformed(dep, "mixed & and | without grouping")
			}
			opKind = t.kind
		}
	}
	if len(tokens)%2 == 0 {
		return nil, malformed(dep, "trailing operator")
	}
	if opKind == tokenOr {
		node.Op = OpOr
	}
	return node, nil
}

// ParseDependencyString builds the tree of a conditional dependency string.
// The whole string is one implicit group.
func ParseDependencyString(dep string) (*DependencyNode, error) {
	tokens, err := splitSubs(dep)
	if err != nil {
		return nil, err
	}
	return buildNode(dep, tokens)
}

// DependencyStringParser resolves conditional dependency strings such as
// "(app-foo/a & app-foo/b) | app-foo/c" against an ordered repository list.
// Match results are memoized per Parse call only. A parser must not be
// used from several goroutines at once; separate parsers are independent.
type DependencyStringParser struct {
	repos    []Repository
	selected map[PackageMatch]struct{}

	depCache  map[string]bool
	evalCache map[string][]PackageMatch
}

// NewDependencyStringParser creates a parser. selectedMatches are packages
// already chosen by the caller; OR groups prefer branches made of them.
func NewDependencyStringParser(repos []Repository, selectedMatches []PackageMatch) *DependencyStringParser {
	p := &DependencyStringParser{
		repos:     repos,
		depCache:  map[string]bool{},
		evalCache: map[string][]PackageMatch{},
	}
	if len(selectedMatches) > 0 {
		p.selected = make(map[PackageMatch]struct{}, len(selectedMatches))
		for _, m := range selectedMatches {
			p.selected[m] = struct{}{}
		}
	}
	return p
}

func (p *DependencyStringParser) clearCache() {
	p.depCache = map[string]bool{}
	p.evalCache = map[string][]PackageMatch{}
}

// exists reports whether any repository has a package for atom.
func (p *DependencyStringParser) exists(atom string) bool {
	if found, ok := p.depCache[atom]; ok {
		return found
	}
	found := false
	for _, repo := range p.repos {
		if len(repo.Match(atom, false)) > 0 {
			found = true
			break
		}
	}
	p.depCache[atom] = found
	return found
}

// resolve returns every match for atom in the first repository that has any.
func (p *DependencyStringParser) resolve(atom string) []PackageMatch {
	if matches, ok := p.evalCache[atom]; ok {
		return matches
	}
	matches := []PackageMatch{}
	for _, repo := range p.repos {
		if m := repo.Match(atom, true); len(m) > 0 {
			matches = m
			break
		}
	}
	p.evalCache[atom] = matches
	return matches
}

func (p *DependencyStringParser) intersectsSelected(matches []PackageMatch) bool {
	for _, m := range matches {
		if _, ok := p.selected[m]; ok {
			return true
		}
	}
	return false
}

func (p *DependencyStringParser) allSelected(deps []string) bool {
	if len(deps) == 0 {
		return false
	}
	for _, dep := range deps {
		matches := p.resolve(dep)
		if len(matches) == 0 {
			return false
		}
		for _, m := range matches {
			if _, ok := p.selected[m]; !ok {
				return false
			}
		}
	}
	return true
}

func (p *DependencyStringParser) evaluate(node *DependencyNode) (bool, []string) {
	if node.IsLeaf() {
		if p.exists(node.Atom) {
			return true, []string{node.Atom}
		}
		return false, nil
	}
	if node.Op == OpAnd {
		var deps []string
		for _, child := range node.Children {
			ok, childDeps := p.evaluate(child)
			if !ok {
				return false, nil
			}
			deps = append(deps, childDeps...)
		}
		return true, deps
	}

	if p.selected != nil {
		for _, child := range node.Children {
			if child.IsLeaf() {
				if p.intersectsSelected(p.resolve(child.Atom)) {
					return true, []string{child.Atom}
				}
				continue
			}
			if ok, deps := p.evaluate(child); ok && p.allSelected(deps) {
				return true, deps
			}
		}
	}
	for _, child := range node.Children {
		if ok, deps := p.evaluate(child); ok {
			return true, deps
		}
	}
	return false, nil
}

// Parse resolves dep and returns whether it is satisfied together with the
// plain atoms that satisfied it, in expression order.
func (p *DependencyStringParser) Parse(dep string) (bool, []string, error) {
	p.clearCache()
	root, err := ParseDependencyString(dep)
	if err != nil {
		return false, nil, err
	}
	matched, deps := p.evaluate(root)
	msg.WithField("dependency", dep).Debugf("conditional dependency matched=%v deps=%v", matched, deps)
	return matched, deps, nil
}
