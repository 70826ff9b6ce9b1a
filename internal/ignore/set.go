package ignore

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Verdict is the outcome of matching a path against one source of patterns.
type Verdict int

const (
	// None means no pattern had an opinion about the path.
	None Verdict = iota
	Ignored
	Whitelisted
)

func (v Verdict) String() string {
	switch v {
	case Ignored:
		return "ignored"
	case Whitelisted:
		return "whitelisted"
	default:
		return "none"
	}
}

// Set is an ordered, read-only list of patterns scoped to a root directory.
// It is the shape shared by a single ignore file and by the override globs.
type Set struct {
	root       string
	patterns   []*Pattern
	whitelists int
}

// Root returns the directory patterns are resolved against.
func (s *Set) Root() string { return s.root }

// Len returns the number of compiled patterns.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.patterns)
}

// NumWhitelists returns how many patterns carry whitelist polarity.
func (s *Set) NumWhitelists() int {
	if s == nil {
		return 0
	}
	return s.whitelists
}

// WithRoot returns a copy of s that resolves paths against root.
func (s *Set) WithRoot(root string) *Set {
	c := *s
	c.root = root
	return &c
}

// Match evaluates path against the set, last match wins. path is either
// absolute (and must lie below the set's root) or relative to the root.
func (s *Set) Match(path string, isDir bool) (Verdict, *Pattern) {
	if s.Len() == 0 {
		return None, nil
	}
	rel, ok := s.relative(path)
	if !ok {
		return None, nil
	}
	for i := len(s.patterns) - 1; i >= 0; i-- {
		p := s.patterns[i]
		if !p.Matches(rel, isDir) {
			continue
		}
		if p.whitelist {
			return Whitelisted, p
		}
		return Ignored, p
	}
	return None, nil
}

func (s *Set) relative(path string) (string, bool) {
	if !filepath.IsAbs(path) {
		rel := filepath.ToSlash(filepath.Clean(path))
		if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
			return "", false
		}
		return rel, true
	}

	prefix := s.root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	rel, ok := strings.CutPrefix(path, prefix)
	if !ok || rel == "" {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// Builder accumulates patterns for a Set.
type Builder struct {
	root     string
	patterns []*Pattern
}

// NewBuilder starts a Set rooted at root.
func NewBuilder(root string) *Builder {
	return &Builder{root: root}
}

// Add compiles one line. Malformed lines are rejected and leave the builder
// unchanged.
func (b *Builder) Add(line string) error {
	return b.addLine(line, "", 0)
}

func (b *Builder) addLine(line, source string, lineno int) error {
	p, err := compile(line, source, lineno)
	if err != nil {
		return err
	}
	if p != nil {
		b.patterns = append(b.patterns, p)
	}
	return nil
}

// AddFile reads an ignore file and adds every valid line of it. A read
// failure is returned as is; malformed lines are skipped and reported
// together as joined *PatternError values.
func (b *Builder) AddFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return b.AddContent(path, content)
}

// AddContent adds the lines of an ignore file already in memory.
func (b *Builder) AddContent(source string, content []byte) error {
	var errs []error
	for i, line := range strings.Split(string(normalizeContent(content)), "\n") {
		if err := b.addLine(line, source, i+1); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of patterns added so far.
func (b *Builder) Len() int { return len(b.patterns) }

// Build freezes the accumulated patterns. A relative root is made absolute
// so the Set can be matched against absolute walk paths.
func (b *Builder) Build() *Set {
	root := b.root
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	s := &Set{
		root:     root,
		patterns: append([]*Pattern(nil), b.patterns...),
	}
	for _, p := range s.patterns {
		if p.whitelist {
			s.whitelists++
		}
	}
	return s
}

// ParseFile compiles one ignore file rooted at its parent directory. The
// returned Set is nil only when the file could not be read.
func ParseFile(path string) (*Set, error) {
	b := NewBuilder(filepath.Dir(path))
	err := b.AddFile(path)
	var pe *PatternError
	if err != nil && !errors.As(err, &pe) {
		return nil, err
	}
	return b.Build(), err
}

// normalizeContent strips a UTF-8 BOM and converts CRLF/CR line endings to LF.
func normalizeContent(content []byte) []byte {
	for len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		content = content[3:]
	}
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(content, []byte("\r"), []byte("\n"))
}
