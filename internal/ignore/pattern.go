package ignore

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
)

// Pattern is one compiled line of gitignore syntax.
type Pattern struct {
	original  string
	glob      string // doublestar expression matched against slash-separated relative paths
	source    string
	line      int
	whitelist bool
	anchored  bool
	dirOnly   bool
}

// Compile compiles a single gitignore-style line. Blank lines and comments
// yield a nil Pattern and a nil error.
func Compile(line string) (*Pattern, error) {
	return compile(line, "", 0)
}

func compile(line, source string, lineno int) (*Pattern, error) {
	original := line
	line = trimTrailingWhitespace(line)
	if line == "" || line[0] == '#' {
		return nil, nil
	}

	invalid := func(reason string) error {
		return &PatternError{Glob: original, Source: source, Line: lineno, Reason: reason}
	}

	p := &Pattern{original: original, source: source, line: lineno}

	// "\!" stays escaped in the glob, doublestar treats it as a literal bang
	if line[0] == '!' {
		p.whitelist = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.anchored = true
		line = line[1:]
	} else if strings.Contains(line, "/") {
		p.anchored = true
	}
	if line == "" {
		return nil, invalid("pattern is empty")
	}
	if oddTrailingBackslashes(line) {
		return nil, invalid("trailing backslash escapes nothing")
	}

	glob := line
	if strings.HasSuffix(glob, "/**") {
		// "dir/**" matches everything inside dir but not dir itself
		glob += "/*"
	}
	if !p.anchored && !strings.HasPrefix(glob, "**/") {
		glob = "**/" + glob
	}
	glob = escapeInvalidUTF8(glob)
	if !doublestar.ValidatePattern(glob) {
		return nil, invalid("malformed glob (unbalanced brackets?)")
	}
	p.glob = glob
	return p, nil
}

// Matches reports whether rel, a slash-separated path relative to the
// pattern's directory, is matched by the glob.
func (p *Pattern) Matches(rel string, isDir bool) bool {
	if p.dirOnly && !isDir {
		return false
	}
	ok, err := doublestar.Match(p.glob, escapeInvalidUTF8(rel))
	return err == nil && ok
}

func (p *Pattern) Original() string  { return p.original }
func (p *Pattern) Source() string    { return p.source }
func (p *Pattern) Line() int         { return p.line }
func (p *Pattern) IsWhitelist() bool { return p.whitelist }
func (p *Pattern) IsAnchored() bool  { return p.anchored }
func (p *Pattern) IsDirOnly() bool   { return p.dirOnly }

// String returns a debug representation such as "!keep.txt [whitelist] @.gitignore:3".
func (p *Pattern) String() string {
	var flags []string
	if p.whitelist {
		flags = append(flags, "whitelist")
	}
	if p.dirOnly {
		flags = append(flags, "dirOnly")
	}
	if p.anchored {
		flags = append(flags, "anchored")
	}

	s := p.original
	if len(flags) > 0 {
		s += " [" + strings.Join(flags, ",") + "]"
	}
	if p.source != "" {
		s += " @" + p.source
		if p.line > 0 {
			s += ":" + strconv.Itoa(p.line)
		}
	}
	return s
}

// trimTrailingWhitespace drops trailing spaces and tabs. A space escaped with
// a backslash is kept and the backslash removed.
func trimTrailingWhitespace(line string) string {
	end := len(line)
	for end > 0 && (line[end-1] == ' ' || line[end-1] == '\t') {
		end--
	}
	if end == len(line) {
		return line
	}

	bs := 0
	for i := end - 1; i >= 0 && line[i] == '\\'; i-- {
		bs++
	}
	if bs%2 == 1 && line[end] == ' ' {
		return line[:end-1] + " "
	}
	return line[:end]
}

// rawByteBase is where bytes that are not valid UTF-8 are mapped into the
// private use area. doublestar would decode all of them to U+FFFD.
const rawByteBase = 0xF700

// escapeInvalidUTF8 replaces every byte that is not part of a valid UTF-8
// sequence with its own rune so that names differing only in such bytes
// still match differently.
func escapeInvalidUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 8)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			sb.WriteRune(rawByteBase + rune(s[i]))
		} else {
			sb.WriteString(s[i : i+size])
		}
		i += size
	}
	return sb.String()
}

func oddTrailingBackslashes(s string) bool {
	bs := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		bs++
	}
	return bs%2 == 1
}
