// Package printer handles output formatting and display
package printer

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/fatih/color"

	"github.com/bethropolis/ignorewalk/internal/walker"
)

// Printer writes walk results to the configured output. Listing (PrintEntry)
// and dumping (PrintFile) share the same output modes.
type Printer struct {
	output         io.Writer
	count          atomic.Int64
	useColors      bool
	jsonOutput     bool
	jsonStarted    bool
	markdownOutput bool

	dirColor  *color.Color
	linkColor *color.Color
	fileColor *color.Color
}

// New creates a new Printer with default settings
func New() *Printer {
	return &Printer{
		output:    os.Stdout,
		useColors: true,
		dirColor:  color.New(color.FgBlue, color.Bold),
		linkColor: color.New(color.FgCyan),
		fileColor: color.New(color.FgCyan, color.Bold),
	}
}

// WithOutput sets the output destination
func (p *Printer) WithOutput(w io.Writer) *Printer {
	p.output = w
	return p
}

// WithColors enables or disables colored output
func (p *Printer) WithColors(enabled bool) *Printer {
	p.useColors = enabled
	return p
}

// WithJSON enables JSON output mode
func (p *Printer) WithJSON(enabled bool) *Printer {
	p.jsonOutput = enabled
	return p
}

// WithMarkdown enables Markdown output mode
func (p *Printer) WithMarkdown(enabled bool) *Printer {
	p.markdownOutput = enabled
	return p
}

// JSONEntry represents a listed path in JSON output
type JSONEntry struct {
	Path  string `json:"path"`
	Depth int    `json:"depth"`
	Type  string `json:"type"`
}

// JSONFileEntry represents a file entry in JSON output
type JSONFileEntry struct {
	Path    string `json:"path"`
	Content string `json:"content"` // Base64 encoded content
}

// PrintEntry lists one walked path.
func (p *Printer) PrintEntry(e *walker.DirEntry) {
	p.count.Add(1)

	switch {
	case p.jsonOutput:
		p.writeJSON(JSONEntry{Path: e.Path(), Depth: e.Depth(), Type: e.FileType().String()})
	case p.markdownOutput:
		indent := ""
		for i := 0; i < e.Depth(); i++ {
			indent += "  "
		}
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		fmt.Fprintf(p.output, "%s- %s\n", indent, name)
	default:
		path := e.Path()
		if p.useColors {
			switch {
			case e.IsDir():
				path = p.dirColor.Sprint(path)
			case e.FileType() == walker.TypeSymlink:
				path = p.linkColor.Sprint(path)
			}
		}
		fmt.Fprintln(p.output, path)
	}
}

// PrintFile outputs the content of a file with its path
func (p *Printer) PrintFile(relativePath string, content []byte) {
	p.count.Add(1)

	switch {
	case p.jsonOutput:
		p.writeJSON(JSONFileEntry{
			Path:    relativePath,
			Content: base64.StdEncoding.EncodeToString(content),
		})
	case p.markdownOutput:
		fmt.Fprintf(p.output, "file: %s\n\n```\n%s\n```\n\n", relativePath, content)
	default:
		name := relativePath
		if p.useColors {
			name = p.fileColor.Sprint(relativePath)
		}
		fmt.Fprintf(p.output, "%s\n%s\n\n", name, content)
	}
}

func (p *Printer) writeJSON(v interface{}) {
	jsonData, err := json.MarshalIndent(v, "  ", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}

	if !p.jsonStarted {
		fmt.Fprint(p.output, "[\n")
		p.jsonStarted = true
	} else {
		fmt.Fprint(p.output, ",\n")
	}
	fmt.Fprintf(p.output, "  %s", jsonData)
}

// Finalize completes any pending operations (like closing JSON array)
func (p *Printer) Finalize() {
	if !p.jsonOutput {
		return
	}
	if p.jsonStarted {
		fmt.Fprint(p.output, "\n]\n")
	} else {
		fmt.Fprint(p.output, "[]\n")
	}
}

// GetCount returns the number of entries or files printed
func (p *Printer) GetCount() int64 {
	return p.count.Load()
}
