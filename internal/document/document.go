package document

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sokinpui/linecut/model"
)

// Document is an in-memory text buffer split into lines. Each line keeps
// the break that ended it in the source, so rewriting the document only
// touches the lines that were removed.
type Document struct {
	lines  []string
	breaks []string
	eol    model.EOL
}

// New creates a document from lines that end with eol.
func New(lines []string, eol model.EOL) *Document {
	sep := eol.Sep()
	d := &Document{
		lines:  make([]string, len(lines)),
		breaks: make([]string, len(lines)),
		eol:    eol,
	}
	copy(d.lines, lines)
	for i := range d.breaks {
		d.breaks[i] = sep
	}
	if sep == "" && len(lines) > 1 {
		for i := range d.breaks[:len(lines)-1] {
			d.breaks[i] = "\n"
		}
	}
	return d
}

// Parse splits content into lines and detects its dominant line ending.
func Parse(content string) *Document {
	d := &Document{eol: DetectEOL(content)}
	for content != "" {
		i := strings.IndexByte(content, '\n')
		if i < 0 {
			d.lines = append(d.lines, content)
			d.breaks = append(d.breaks, "")
			break
		}
		line, br := content[:i], "\n"
		if strings.HasSuffix(line, "\r") {
			line, br = line[:len(line)-1], "\r\n"
		}
		d.lines = append(d.lines, line)
		d.breaks = append(d.breaks, br)
		content = content[i+1:]
	}
	return d
}

// DetectEOL returns the line ending used most often in content.
// Ties go to LF; content without any break is EOLNone.
func DetectEOL(content string) model.EOL {
	crlf := strings.Count(content, "\r\n")
	lf := strings.Count(content, "\n") - crlf
	switch {
	case crlf == 0 && lf == 0:
		return model.EOLNone
	case crlf > lf:
		return model.EOLCRLF
	default:
		return model.EOLLF
	}
}

func (d *Document) LineCount() int { return len(d.lines) }

func (d *Document) LineAt(i int) string { return d.lines[i] }

func (d *Document) EOL() model.EOL { return d.eol }

// Lines returns a copy of the document lines.
func (d *Document) Lines() []string {
	cp := make([]string, len(d.lines))
	copy(cp, d.lines)
	return cp
}

// String writes every line back followed by its own break.
func (d *Document) String() string {
	var b strings.Builder
	for i, line := range d.lines {
		b.WriteString(line)
		b.WriteString(d.breaks[i])
	}
	return b.String()
}

// DeleteLines removes all spans in one step. Indexes refer to the document
// as it was before the call, so the batch is immune to shifting offsets.
// Kept lines retain their original breaks.
func (d *Document) DeleteLines(spans []model.LineSpan) error {
	drop := make(map[int]struct{}, len(spans))
	for _, s := range spans {
		if s.Line < 0 || s.Line >= len(d.lines) {
			return fmt.Errorf("line %d out of range [0,%d)", s.Line, len(d.lines))
		}
		drop[s.Line] = struct{}{}
	}

	lines, breaks := d.lines[:0:0], d.breaks[:0:0]
	for i, line := range d.lines {
		if _, ok := drop[i]; !ok {
			lines = append(lines, line)
			breaks = append(breaks, d.breaks[i])
		}
	}
	d.lines, d.breaks = lines, breaks
	return nil
}

// Runs groups line indexes into contiguous [start, end) ranges, last range
// first, so callers can delete them one by one without re-indexing.
func Runs(spans []model.LineSpan) [][2]int {
	if len(spans) == 0 {
		return nil
	}
	lines := make([]int, len(spans))
	for i, s := range spans {
		lines[i] = s.Line
	}
	sort.Ints(lines)

	var runs [][2]int
	start, end := lines[0], lines[0]+1
	for _, l := range lines[1:] {
		switch {
		case l < end:
			// duplicate
		case l == end:
			end++
		default:
			runs = append(runs, [2]int{start, end})
			start, end = l, l+1
		}
	}
	runs = append(runs, [2]int{start, end})

	for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
		runs[i], runs[j] = runs[j], runs[i]
	}
	return runs
}
