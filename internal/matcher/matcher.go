package matcher

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sokinpui/linecut/model"
)

// Document is the read-only view of a text buffer the matcher scans.
type Document interface {
	LineCount() int
	LineAt(i int) string
	EOL() model.EOL
}

// PatternError reports a search term that is not a valid regular expression.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid regular expression %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// Compile compiles pattern, ignoring case unless caseSensitive is set.
func Compile(pattern string, caseSensitive bool) (*regexp.Regexp, error) {
	expr := pattern
	if !caseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Err: err}
	}
	return re, nil
}

// Match collects every line of doc that contains a match of pattern.
// A pattern that matches the empty string matches every line.
func Match(doc Document, pattern string, caseSensitive bool) (model.MatchResult, error) {
	re, err := Compile(pattern, caseSensitive)
	if err != nil {
		return model.MatchResult{}, err
	}
	return MatchRegexp(doc, re), nil
}

// MatchRegexp is Match with an already compiled expression.
func MatchRegexp(doc Document, re *regexp.Regexp) model.MatchResult {
	var (
		spans  []model.LineSpan
		text   strings.Builder
		offset int
	)
	sep := doc.EOL().Sep()
	count := doc.LineCount()

	for i := 0; i < count; i++ {
		line := doc.LineAt(i)
		end := offset + len(line)
		if i < count-1 {
			end += len(sep)
		}

		if re.MatchString(line) {
			text.WriteString(line)
			text.WriteString(sep)
			spans = append(spans, model.LineSpan{Line: i, Start: offset, End: end})
		}
		offset = end
	}

	return model.MatchResult{Spans: spans, Text: text.String()}
}
