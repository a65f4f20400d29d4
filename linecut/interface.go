package linecut

import (
	"github.com/sokinpui/linecut/internal/document"
	"github.com/sokinpui/linecut/internal/matcher"
	"github.com/sokinpui/linecut/model"
)

// PatternError reports a search term that is not a valid regular expression.
type PatternError = matcher.PatternError

// MatchText runs the line matcher over content. The line ending used for the
// returned text is the one content uses most.
func MatchText(content, pattern string, caseSensitive bool) (model.MatchResult, error) {
	return matcher.Match(document.Parse(content), pattern, caseSensitive)
}

// FilterText applies action to content without any editor: it returns the
// remaining document and the extracted text. Copy leaves content unchanged.
func FilterText(content, pattern string, caseSensitive bool, action model.Action) (remaining, extracted string, err error) {
	doc := document.Parse(content)
	res, err := matcher.Match(doc, pattern, caseSensitive)
	if err != nil {
		return "", "", err
	}
	if action.Deletes() {
		if err := doc.DeleteLines(res.Spans); err != nil {
			return "", "", err
		}
	}
	return doc.String(), res.Text, nil
}
