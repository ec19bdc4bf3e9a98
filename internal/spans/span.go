// Package spans locates function-like definitions in brace-delimited source
// text and reports the lines each one spans.
//
// Extraction is a heuristic: each line is matched against a fixed set of
// signature patterns, and a single character pass tracks lexical mode and
// brace depth to find where each matched body closes. No syntax tree is
// built, and malformed input degrades to fewer or shorter spans rather than
// an error.
package spans

// FunctionSpan describes one detected function-like definition
type FunctionSpan struct {
	Name      string `json:"name" yaml:"name"`
	StartLine int    `json:"start_line" yaml:"start_line"`
	EndLine   int    `json:"end_line" yaml:"end_line"`
	LineCount int    `json:"line_count" yaml:"line_count"`
}

func newSpan(name string, startLine, endLine int) FunctionSpan {
	return FunctionSpan{
		Name:      name,
		StartLine: startLine,
		EndLine:   endLine,
		LineCount: endLine - startLine + 1,
	}
}

// openContext is a matched signature whose closing brace has not been seen.
// depth is meaningful only once pinned is set.
type openContext struct {
	name      string
	startLine int
	depth     int
	pinned    bool
}

// lexMode is the scanner's current lexical mode; modes are exclusive
type lexMode int

const (
	modePlain lexMode = iota
	modeLineComment
	modeBlockComment
	modeSingleQuote
	modeDoubleQuote
	modeTemplate
)

// inString reports whether braces and comment openers are currently text
func (m lexMode) inString() bool {
	return m == modeSingleQuote || m == modeDoubleQuote || m == modeTemplate
}

// scanState is threaded through every line and character of one extraction
type scanState struct {
	depth    int
	mode     lexMode
	skipNext bool
	stack    []openContext
	closed   []FunctionSpan
}
