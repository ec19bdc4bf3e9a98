package spans

import (
	"regexp"
)

// MatchKind tags which signature form opened a function context
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchDeclaration
	MatchArrowAssignment
	MatchMethodShorthand
	MatchObjectMethod
)

// String returns the kind name used in debug output
func (k MatchKind) String() string {
	switch k {
	case MatchDeclaration:
		return "declaration"
	case MatchArrowAssignment:
		return "arrow"
	case MatchMethodShorthand:
		return "method"
	case MatchObjectMethod:
		return "object-method"
	default:
		return "none"
	}
}

// Match is the result of matching one physical line
type Match struct {
	Kind MatchKind
	Name string
}

// Found reports whether the line opens a function context
func (m Match) Found() bool {
	return m.Kind != MatchNone
}

const ident = `[A-Za-z_$][\w$]*`

var (
	// function foo(   async function* gen(   export default function foo(
	declarationRe = regexp.MustCompile(`^\s*(?:export\s+(?:default\s+)?)?(?:async\s+)?function\s*\*?\s*(` + ident + `)\s*\(`)
	// const foo = async (a, b) => {   export let bar = x => {
	arrowRe = regexp.MustCompile(`^\s*(?:export\s+)?(?:(?:const|let|var)\s+)?(` + ident + `)\s*=\s*(?:async\s+)?(?:\([^)]*\)|` + ident + `)\s*=>\s*\{`)
	// static async foo(a) {   get value(): number {
	methodRe = regexp.MustCompile(`^\s*(?:(?:static|get|set|public|private|protected|async)\s+)*(` + ident + `)\s*\([^)]*\)\s*(?::\s*[^={]+)?\{`)
	// foo: function(   bar: async (
	objectMethodRe = regexp.MustCompile(`^\s*(` + ident + `)\s*:\s*(?:async\s+)?(?:function\s*\*?\s*)?\(`)
)

// controlKeywords are never accepted as method-shorthand names, so
// `if (x) {` and `for (...) {` do not open function contexts.
var controlKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"with": true, "function": true, "return": true, "else": true,
	"do": true, "try": true, "finally": true,
}

type lineMatcher struct {
	kind MatchKind
	re   *regexp.Regexp
	deny map[string]bool
}

// matchers are tried in order; the first hit wins
var matchers = []lineMatcher{
	{kind: MatchDeclaration, re: declarationRe},
	{kind: MatchArrowAssignment, re: arrowRe},
	{kind: MatchMethodShorthand, re: methodRe, deny: controlKeywords},
	{kind: MatchObjectMethod, re: objectMethodRe},
}

// MatchLine decides whether a single line opens a function context.
// It has no memory of other lines.
func MatchLine(line string) Match {
	for _, m := range matchers {
		groups := m.re.FindStringSubmatch(line)
		if groups == nil {
			continue
		}
		name := groups[1]
		if m.deny[name] {
			continue
		}
		return Match{Kind: m.kind, Name: name}
	}
	return Match{}
}
