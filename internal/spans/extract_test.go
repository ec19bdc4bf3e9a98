package spans

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func src(lines ...string) string {
	return strings.Join(lines, "\n")
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []FunctionSpan
	}{
		{
			name:  "empty input",
			input: "",
			want:  []FunctionSpan{},
		},
		{
			name:  "one line arrow",
			input: "const add = (a, b) => { return a + b; };",
			want:  []FunctionSpan{{Name: "add", StartLine: 1, EndLine: 1, LineCount: 1}},
		},
		{
			name: "three line declaration",
			input: src(
				"function greet(name) {",
				`  return "hi " + name;`,
				"}",
			),
			want: []FunctionSpan{{Name: "greet", StartLine: 1, EndLine: 3, LineCount: 3}},
		},
		{
			name: "nested functions close inner first",
			input: src(
				"function outer() {",
				"  const inner = () => {",
				"    return 1;",
				"  };",
				"  return inner();",
				"}",
			),
			want: []FunctionSpan{
				{Name: "inner", StartLine: 2, EndLine: 4, LineCount: 3},
				{Name: "outer", StartLine: 1, EndLine: 6, LineCount: 6},
			},
		},
		{
			name: "control flow braces are not functions",
			input: src(
				"function check(x) {",
				"  if (x) {",
				"    for (const y of x) {",
				"      use(y);",
				"    }",
				"  } else {",
				"    return null;",
				"  }",
				"}",
			),
			want: []FunctionSpan{{Name: "check", StartLine: 1, EndLine: 9, LineCount: 9}},
		},
		{
			name: "line comment hides braces",
			input: src(
				"function f() { // }}} closing noise",
				"  // { more noise",
				"  return 1;",
				"}",
			),
			want: []FunctionSpan{{Name: "f", StartLine: 1, EndLine: 4, LineCount: 4}},
		},
		{
			name: "single and double quoted braces",
			input: src(
				"function q() {",
				`  const a = '}';`,
				`  const b = "{{";`,
				"  return a + b;",
				"}",
			),
			want: []FunctionSpan{{Name: "q", StartLine: 1, EndLine: 5, LineCount: 5}},
		},
		{
			name: "other quote inside string is text",
			input: src(
				"function q() {",
				`  const a = "it's }";`,
				`  const b = 'say "}" twice';`,
				"}",
			),
			want: []FunctionSpan{{Name: "q", StartLine: 1, EndLine: 4, LineCount: 4}},
		},
		{
			name: "escaped quote keeps string open",
			input: src(
				"function esc() {",
				`  const s = "a \" }";`,
				"}",
			),
			want: []FunctionSpan{{Name: "esc", StartLine: 1, EndLine: 3, LineCount: 3}},
		},
		{
			name: "template braces and interpolation are opaque",
			input: src(
				"function render(x) {",
				"  return `${x} } and ${ {a: 1}.a }",
				"    }} {",
				"  `;",
				"}",
			),
			want: []FunctionSpan{{Name: "render", StartLine: 1, EndLine: 5, LineCount: 5}},
		},
		{
			name: "block comment then string brace",
			input: src(
				"/* header {",
				" * still a comment }",
				" */",
				"function f() {",
				`  const s = "}";`,
				"}",
			),
			want: []FunctionSpan{{Name: "f", StartLine: 4, EndLine: 6, LineCount: 3}},
		},
		{
			name: "inline block comment",
			input: src(
				"function f() { /* } */",
				"  return /* { */ 1;",
				"}",
			),
			want: []FunctionSpan{{Name: "f", StartLine: 1, EndLine: 3, LineCount: 3}},
		},
		{
			name: "class methods",
			input: src(
				"class Foo {",
				"  constructor(x) {",
				"    this.x = x;",
				"  }",
				"  async load() {",
				"    if (this.x) {",
				"      return 1;",
				"    }",
				"  }",
				"}",
			),
			want: []FunctionSpan{
				{Name: "constructor", StartLine: 2, EndLine: 4, LineCount: 3},
				{Name: "load", StartLine: 5, EndLine: 9, LineCount: 5},
			},
		},
		{
			name: "object literal method",
			input: src(
				"const api = {",
				"  fetch: function (id) {",
				"    return id;",
				"  },",
				"};",
			),
			want: []FunctionSpan{{Name: "fetch", StartLine: 2, EndLine: 4, LineCount: 3}},
		},
		{
			name: "declaration with brace on next line",
			input: src(
				"function late(a)",
				"{",
				"  return a;",
				"}",
			),
			want: []FunctionSpan{{Name: "late", StartLine: 1, EndLine: 4, LineCount: 4}},
		},
		{
			name: "crlf line endings",
			input: "function w() {\r\n  return 1;\r\n}\r\n",
			want:  []FunctionSpan{{Name: "w", StartLine: 1, EndLine: 3, LineCount: 3}},
		},
		{
			name:  "final line without newline",
			input: "function f() {\n}",
			want:  []FunctionSpan{{Name: "f", StartLine: 1, EndLine: 2, LineCount: 2}},
		},
		{
			name: "unterminated function is dropped",
			input: src(
				"function open() {",
				"  return 1;",
			),
			want: []FunctionSpan{},
		},
		{
			name: "unterminated string suppresses the rest",
			input: src(
				"function broken() {",
				`  const s = "never closed;`,
				"}",
			),
			want: []FunctionSpan{},
		},
		{
			name: "unterminated block comment suppresses the rest",
			input: src(
				"function a() {",
				"}",
				"/* trailing",
				"function b() {",
				"}",
			),
			want: []FunctionSpan{{Name: "a", StartLine: 1, EndLine: 2, LineCount: 2}},
		},
		{
			name: "stray closing brace shifts depth",
			input: src(
				"}",
				"function f() {",
				"}",
			),
			want: []FunctionSpan{{Name: "f", StartLine: 2, EndLine: 3, LineCount: 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_SharedDepthLastPushedWins(t *testing.T) {
	// Both contexts are still unpinned when the brace on line 2 arrives, so
	// both are pinned to depth 1. The close pairs with the last one pushed.
	input := src(
		"function a()",
		"function b() {",
		"}",
	)

	got := Extract(input)

	require.Len(t, got, 1)
	assert.Equal(t, FunctionSpan{Name: "b", StartLine: 2, EndLine: 3, LineCount: 2}, got[0])
}

func TestExtract_SharedDepthLeftoverClosesLater(t *testing.T) {
	input := src(
		"function a()",
		"function b() {",
		"}",
		"{",
		"}",
	)

	got := Extract(input)

	// The second block reaches depth 1 again and closes the leftover context
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Name)
	assert.Equal(t, FunctionSpan{Name: "a", StartLine: 1, EndLine: 5, LineCount: 5}, got[1])
}

func TestExtract_SpanInvariants(t *testing.T) {
	input := src(
		"import x from 'y';",
		"export async function main(argv) {",
		"  const parse = (s) => {",
		"    return s.split(',');",
		"  };",
		"  const obj = {",
		"    run: async function () {",
		"      return `${parse('a,b')}`;",
		"    },",
		"    stop() {",
		"      // }",
		"    },",
		"  };",
		"  return obj;",
		"}",
	)

	got := Extract(input)

	require.Len(t, got, 4)
	for _, span := range got {
		assert.LessOrEqual(t, span.StartLine, span.EndLine, span.Name)
		assert.GreaterOrEqual(t, span.StartLine, 1, span.Name)
		assert.Equal(t, span.EndLine-span.StartLine+1, span.LineCount, span.Name)
	}
	assert.Equal(t, []string{"parse", "run", "stop", "main"}, names(got))
}

func TestExtract_Deterministic(t *testing.T) {
	input := src(
		"function a() {",
		"  const b = () => {",
		"  };",
		"}",
	)

	first := Extract(input)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Extract(input))
	}
}

func TestExtractReader(t *testing.T) {
	got, err := ExtractReader(strings.NewReader("function f() {\n  return 1;\n}\n"))
	require.NoError(t, err)
	assert.Equal(t, []FunctionSpan{{Name: "f", StartLine: 1, EndLine: 3, LineCount: 3}}, got)
}

func TestExtractReader_ReadError(t *testing.T) {
	boom := errors.New("boom")

	got, err := ExtractReader(iotest.ErrReader(boom))

	require.ErrorIs(t, err, boom)
	assert.Nil(t, got)
}

func names(spans []FunctionSpan) []string {
	out := make([]string, len(spans))
	for i, s := range spans {
		out[i] = s.Name
	}
	return out
}
