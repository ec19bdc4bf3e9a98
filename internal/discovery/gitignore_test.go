package discovery

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitignore_Match(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		path    string
		isDir   bool
		want    bool
	}{
		// Rooted patterns
		{"Rooted build dir", "/build", "build/output.js", false, true},
		{"Rooted build exact", "/build", "build", true, true},
		{"Rooted build no match", "/build", "src/build/file.js", false, false},

		// Globstar patterns
		{"Globstar test files", "**/*.test.js", "src/utils/helper.test.js", false, true},
		{"Globstar top level", "**/*.test.js", "helper.test.js", false, true},
		{"Globstar spec files", "src/**/*.spec.ts", "src/app/service.spec.ts", false, true},
		{"Globstar deep spec", "src/**/*.spec.ts", "src/components/button/button.spec.ts", false, true},
		{"Globstar wrong root", "src/**/*.spec.ts", "lib/app/service.spec.ts", false, false},
		{"Trailing globstar", "vendor/**", "vendor/a/b.js", false, true},

		// Bracket expressions
		{"Bracket js", "*.[cm]js", "tool.mjs", false, true},
		{"Bracket negated", "*.[!c]js", "tool.cjs", false, false},
		{"Bracket no match", "*.[cm]js", "tool.js", false, false},

		// Directory patterns
		{"Dir pattern root", "**/temp/", "temp/file.js", false, true},
		{"Dir pattern nested", "**/temp/", "src/temp/data.js", false, true},
		{"Dir pattern matches dir", "generated/", "src/generated", true, true},
		{"Dir pattern skips file", "generated/", "src/generated", false, false},

		// Simple patterns
		{"Simple extension", "*.min.js", "app.min.js", false, true},
		{"Simple extension nested", "*.min.js", "public/js/app.min.js", false, true},
		{"Single char wildcard", "v?.js", "v1.js", false, true},
		{"Single char no slash", "a?b.js", "a/b.js", false, false},
		{"Plain name anywhere", "fixtures", "test/fixtures/a.js", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ParseGitignore(strings.NewReader(tt.pattern))
			require.NoError(t, err)
			require.Equal(t, 1, g.Len())

			got := g.Match(tt.path, tt.isDir)
			if got != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
			}
		})
	}
}

func TestGitignore_NegationAndOrder(t *testing.T) {
	g, err := ParseGitignore(strings.NewReader(`
# generated bundles
*.js
!keep.js
!src/**
src/legacy.js
`))
	require.NoError(t, err)
	assert.Equal(t, 4, g.Len())

	assert.True(t, g.Match("bundle.js", false))
	assert.False(t, g.Match("keep.js", false))
	assert.False(t, g.Match("src/app.js", false))
	assert.True(t, g.Match("src/legacy.js", false))
	assert.False(t, g.Match("README.md", false))
}

func TestGitignore_NilMatchesNothing(t *testing.T) {
	var g *Gitignore
	assert.False(t, g.Match("anything.js", false))
	assert.Equal(t, 0, g.Len())
}

func TestLoadGitignore(t *testing.T) {
	dir := t.TempDir()

	g, err := LoadGitignore(dir)
	require.NoError(t, err)
	assert.Equal(t, 0, g.Len())

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("tmp/\n*.gen.ts\n"), 0o644))
	g, err = LoadGitignore(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())
	assert.True(t, g.Match("api/client.gen.ts", false))
}
