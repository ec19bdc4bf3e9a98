package discovery

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ignorePattern is one compiled .gitignore line
type ignorePattern struct {
	original string
	negate   bool
	dirOnly  bool
	re       *regexp.Regexp // matches the path or anything beneath it
	exact    *regexp.Regexp // matches the path itself only
}

// Gitignore holds the patterns of one .gitignore file in file order
type Gitignore struct {
	patterns []ignorePattern
}

// LoadGitignore reads root/.gitignore. A missing file yields an empty set.
func LoadGitignore(root string) (*Gitignore, error) {
	file, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return &Gitignore{}, nil
		}
		return nil, err
	}
	defer file.Close()
	return ParseGitignore(file)
}

// ParseGitignore parses .gitignore content. Blank lines and comments are
// skipped; patterns that do not compile are ignored.
func ParseGitignore(r io.Reader) (*Gitignore, error) {
	g := &Gitignore{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if p, ok := compilePattern(line); ok {
			g.patterns = append(g.patterns, p)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

// Len returns the number of usable patterns
func (g *Gitignore) Len() int {
	if g == nil {
		return 0
	}
	return len(g.patterns)
}

// Match reports whether a slash-separated path relative to the root is
// ignored. The last matching pattern decides, so negations can re-include.
func (g *Gitignore) Match(relPath string, isDir bool) bool {
	if g == nil {
		return false
	}
	relPath = strings.TrimPrefix(filepath.ToSlash(relPath), "./")

	ignored := false
	for _, p := range g.patterns {
		if !p.re.MatchString(relPath) {
			continue
		}
		// "build/" names a directory: a plain file called build is not matched
		if p.dirOnly && !isDir && p.exact.MatchString(relPath) {
			continue
		}
		ignored = !p.negate
	}
	return ignored
}

func compilePattern(line string) (ignorePattern, bool) {
	p := ignorePattern{original: line}

	if strings.HasPrefix(line, "!") {
		p.negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if line == "" {
		return p, false
	}

	// A slash anywhere but the end anchors the pattern to the root
	anchored := strings.Contains(line, "/")
	line = strings.TrimPrefix(line, "/")

	body := globToRegex(line)
	prefix := `(?:^|/)`
	if anchored {
		prefix = `^`
	}

	re, err := regexp.Compile(prefix + body + `(?:/.*)?$`)
	if err != nil {
		return p, false
	}
	exact, err := regexp.Compile(prefix + body + `$`)
	if err != nil {
		return p, false
	}
	p.re, p.exact = re, exact
	return p, true
}

// globToRegex converts gitignore wildcards to a regular expression body
func globToRegex(glob string) string {
	var b strings.Builder
	for i := 0; i < len(glob); i++ {
		ch := glob[i]
		switch {
		case strings.HasPrefix(glob[i:], "**/"):
			b.WriteString(`(?:.*/)?`)
			i += 2
		case strings.HasPrefix(glob[i:], "**"):
			b.WriteString(`.*`)
			i++
		case ch == '*':
			b.WriteString(`[^/]*`)
		case ch == '?':
			b.WriteString(`[^/]`)
		case ch == '[':
			end := strings.IndexByte(glob[i+1:], ']')
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			class := glob[i+1 : i+1+end]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			b.WriteString("[" + class + "]")
			i += end + 1
		default:
			b.WriteString(regexp.QuoteMeta(string(ch)))
		}
	}
	return b.String()
}
