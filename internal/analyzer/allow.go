package analyzer

import (
	"path"
	"strings"
)

// AllowRule excuses a file, or one function within matching files
type AllowRule struct {
	Raw      string
	Pattern  string
	Function string // empty means every function in the file
}

// AllowList is an ordered set of allow rules
type AllowList []AllowRule

// ParseAllowList parses entries of the form "glob" or "glob:function".
// Blank entries are skipped.
func ParseAllowList(entries []string) AllowList {
	var list AllowList
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		rule := AllowRule{Raw: entry, Pattern: entry}
		if i := strings.LastIndex(entry, ":"); i >= 0 {
			rule.Pattern = entry[:i]
			rule.Function = entry[i+1:]
		}
		rule.Pattern = strings.TrimPrefix(rule.Pattern, "./")
		list = append(list, rule)
	}
	return list
}

// Match returns the first rule covering the function name in the file
func (l AllowList) Match(relPath, name string) (string, bool) {
	relPath = strings.TrimPrefix(relPath, "./")
	for _, rule := range l {
		if rule.Function != "" && rule.Function != name {
			continue
		}
		if rule.matchesPath(relPath) {
			return rule.Raw, true
		}
	}
	return "", false
}

func (r AllowRule) matchesPath(relPath string) bool {
	if r.Pattern == "" || r.Pattern == "*" {
		return true
	}
	if ok, err := path.Match(r.Pattern, relPath); err == nil && ok {
		return true
	}
	// a pattern written relative to a parent directory still applies
	return relPath == r.Pattern || strings.HasSuffix(relPath, "/"+r.Pattern)
}
