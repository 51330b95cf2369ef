package parsers

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// lineCommentPrefixes lists line-comment markers recognized when scanning
// backwards for a preceding doc comment, keyed by language.
var lineCommentPrefixes = map[string][]string{
	"javascript": {"//", "*", "/**", "/*"},
	"typescript": {"//", "*", "/**", "/*"},
	"go":         {"//"},
	"java":       {"//", "*", "/**", "/*"},
	"python":     {"#"},
}

func splitLines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}

func joinLines(lines []string) string {
	return strings.TrimSpace(strings.Join(lines, " "))
}

// trimCommentMarkers strips the leading comment syntax (`//`, `#`, `*`,
// `/**`, `"""`) and surrounding whitespace from one line of a raw comment.
func trimCommentMarkers(line string) string {
	line = strings.TrimSpace(line)
	for _, marker := range []string{"/**", "*/", "/*", "//", "#", "*", `"""`, "'''"} {
		line = strings.TrimPrefix(line, marker)
		line = strings.TrimSuffix(line, marker)
	}
	return strings.TrimSpace(line)
}

// splitTagLine splits "@param name description" into ("param", "name
// description").
func splitTagLine(line string) (tag, value string) {
	fields := strings.SplitN(line, " ", 2)
	tag = strings.TrimPrefix(fields[0], "@")
	if len(fields) == 2 {
		value = strings.TrimSpace(fields[1])
	}
	return tag, value
}

// precedingComment scans the source lines immediately above node's start
// line and returns the contiguous block of comment lines attached to it
// (stopping at the first blank or non-comment line), or "" if none. This
// avoids depending on tree-sitter exposing comments as named siblings,
// which varies across grammars; scanning raw lines works uniformly.
func precedingComment(node *sitter.Node, src []byte, lang string) string {
	if node == nil {
		return ""
	}
	prefixes := lineCommentPrefixes[lang]
	if len(prefixes) == 0 {
		return ""
	}
	lines := splitLines(string(src))
	startLine := int(node.StartPosition().Row) // 0-based
	var collected []string
	for i := startLine - 1; i >= 0; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			break
		}
		if !hasAnyPrefix(trimmed, prefixes) {
			break
		}
		collected = append([]string{lines[i]}, collected...)
	}
	if len(collected) == 0 {
		return ""
	}
	return strings.Join(collected, "\n")
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
