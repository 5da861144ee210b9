package logreader

import (
	"regexp"
	"strings"
)

// Match is one occurrence of a parser pattern inside the accumulated log text.
// Offsets are absolute positions in that text.
type Match struct {
	text    string
	loc     []int
	pattern *regexp.Regexp
}

// Text returns the whole matched span.
func (m Match) Text() string {
	return m.text[m.loc[0]:m.loc[1]]
}

// Start returns the offset of the first matched byte.
func (m Match) Start() int {
	return m.loc[0]
}

// End returns the offset just past the last matched byte.
func (m Match) End() int {
	return m.loc[1]
}

// Group returns capture group i, or "" when the group did not participate.
func (m Match) Group(i int) string {
	if 2*i+1 >= len(m.loc) || m.loc[2*i] < 0 {
		return ""
	}
	return m.text[m.loc[2*i]:m.loc[2*i+1]]
}

// NamedGroup returns the capture group with the given name, or "".
func (m Match) NamedGroup(name string) string {
	if m.pattern == nil {
		return ""
	}
	i := m.pattern.SubexpIndex(name)
	if i < 0 {
		return ""
	}
	return m.Group(i)
}

// searchFrom finds the first non-empty match of re starting at a line start at
// or after pos. Searches always begin on a line boundary, so ^ in a multi-line
// pattern never matches in the middle of a line.
func searchFrom(re *regexp.Regexp, text string, pos int) []int {
	for pos <= len(text) {
		start := nextLineStart(text, pos)
		if start < 0 {
			return nil
		}

		loc := re.FindStringSubmatchIndex(text[start:])
		if loc == nil {
			return nil
		}
		for i := range loc {
			if loc[i] >= 0 {
				loc[i] += start
			}
		}

		if loc[1] > loc[0] && isLineStart(text, loc[0]) {
			return loc
		}
		pos = loc[0] + 1
	}
	return nil
}

func isLineStart(text string, pos int) bool {
	return pos == 0 || text[pos-1] == '\n'
}

// nextLineStart returns pos if it is a line start, otherwise the start of the
// following line, or -1 when no line follows.
func nextLineStart(text string, pos int) int {
	if isLineStart(text, pos) {
		return pos
	}
	i := strings.IndexByte(text[pos:], '\n')
	if i < 0 {
		return -1
	}
	return pos + i + 1
}
