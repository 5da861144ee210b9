package logreader

import "strings"

// SegmentKind tells how a segment was produced.
type SegmentKind int

const (
	// SegmentSection marks a section header such as "stderr: ".
	SegmentSection SegmentKind = iota
	// SegmentMatch is a span matched by a registered parser.
	SegmentMatch
	// SegmentPlain is text no parser matched.
	SegmentPlain
)

// Segment is one piece of the log text in order of appearance.
type Segment struct {
	// Section is the section in effect where the segment starts. For a
	// section header it is the new section.
	Section string
	Kind    SegmentKind

	entry entry
	Match Match

	// Text holds the trimmed text of a plain segment.
	Text string
}

// segmentLog splits text into consecutive segments. Each step picks the
// earliest pending match across all entries, with ties going to the entry
// registered first. Text between matches becomes a plain segment.
func segmentLog(text string, entries []entry) []Segment {
	var (
		segments []Segment
		section  = sectionStdout
		pos      int
	)

	cursors := make([][]int, len(entries))
	for i, e := range entries {
		cursors[i] = searchFrom(e.pattern, text, 0)
	}

	for pos < len(text) {
		best := -1
		for i := range cursors {
			if cursors[i] != nil && cursors[i][0] < pos {
				cursors[i] = searchFrom(entries[i].pattern, text, pos)
			}
			if cursors[i] == nil {
				continue
			}
			if best < 0 || cursors[i][0] < cursors[best][0] {
				best = i
			}
		}

		if best < 0 {
			segments = appendPlain(segments, section, text[pos:])
			break
		}

		loc := cursors[best]
		if loc[0] > pos {
			segments = appendPlain(segments, section, text[pos:loc[0]])
			pos = loc[0]
			continue
		}

		e := entries[best]
		m := Match{text: text, loc: loc, pattern: e.pattern}
		if e.kind == kindSection {
			section = m.Group(1)
			segments = append(segments, Segment{Section: section, Kind: SegmentSection, entry: e, Match: m})
		} else {
			segments = append(segments, Segment{Section: section, Kind: SegmentMatch, entry: e, Match: m})
		}

		pos = loc[1]
		cursors[best] = searchFrom(e.pattern, text, pos)
	}

	return segments
}

func appendPlain(segments []Segment, section, text string) []Segment {
	text = strings.TrimSpace(text)
	if text == "" {
		return segments
	}
	return append(segments, Segment{Section: section, Kind: SegmentPlain, Text: text})
}
