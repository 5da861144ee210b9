package logreader

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type segmentSummary struct {
	Section string
	Kind    SegmentKind
	Entry   string
	Text    string
}

func summarize(segments []Segment) []segmentSummary {
	out := make([]segmentSummary, 0, len(segments))
	for _, s := range segments {
		sum := segmentSummary{Section: s.Section, Kind: s.Kind, Entry: s.entry.name, Text: s.Text}
		if s.Kind != SegmentPlain {
			sum.Text = s.Match.Text()
		}
		out = append(out, sum)
	}
	return out
}

func TestSegmentLog(t *testing.T) {
	tcs := []struct {
		name  string
		lines []string
		want  []segmentSummary
	}{
		{
			name: "empty log",
			want: []segmentSummary{},
		},
		{
			name:  "plain text defaults to stdout",
			lines: []string{"hello", "world"},
			want: []segmentSummary{
				{Section: "stdout", Kind: SegmentPlain, Text: "hello\nworld"},
			},
		},
		{
			name:  "sections and default lines",
			lines: []string{"stdout: ", "hello", "21/05/01 12:34:56 DEBUG Foo: test message", "\nstderr: ", "oops"},
			want: []segmentSummary{
				{Section: "stdout", Kind: SegmentSection, Entry: "section", Text: "stdout: "},
				{Section: "stdout", Kind: SegmentPlain, Text: "hello"},
				{Section: "stdout", Kind: SegmentMatch, Entry: "default", Text: "21/05/01 12:34:56 DEBUG Foo: test message"},
				{Section: "stderr", Kind: SegmentSection, Entry: "section", Text: "stderr: "},
				{Section: "stderr", Kind: SegmentPlain, Text: "oops"},
			},
		},
		{
			name:  "whitespace-only gaps are skipped",
			lines: []string{"stdout: ", "   ", "", "\nYARN Diagnostics: ", "\t"},
			want: []segmentSummary{
				{Section: "stdout", Kind: SegmentSection, Entry: "section", Text: "stdout: "},
				{Section: "YARN Diagnostics", Kind: SegmentSection, Entry: "section", Text: "YARN Diagnostics: "},
			},
		},
		{
			name:  "section header is not matched mid-line",
			lines: []string{"note stdout: not a header"},
			want: []segmentSummary{
				{Section: "stdout", Kind: SegmentPlain, Text: "note stdout: not a header"},
			},
		},
		{
			name: "traceback between plain lines",
			lines: []string{
				"stdout: ",
				"before",
				"Traceback (most recent call last):",
				"  File \"main.py\", line 3, in <module>",
				"KeyError: 'x'",
				"after",
			},
			want: []segmentSummary{
				{Section: "stdout", Kind: SegmentSection, Entry: "section", Text: "stdout: "},
				{Section: "stdout", Kind: SegmentPlain, Text: "before"},
				{Section: "stdout", Kind: SegmentMatch, Entry: "python-traceback", Text: "Traceback (most recent call last):\n  File \"main.py\", line 3, in <module>\nKeyError: 'x'"},
				{Section: "stdout", Kind: SegmentPlain, Text: "after"},
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			got := segmentLog(strings.Join(tc.lines, "\n"), builtinEntries())
			assert.Equal(t, tc.want, summarize(got))
		})
	}
}

func TestSegmentLog_TieBreakByRegistrationOrder(t *testing.T) {
	reg := newRegistry()
	require.NoError(t, reg.add("shadow-section", regexp.MustCompile(`(?m)^stderr: .*`), func(Match) (Record, error) {
		return Record{Message: "shadow"}, nil
	}))
	require.NoError(t, reg.add("shadow-default", regexp.MustCompile(`(?m)^\d{2}/.*`), func(Match) (Record, error) {
		return Record{Message: "shadow"}, nil
	}))

	text := "stderr: \n21/05/01 12:34:56 INFO Foo: bar"
	got := summarize(segmentLog(text, reg.snapshot()))

	require.Len(t, got, 2)
	assert.Equal(t, "section", got[0].Entry)
	assert.Equal(t, "default", got[1].Entry)
	assert.Equal(t, "stderr", got[1].Section)
}

func TestSegmentLog_OverlappedMatchIsSearchedAgain(t *testing.T) {
	reg := newRegistry()
	require.NoError(t, reg.add("token", regexp.MustCompile(`(?m)^\t client token: .*`), func(Match) (Record, error) {
		return Record{Message: "token"}, nil
	}))

	lines := []string{
		"21/05/01 15:21:23 INFO Client: ",
		"\t client token: N/A",
		"\t queue: default",
		"plain",
		"\t client token: second",
	}
	got := summarize(segmentLog(strings.Join(lines, "\n"), reg.snapshot()))

	require.Len(t, got, 3)
	assert.Equal(t, "default", got[0].Entry)
	assert.Equal(t, "21/05/01 15:21:23 INFO Client: \n\t client token: N/A\n\t queue: default\nplain\n\t client token: second", strings.Join([]string{got[0].Text, got[1].Text, got[2].Text}, "\n"))
	assert.Equal(t, SegmentPlain, got[1].Kind)
	assert.Equal(t, "token", got[2].Entry)
}

func TestSegmentLog_CoversText(t *testing.T) {
	lines := []string{
		"stdout: ",
		"starting",
		"21/05/01 15:21:03 INFO SecurityManager: Changing view acls to: livy",
		"/app/job.py:10: DeprecationWarning: old api",
		"  warnings.warn(\"old api\")",
		"usage: job.py [-h] input",
		"job.py: error: the following arguments are required: input",
		"\nstderr: ",
		"[Tue May 25 08:40:24 +0800 2021] queued",
		"tail",
	}
	text := strings.Join(lines, "\n")

	var rebuilt []string
	for _, s := range segmentLog(text, builtinEntries()) {
		if s.Kind == SegmentPlain {
			rebuilt = append(rebuilt, s.Text)
			continue
		}
		rebuilt = append(rebuilt, s.Match.Text())
	}

	assert.Equal(t, strings.Join(strings.Fields(text), " "), strings.Join(strings.Fields(strings.Join(rebuilt, " ")), " "))
}

func TestSegmentLog_Idempotent(t *testing.T) {
	text := "stdout: \nhello\n21/05/01 12:34:56 DEBUG Foo: test message\n\nstderr: \noops"
	entries := builtinEntries()
	assert.Equal(t, summarize(segmentLog(text, entries)), summarize(segmentLog(text, entries)))
}

func TestSearchFrom(t *testing.T) {
	re := regexp.MustCompile(`(?m)^ab`)

	tcs := []struct {
		name string
		text string
		pos  int
		want int
	}{
		{name: "at start", text: "ab", pos: 0, want: 0},
		{name: "mid-line position skips to next line", text: "ab\nab", pos: 1, want: 3},
		{name: "no further line", text: "xxab", pos: 1, want: -1},
		{name: "position on line start", text: "x\nab", pos: 2, want: 2},
		{name: "no match", text: "xx\nyy", pos: 0, want: -1},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			loc := searchFrom(re, tc.text, tc.pos)
			if tc.want < 0 {
				assert.Nil(t, loc)
				return
			}
			require.NotNil(t, loc)
			assert.Equal(t, tc.want, loc[0])
		})
	}
}
