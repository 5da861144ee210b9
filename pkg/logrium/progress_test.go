package logrium

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStageID(t *testing.T) {
	tcs := []struct {
		raw  string
		want stageID
		ok   bool
	}{
		{raw: "3.0", want: stageID{stage: 3}, ok: true},
		{raw: "12.1", want: stageID{stage: 12, attempt: 1}, ok: true},
		{raw: "7", want: stageID{stage: 7}, ok: true},
		{raw: "x.1", ok: false},
		{raw: "1.x", ok: false},
	}

	for _, tc := range tcs {
		t.Run(tc.raw, func(t *testing.T) {
			got, ok := parseStageID(tc.raw)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestProgressHandler(t *testing.T) {
	var logs, bar bytes.Buffer
	next := NewConsoleHandler(&logs, &ConsoleOptions{Renderer: plainRenderer(t, &logs)})
	h := NewProgressHandler(next, &bar, termenv.Ascii)

	steps := []struct {
		logger     string
		msg        string
		wantActive bool
		wantDone   int
		wantTotal  int
	}{
		{logger: "YarnScheduler", msg: "Adding task set 0.0 with 2 tasks resource profile 0", wantActive: true, wantTotal: 2},
		{logger: "TaskSetManager", msg: "Finished task 0.0 in stage 0.0 (TID 0) in 812 ms on host-1 (executor 1) (1/2)", wantActive: true, wantDone: 1, wantTotal: 2},
		{logger: "SparkContext", msg: "unrelated", wantActive: true, wantDone: 1, wantTotal: 2},
		{logger: "TaskSetManager", msg: "Finished task 1.0 in stage 0.0 (TID 1) in 901 ms on host-2 (executor 2) (2/2)", wantActive: true, wantDone: 2, wantTotal: 2},
		{logger: "YarnScheduler", msg: "Removed TaskSet 0.0, whose tasks have all completed, from pool ", wantActive: false, wantDone: 2, wantTotal: 2},
	}

	for _, step := range steps {
		require.NoError(t, h.Handle(context.Background(), newRecord(slog.LevelInfo, step.logger, step.msg)))
		assert.Equal(t, step.wantActive, h.state.active, step.msg)
		assert.Equal(t, step.wantDone, h.state.done, step.msg)
		assert.Equal(t, step.wantTotal, h.state.total, step.msg)
	}

	assert.Equal(t, 5, strings.Count(logs.String(), "\n"), "every record reaches the wrapped handler")
	assert.Contains(t, bar.String(), "Stage 0.0")
	assert.Contains(t, bar.String(), "2/2\n", "finished bar stays on screen")
}

func TestProgressHandler_OlderStageIgnored(t *testing.T) {
	var out bytes.Buffer
	next := NewConsoleHandler(&out, &ConsoleOptions{Renderer: plainRenderer(t, &out)})
	h := NewProgressHandler(next, &out, termenv.Ascii)

	ctx := context.Background()
	require.NoError(t, h.Handle(ctx, newRecord(slog.LevelInfo, "YarnScheduler", "Adding task set 2.0 with 4 tasks")))
	require.NoError(t, h.Handle(ctx, newRecord(slog.LevelInfo, "TaskSetManager",
		"Finished task 0.0 in stage 1.0 (TID 0) in 10 ms on host (executor 1) (1/8)")))

	assert.Equal(t, stageID{stage: 2}, h.state.latest)
	assert.Equal(t, 0, h.state.done)
	assert.Equal(t, 4, h.state.total)

	require.NoError(t, h.Handle(ctx, newRecord(slog.LevelInfo, "livy.batch.YarnScheduler", "Adding task set 3.0 with 1 tasks")))
	assert.Equal(t, stageID{stage: 3}, h.state.latest)
	assert.Contains(t, out.String(), "Stage 2.0", "replaced bar is printed once more before switching")

	h.Close()
	assert.False(t, h.state.active)
	assert.True(t, strings.HasSuffix(out.String(), "\n"))
}
