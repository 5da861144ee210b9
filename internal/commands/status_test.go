package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/livyctl/livyctl/internal/api"
	apimock "github.com/livyctl/livyctl/internal/api/mock"
	"github.com/livyctl/livyctl/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRunStatus(t *testing.T) {
	batch := &api.Batch{
		ID:    testBatchID,
		AppID: "application_1621903224_0001",
		State: "shutting_down",
		AppInfo: map[string]string{
			"sparkUiUrl":   "http://yarn:8088/proxy/application_1621903224_0001/",
			"driverLogUrl": "",
		},
	}

	t.Run("table", func(t *testing.T) {
		client := apimock.NewMockClient(t)
		client.On("GetBatch", mock.Anything, testBatchID).Return(batch, nil).Once()

		var out bytes.Buffer
		require.NoError(t, runStatus(context.Background(), client, &out, testBatchID, "table"))

		assert.Contains(t, out.String(), "42")
		assert.Contains(t, out.String(), "application_1621903224_0001")
		assert.Contains(t, out.String(), "Shutting Down")
		assert.Contains(t, out.String(), "sparkUiUrl")
		assert.NotContains(t, out.String(), "driverLogUrl", "empty app info is skipped")
	})

	t.Run("json", func(t *testing.T) {
		client := apimock.NewMockClient(t)
		client.On("GetBatch", mock.Anything, testBatchID).Return(batch, nil).Once()

		var out bytes.Buffer
		require.NoError(t, runStatus(context.Background(), client, &out, testBatchID, "json"))

		var got api.Batch
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		assert.Equal(t, *batch, got)
	})

	t.Run("request error", func(t *testing.T) {
		client := apimock.NewMockClient(t)
		client.On("GetBatch", mock.Anything, testBatchID).
			Return(nil, &api.RequestError{Code: 404, Reason: "Not Found"}).Once()

		err := runStatus(context.Background(), client, &bytes.Buffer{}, testBatchID, "table")
		var uiErr *ui.UIError
		require.ErrorAs(t, err, &uiErr)
		assert.Equal(t, ui.ErrorTypeAPI, uiErr.Type)
		assert.Contains(t, err.Error(), "failed to get batch 42")
	})
}

func TestRenderBatch_MissingAppID(t *testing.T) {
	out := renderBatch(&api.Batch{ID: 1, State: "starting"})
	assert.Contains(t, out, "-")
	assert.Contains(t, out, "Starting")
}
