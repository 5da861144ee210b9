package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/livyctl/livyctl/internal/api"
	apimock "github.com/livyctl/livyctl/internal/api/mock"
	"github.com/livyctl/livyctl/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func fastKillPoll(t *testing.T) {
	t.Helper()
	orig := killPollInterval
	killPollInterval = time.Millisecond
	t.Cleanup(func() { killPollInterval = orig })
}

func answer(ok bool, err error) confirmFunc {
	return func(context.Context, string) (bool, error) { return ok, err }
}

func TestRunKill(t *testing.T) {
	running := &api.Batch{ID: testBatchID, State: "running", AppID: "application_1_0001"}

	tcs := []struct {
		name        string
		opts        killOptions
		setup       func(client *apimock.MockClient)
		wantErrType *ui.ErrorType
		wantLogs    []string
	}{
		{
			name: "kill with --yes",
			opts: killOptions{BatchID: testBatchID, Yes: true},
			setup: func(client *apimock.MockClient) {
				client.On("GetBatch", mock.Anything, testBatchID).Return(running, nil).Once()
				client.On("DeleteBatch", mock.Anything, testBatchID).Return(nil).Once()
				client.On("IsBatchFinished", mock.Anything, testBatchID).Return(false, nil).Once()
				client.On("IsBatchFinished", mock.Anything, testBatchID).Return(true, nil).Once()
			},
			wantLogs: []string{
				"[INFO] livy.kill: Batch information batch_id=42 state=running app_id=application_1_0001",
				"[INFO] livy.kill: Batch is still running",
				"[INFO] livy.kill: Batch terminated",
			},
		},
		{
			name: "kill after confirmation",
			opts: killOptions{BatchID: testBatchID, Confirm: answer(true, nil)},
			setup: func(client *apimock.MockClient) {
				client.On("GetBatch", mock.Anything, testBatchID).Return(running, nil).Once()
				client.On("DeleteBatch", mock.Anything, testBatchID).Return(nil).Once()
				client.On("IsBatchFinished", mock.Anything, testBatchID).Return(true, nil).Once()
			},
			wantLogs: []string{"[INFO] livy.kill: Send kill request"},
		},
		{
			name: "declined prompt",
			opts: killOptions{BatchID: testBatchID, Confirm: answer(false, nil)},
			setup: func(client *apimock.MockClient) {
				client.On("GetBatch", mock.Anything, testBatchID).Return(running, nil).Once()
			},
			wantErrType: ptr(ui.ErrorTypeUserCancelled),
			wantLogs:    []string{"[WARNING] livy.kill: User cancellation"},
		},
		{
			name: "interrupted prompt",
			opts: killOptions{BatchID: testBatchID, Confirm: answer(false, ui.NewUserCancelledError())},
			setup: func(client *apimock.MockClient) {
				client.On("GetBatch", mock.Anything, testBatchID).Return(running, nil).Once()
			},
			wantErrType: ptr(ui.ErrorTypeUserCancelled),
		},
		{
			name: "no prompt available",
			opts: killOptions{BatchID: testBatchID},
			setup: func(client *apimock.MockClient) {
				client.On("GetBatch", mock.Anything, testBatchID).Return(running, nil).Once()
			},
			wantErrType: ptr(ui.ErrorTypeValidation),
		},
		{
			name: "batch already ended",
			opts: killOptions{BatchID: testBatchID, Yes: true},
			setup: func(client *apimock.MockClient) {
				client.On("GetBatch", mock.Anything, testBatchID).
					Return(&api.Batch{ID: testBatchID, State: "success"}, nil).Once()
			},
			wantErrType: ptr(ui.ErrorTypeValidation),
			wantLogs:    []string{"[WARNING] livy.kill: Batch is already ended state=success"},
		},
		{
			name: "delete fails",
			opts: killOptions{BatchID: testBatchID, Yes: true},
			setup: func(client *apimock.MockClient) {
				client.On("GetBatch", mock.Anything, testBatchID).Return(running, nil).Once()
				client.On("DeleteBatch", mock.Anything, testBatchID).
					Return(&api.RequestError{Code: 403, Reason: "Forbidden"}).Once()
			},
			wantErrType: ptr(ui.ErrorTypeAPI),
			wantLogs:    []string{"[ERROR] livy.kill: Failed to kill batch code=403 reason=Forbidden"},
		},
		{
			name: "batch not found",
			opts: killOptions{BatchID: testBatchID, Yes: true},
			setup: func(client *apimock.MockClient) {
				client.On("GetBatch", mock.Anything, testBatchID).
					Return(nil, &api.RequestError{Code: 404, Reason: "Not Found"}).Once()
			},
			wantErrType: ptr(ui.ErrorTypeAPI),
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			fastKillPoll(t)
			logs := captureLogs(t)
			client := apimock.NewMockClient(t)
			tc.setup(client)

			err := runKill(context.Background(), client, testConfig(), tc.opts)

			if tc.wantErrType == nil {
				require.NoError(t, err)
			} else {
				var uiErr *ui.UIError
				require.True(t, errors.As(err, &uiErr), "expected UIError, got %v", err)
				assert.Equal(t, *tc.wantErrType, uiErr.Type)
			}
			for _, want := range tc.wantLogs {
				assert.Contains(t, logs.String(), want)
			}
		})
	}
}

func TestRunKill_InterruptWhileMonitoring(t *testing.T) {
	orig := killPollInterval
	killPollInterval = time.Hour
	t.Cleanup(func() { killPollInterval = orig })
	captureLogs(t)

	ctx, cancel := context.WithCancel(context.Background())
	client := apimock.NewMockClient(t)
	client.On("GetBatch", mock.Anything, testBatchID).
		Return(&api.Batch{ID: testBatchID, State: "running"}, nil).Once()
	client.On("DeleteBatch", mock.Anything, testBatchID).Return(nil).Once()
	client.On("IsBatchFinished", mock.Anything, testBatchID).
		Run(func(mock.Arguments) { cancel() }).
		Return(false, nil).Once()

	done := make(chan error, 1)
	go func() {
		done <- runKill(ctx, client, testConfig(), killOptions{BatchID: testBatchID, Yes: true})
	}()

	select {
	case err := <-done:
		assert.Equal(t, "Keyboard interrupt", err.Error())
	case <-time.After(5 * time.Second):
		t.Fatal("kill did not stop after cancellation")
	}
}

func ptr[T any](v T) *T {
	return &v
}
