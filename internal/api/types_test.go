package api

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsActiveState(t *testing.T) {
	tcs := []struct {
		state    string
		expected bool
	}{
		{state: "starting", expected: true},
		{state: "running", expected: true},
		{state: "RUNNING", expected: true},
		{state: "Starting", expected: true},
		{state: "success", expected: false},
		{state: "dead", expected: false},
		{state: "killed", expected: false},
		{state: "not_started", expected: false},
		{state: "", expected: false},
	}

	for _, tc := range tcs {
		t.Run(tc.state, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsActiveState(tc.state))
			assert.Equal(t, !tc.expected, (&Batch{State: tc.state}).IsEnded())
		})
	}
}

func TestCreateBatchRequest_Validate(t *testing.T) {
	tcs := []struct {
		name    string
		req     CreateBatchRequest
		wantErr bool
	}{
		{name: "minimal", req: CreateBatchRequest{File: "s3://bucket/main.py"}},
		{name: "missing file", req: CreateBatchRequest{}, wantErr: true},
		{name: "blank file", req: CreateBatchRequest{File: "  "}, wantErr: true},
		{name: "negative executors", req: CreateBatchRequest{File: "main.py", NumExecutors: -1}, wantErr: true},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRequestError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &RequestError{Code: 0, Reason: "connection error", Err: cause}

	assert.Equal(t, "request error: code 0 (connection error): connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "request error: code 404 (Not Found)", (&RequestError{Code: 404, Reason: "Not Found"}).Error())
}
