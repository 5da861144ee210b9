package mock

// Mock for the Client interface, in the layout Mockery generates.
//
// This implements github.com/livyctl/livyctl/internal/api.Client
//
// Usage in tests:
//   mockClient := mock.NewMockClient(t)
//   mockClient.On("GetBatchState", mock.Anything, 42).Return("running", nil)
//
// To regenerate:
//   cd <repo-root> && go generate ./internal/api/mock
//
// For more information, see: https://vektra.github.io/mockery/v3.5/

//go:generate mockery

import (
	"context"

	"github.com/livyctl/livyctl/internal/api"
	"github.com/stretchr/testify/mock"
)

// MockClient is a mock implementation of api.Client
type MockClient struct {
	mock.Mock
}

var _ api.Client = (*MockClient)(nil)

// NewMockClient creates a new MockClient and registers a cleanup that asserts
// every expectation was met.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// Check provides a mock function with given fields: ctx
func (m *MockClient) Check(ctx context.Context) error {
	ret := m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for Check")
	}

	if rf, ok := ret.Get(0).(func(context.Context) error); ok {
		return rf(ctx)
	}
	return ret.Error(0)
}

// CreateBatch provides a mock function with given fields: ctx, req
func (m *MockClient) CreateBatch(ctx context.Context, req api.CreateBatchRequest) (*api.Batch, error) {
	ret := m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for CreateBatch")
	}

	if rf, ok := ret.Get(0).(func(context.Context, api.CreateBatchRequest) (*api.Batch, error)); ok {
		return rf(ctx, req)
	}

	var r0 *api.Batch
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*api.Batch)
	}
	return r0, ret.Error(1)
}

// DeleteBatch provides a mock function with given fields: ctx, batchID
func (m *MockClient) DeleteBatch(ctx context.Context, batchID int) error {
	ret := m.Called(ctx, batchID)

	if len(ret) == 0 {
		panic("no return value specified for DeleteBatch")
	}

	if rf, ok := ret.Get(0).(func(context.Context, int) error); ok {
		return rf(ctx, batchID)
	}
	return ret.Error(0)
}

// GetBatch provides a mock function with given fields: ctx, batchID
func (m *MockClient) GetBatch(ctx context.Context, batchID int) (*api.Batch, error) {
	ret := m.Called(ctx, batchID)

	if len(ret) == 0 {
		panic("no return value specified for GetBatch")
	}

	if rf, ok := ret.Get(0).(func(context.Context, int) (*api.Batch, error)); ok {
		return rf(ctx, batchID)
	}

	var r0 *api.Batch
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*api.Batch)
	}
	return r0, ret.Error(1)
}

// GetBatchState provides a mock function with given fields: ctx, batchID
func (m *MockClient) GetBatchState(ctx context.Context, batchID int) (string, error) {
	ret := m.Called(ctx, batchID)

	if len(ret) == 0 {
		panic("no return value specified for GetBatchState")
	}

	if rf, ok := ret.Get(0).(func(context.Context, int) (string, error)); ok {
		return rf(ctx, batchID)
	}
	return ret.String(0), ret.Error(1)
}

// IsBatchFinished provides a mock function with given fields: ctx, batchID
func (m *MockClient) IsBatchFinished(ctx context.Context, batchID int) (bool, error) {
	ret := m.Called(ctx, batchID)

	if len(ret) == 0 {
		panic("no return value specified for IsBatchFinished")
	}

	if rf, ok := ret.Get(0).(func(context.Context, int) (bool, error)); ok {
		return rf(ctx, batchID)
	}
	return ret.Bool(0), ret.Error(1)
}

// GetBatchLog provides a mock function with given fields: ctx, batchID, from, size
func (m *MockClient) GetBatchLog(ctx context.Context, batchID, from, size int) ([]string, error) {
	ret := m.Called(ctx, batchID, from, size)

	if len(ret) == 0 {
		panic("no return value specified for GetBatchLog")
	}

	if rf, ok := ret.Get(0).(func(context.Context, int, int, int) ([]string, error)); ok {
		return rf(ctx, batchID, from, size)
	}

	var r0 []string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}
	return r0, ret.Error(1)
}

// Host provides a mock function with no fields
func (m *MockClient) Host() string {
	ret := m.Called()

	if len(ret) == 0 {
		panic("no return value specified for Host")
	}
	return ret.String(0)
}
