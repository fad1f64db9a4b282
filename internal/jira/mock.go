package jira

import (
	"context"
	"net/http"

	"github.com/awlabs/tasksync/internal/adf"
)

// MockClient is a Client for tests. Behavior is overridden per call via the
// Func fields; every call is recorded.
type MockClient struct {
	GetCommentsFunc   func(taskKey string) ([]Comment, error)
	AddCommentFunc    func(taskKey string, body adf.Node) (int, error)
	UpdateCommentFunc func(taskKey, commentID string, body adf.Node) (int, error)
	GetStatusFunc     func(taskKey string) (string, error)
	TransitionFunc    func(taskKey string, name TransitionName) (int, error)

	GetCommentsCalls []string
	AddCommentCalls  []struct {
		TaskKey string
		Body    adf.Node
	}
	UpdateCommentCalls []struct {
		TaskKey   string
		CommentID string
		Body      adf.Node
	}
	GetStatusCalls  []string
	TransitionCalls []struct {
		TaskKey string
		Name    TransitionName
	}
}

// NewMockClient creates an empty mock client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) GetComments(_ context.Context, taskKey string) ([]Comment, error) {
	m.GetCommentsCalls = append(m.GetCommentsCalls, taskKey)
	if m.GetCommentsFunc != nil {
		return m.GetCommentsFunc(taskKey)
	}
	return nil, nil
}

func (m *MockClient) AddComment(_ context.Context, taskKey string, body adf.Node) (int, error) {
	m.AddCommentCalls = append(m.AddCommentCalls, struct {
		TaskKey string
		Body    adf.Node
	}{taskKey, body})
	if m.AddCommentFunc != nil {
		return m.AddCommentFunc(taskKey, body)
	}
	return http.StatusCreated, nil
}

func (m *MockClient) UpdateComment(_ context.Context, taskKey, commentID string, body adf.Node) (int, error) {
	m.UpdateCommentCalls = append(m.UpdateCommentCalls, struct {
		TaskKey   string
		CommentID string
		Body      adf.Node
	}{taskKey, commentID, body})
	if m.UpdateCommentFunc != nil {
		return m.UpdateCommentFunc(taskKey, commentID, body)
	}
	return http.StatusOK, nil
}

func (m *MockClient) GetStatus(_ context.Context, taskKey string) (string, error) {
	m.GetStatusCalls = append(m.GetStatusCalls, taskKey)
	if m.GetStatusFunc != nil {
		return m.GetStatusFunc(taskKey)
	}
	return "To Do", nil
}

func (m *MockClient) Transition(_ context.Context, taskKey string, name TransitionName) (int, error) {
	m.TransitionCalls = append(m.TransitionCalls, struct {
		TaskKey string
		Name    TransitionName
	}{taskKey, name})
	if m.TransitionFunc != nil {
		return m.TransitionFunc(taskKey, name)
	}
	return http.StatusNoContent, nil
}
