package review

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dagenius007/pr-reviewer/internal/ai"
	"github.com/dagenius007/pr-reviewer/internal/github"
)

type mockGitHub struct {
	mock.Mock
}

func (m *mockGitHub) ListChangedFiles(ctx context.Context, owner, repo string, number int) ([]github.ChangedFile, error) {
	args := m.Called(ctx, owner, repo, number)
	files, _ := args.Get(0).([]github.ChangedFile)
	return files, args.Error(1)
}

func (m *mockGitHub) GetFileContent(ctx context.Context, owner, repo, path, ref string) (string, error) {
	args := m.Called(ctx, owner, repo, path, ref)
	return args.String(0), args.Error(1)
}

func (m *mockGitHub) PostReview(ctx context.Context, owner, repo string, number int, body string) (int64, error) {
	args := m.Called(ctx, owner, repo, number, body)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockGitHub) PostComment(ctx context.Context, owner, repo string, number int, body string) (int64, error) {
	args := m.Called(ctx, owner, repo, number, body)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockGitHub) AddLabel(ctx context.Context, owner, repo string, number int, label string) error {
	args := m.Called(ctx, owner, repo, number, label)
	return args.Error(0)
}

type mockAnalyzer struct {
	mock.Mock
}

func (m *mockAnalyzer) Analyze(ctx context.Context, filename, content string) ai.Result {
	args := m.Called(ctx, filename, content)
	return args.Get(0).(ai.Result)
}
