package quiz_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/advent-ledger/internal/domain"
	"github.com/ignite/advent-ledger/internal/service/quiz"
)

type memRepo struct {
	mu        sync.Mutex
	doors     map[string]string // door id -> campaign id
	questions map[string][]domain.Question
	failNext  error
}

func newMemRepo() *memRepo {
	return &memRepo{
		doors:     map[string]string{"d1": "c1"},
		questions: make(map[string][]domain.Question),
	}
}

func (m *memRepo) DoorExists(_ context.Context, campaignID, doorID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doors[doorID] == campaignID, nil
}

func (m *memRepo) List(_ context.Context, doorID string) ([]domain.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Question(nil), m.questions[doorID]...), nil
}

func (m *memRepo) Replace(_ context.Context, doorID string, qs []domain.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	m.questions[doorID] = append([]domain.Question(nil), qs...)
	return nil
}

type stubGenerator struct {
	topic string
	n     int
}

func (g *stubGenerator) Generate(_ context.Context, topic string, n int) ([]domain.Question, error) {
	g.topic, g.n = topic, n
	out := make([]domain.Question, n)
	for i := range out {
		out[i] = domain.Question{Type: domain.QuestionText, Prompt: "What is " + topic + "?"}
	}
	return out, nil
}

func TestReplaceSwapsWholeQuiz(t *testing.T) {
	repo := newMemRepo()
	svc := quiz.NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.Replace(ctx, "c1", "d1", []domain.Question{
		{Type: domain.QuestionSingle, Prompt: "Pick one", Options: []string{"a", "b"}, CorrectAnswer: "a"},
		{Type: domain.QuestionText, Prompt: "Why?"},
	})
	require.NoError(t, err)

	out, err := svc.Replace(ctx, "c1", "d1", []domain.Question{
		{Type: domain.QuestionMultiple, Prompt: "  Pick many ", Options: []string{"x", "y", "z"}},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Pick many", out[0].Prompt)
	assert.Equal(t, 0, out[0].Position)
	assert.Equal(t, "d1", out[0].DoorID)
	assert.NotEmpty(t, out[0].ID)

	got, err := svc.List(ctx, "c1", "d1")
	require.NoError(t, err)
	assert.Equal(t, out, got)
}

func TestReplaceValidation(t *testing.T) {
	repo := newMemRepo()
	svc := quiz.NewService(repo, nil)
	ctx := context.Background()
	require.NoError(t, repo.Replace(ctx, "d1", []domain.Question{{ID: "keep", Prompt: "old"}}))

	tests := []struct {
		name  string
		qs    []domain.Question
		index int
	}{
		{"empty prompt", []domain.Question{{Type: domain.QuestionText, Prompt: "ok"}, {Type: domain.QuestionText, Prompt: " "}}, 1},
		{"bad type", []domain.Question{{Type: "essay", Prompt: "x"}}, 0},
		{"single without options", []domain.Question{{Type: domain.QuestionSingle, Prompt: "x", Options: []string{"only"}}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Replace(ctx, "c1", "d1", tt.qs)
			require.ErrorIs(t, err, quiz.ErrInvalidInput)
			var verr *quiz.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.index, verr.Index)
		})
	}

	got, _ := repo.List(ctx, "d1")
	require.Len(t, got, 1)
	assert.Equal(t, "keep", got[0].ID, "rejected input must leave the quiz untouched")
}

func TestReplaceUnknownDoor(t *testing.T) {
	svc := quiz.NewService(newMemRepo(), nil)
	_, err := svc.Replace(context.Background(), "other", "d1", nil)
	assert.ErrorIs(t, err, quiz.ErrNotFound)
}

func TestReplaceStoreFailure(t *testing.T) {
	repo := newMemRepo()
	repo.failNext = errors.New("tx aborted")
	svc := quiz.NewService(repo, nil)
	_, err := svc.Replace(context.Background(), "c1", "d1", []domain.Question{{Type: domain.QuestionText, Prompt: "q"}})
	assert.ErrorContains(t, err, "tx aborted")
}

func TestGenerate(t *testing.T) {
	repo := newMemRepo()
	gen := &stubGenerator{}
	svc := quiz.NewService(repo, gen)

	out, err := svc.Generate(context.Background(), "c1", "d1", " gingerbread ", 3)
	require.NoError(t, err)
	assert.Equal(t, "gingerbread", gen.topic)
	require.Len(t, out, 3)
	for i, q := range out {
		assert.True(t, q.AIGenerated)
		assert.Equal(t, i, q.Position)
	}

	_, err = svc.Generate(context.Background(), "c1", "d1", "x", 0)
	assert.ErrorIs(t, err, quiz.ErrInvalidInput)

	_, err = quiz.NewService(repo, nil).Generate(context.Background(), "c1", "d1", "x", 2)
	assert.ErrorIs(t, err, quiz.ErrNoGenerator)
}
