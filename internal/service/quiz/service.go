package quiz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/advent-ledger/internal/domain"
	"github.com/ignite/advent-ledger/internal/pkg/logger"
)

// MaxQuestions caps the size of one door's quiz.
const MaxQuestions = 20

// Service implements quiz management.
type Service struct {
	repo Repository
	gen  Generator
	now  func() time.Time
}

// NewService creates a quiz service. gen may be nil, which disables Generate.
func NewService(repo Repository, gen Generator) *Service {
	return &Service{repo: repo, gen: gen, now: time.Now}
}

// List returns the door's questions.
func (s *Service) List(ctx context.Context, campaignID, doorID string) ([]domain.Question, error) {
	if err := s.checkDoor(ctx, campaignID, doorID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, doorID)
}

// Replace validates qs and swaps them in as the door's complete quiz. An
// empty slice clears the quiz. Positions are reassigned in slice order.
func (s *Service) Replace(ctx context.Context, campaignID, doorID string, qs []domain.Question) ([]domain.Question, error) {
	if err := s.checkDoor(ctx, campaignID, doorID); err != nil {
		return nil, err
	}
	out, err := s.normalize(doorID, qs, false)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Replace(ctx, doorID, out); err != nil {
		return nil, fmt.Errorf("replace questions: %w", err)
	}
	logger.Info("[quiz] questions replaced", "door_id", doorID, "count", len(out))
	return out, nil
}

// Generate asks the Generator for n questions on topic and stores them as
// the door's quiz.
func (s *Service) Generate(ctx context.Context, campaignID, doorID, topic string, n int) ([]domain.Question, error) {
	if s.gen == nil {
		return nil, ErrNoGenerator
	}
	if n <= 0 || n > MaxQuestions {
		return nil, &ValidationError{Index: 0, Message: fmt.Sprintf("count must be between 1 and %d", MaxQuestions)}
	}
	if err := s.checkDoor(ctx, campaignID, doorID); err != nil {
		return nil, err
	}
	qs, err := s.gen.Generate(ctx, strings.TrimSpace(topic), n)
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}
	out, err := s.normalize(doorID, qs, true)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Replace(ctx, doorID, out); err != nil {
		return nil, fmt.Errorf("replace questions: %w", err)
	}
	return out, nil
}

func (s *Service) checkDoor(ctx context.Context, campaignID, doorID string) error {
	ok, err := s.repo.DoorExists(ctx, campaignID, doorID)
	if err != nil {
		return fmt.Errorf("check door: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *Service) normalize(doorID string, qs []domain.Question, generated bool) ([]domain.Question, error) {
	if len(qs) > MaxQuestions {
		return nil, &ValidationError{Index: MaxQuestions, Message: fmt.Sprintf("at most %d questions per door", MaxQuestions)}
	}
	now := s.now().UTC()
	out := make([]domain.Question, len(qs))
	for i, q := range qs {
		q.Prompt = strings.TrimSpace(q.Prompt)
		if q.Prompt == "" {
			return nil, &ValidationError{Index: i, Message: "prompt is required"}
		}
		if !q.Type.Valid() {
			return nil, &ValidationError{Index: i, Message: fmt.Sprintf("unknown type %q", q.Type)}
		}
		if q.Type != domain.QuestionText && len(q.Options) < 2 {
			return nil, &ValidationError{Index: i, Message: "choice questions need at least two options"}
		}
		q.ID = uuid.New().String()
		q.DoorID = doorID
		q.Position = i
		q.AIGenerated = generated
		q.CreatedAt = now
		out[i] = q
	}
	return out, nil
}
