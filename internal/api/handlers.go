package api

import (
	"context"
	"io"

	"github.com/ignite/advent-ledger/internal/domain"
	"github.com/ignite/advent-ledger/internal/service/draw"
	"github.com/ignite/advent-ledger/internal/service/ingest"
	"github.com/ignite/advent-ledger/internal/service/report"
)

// Tracker records tracking events.
type Tracker interface {
	Record(ctx context.Context, ev ingest.Event, client ingest.Client) error
}

// Reporter assembles campaign analytics.
type Reporter interface {
	Build(ctx context.Context, campaignID string, p report.Period) (*domain.Report, error)
}

// Drawer owns lead registration and winner selection.
type Drawer interface {
	Register(ctx context.Context, in draw.RegisterInput) (*draw.RegisterResult, error)
	DrawDoor(ctx context.Context, campaignID, doorID string) (*domain.Winner, error)
	GetDoorWinner(ctx context.Context, campaignID, doorID string) (*domain.Winner, error)
	DrawLanding(ctx context.Context, campaignID string, leadID *string) (*domain.LandingWinner, error)
	GetLandingWinner(ctx context.Context, campaignID string) (*domain.LandingWinner, error)
	SetLandingVisibility(ctx context.Context, campaignID string, isPublic bool) (*domain.LandingWinner, error)
	DeleteLandingWinner(ctx context.Context, campaignID string) error
}

// LeadExporter streams a campaign's leads as CSV.
type LeadExporter interface {
	Export(ctx context.Context, campaignID string, w io.Writer) (int, error)
}

// QuizEditor manages door quizzes.
type QuizEditor interface {
	List(ctx context.Context, campaignID, doorID string) ([]domain.Question, error)
	Replace(ctx context.Context, campaignID, doorID string, qs []domain.Question) ([]domain.Question, error)
	Generate(ctx context.Context, campaignID, doorID, topic string, n int) ([]domain.Question, error)
}

// Handlers contains the HTTP handlers for the engagement API.
type Handlers struct {
	tracker Tracker
	reports Reporter
	draws   Drawer
	leads   LeadExporter
	quiz    QuizEditor
}

// NewHandlers creates the handler set.
func NewHandlers(tracker Tracker, reports Reporter, draws Drawer, leads LeadExporter, quiz QuizEditor) *Handlers {
	return &Handlers{tracker: tracker, reports: reports, draws: draws, leads: leads, quiz: quiz}
}
