package draw

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ignite/advent-ledger/internal/domain"
	"github.com/ignite/advent-ledger/internal/pkg/logger"
	"github.com/ignite/advent-ledger/internal/pkg/metrics"
)

// Service implements registration and winner selection. All public methods
// are safe for concurrent use if the underlying repository is.
type Service struct {
	repo    Repository
	entries EntryRecorder
	pick    Picker
	now     func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithPicker replaces the crypto/rand index picker.
func WithPicker(p Picker) Option {
	return func(s *Service) { s.pick = p }
}

// WithNow replaces the wall clock used for timestamps.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a draw service. entries may be nil, in which case the
// daily entry rollup is not maintained.
func NewService(repo Repository, entries EntryRecorder, opts ...Option) *Service {
	s := &Service{repo: repo, entries: entries, pick: CryptoPicker, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// RegisterInput is a public entry form submission.
type RegisterInput struct {
	CampaignID string `json:"-" validate:"required"`
	DoorID     string `json:"doorId" validate:"max=64"`
	Email      string `json:"email" validate:"required,email,max=254"`
	Name       string `json:"name" validate:"max=200"`
	Phone      string `json:"phone" validate:"max=40"`
}

// RegisterResult describes what a registration created.
type RegisterResult struct {
	Lead    *domain.Lead `json:"lead"`
	NewLead bool         `json:"newLead"`
	// Entry is nil when no door was given.
	Entry *domain.Entry `json:"entry,omitempty"`
	// NewEntry is false when the lead had already entered this door.
	NewEntry bool `json:"newEntry"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Register upserts a lead and, when a door is given, enters it into that
// door's draw. A repeat entry for the same door is accepted and reported
// with NewEntry=false.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.DoorID = strings.TrimSpace(in.DoorID)
	if err := getValidator().Struct(in); err != nil {
		return nil, translate(err)
	}

	c, err := s.repo.GetCampaign(ctx, in.CampaignID)
	if err != nil {
		return nil, err
	}
	if in.DoorID != "" {
		if _, err := s.repo.GetDoor(ctx, c.ID, in.DoorID); err != nil {
			return nil, err
		}
	}

	lead, newLead, err := s.repo.UpsertLead(ctx, &domain.Lead{
		ID:         uuid.New().String(),
		CampaignID: c.ID,
		Email:      in.Email,
		Name:       in.Name,
		Phone:      in.Phone,
		CreatedAt:  s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("upsert lead: %w", err)
	}
	res := &RegisterResult{Lead: lead, NewLead: newLead}
	if in.DoorID == "" {
		// A landing campaign has no doors; the lead itself is the entry.
		if newLead && c.IsLanding() {
			s.recordEntry(ctx, c.ID)
		}
		return res, nil
	}

	entry := &domain.Entry{
		ID:        uuid.New().String(),
		LeadID:    lead.ID,
		DoorID:    in.DoorID,
		EnteredAt: s.now().UTC(),
	}
	created, err := s.repo.CreateEntry(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}
	res.Entry, res.NewEntry = entry, created
	if created {
		s.recordEntry(ctx, c.ID)
	}
	return res, nil
}

func (s *Service) recordEntry(ctx context.Context, campaignID string) {
	if s.entries == nil {
		return
	}
	if err := s.entries.RecordEntry(ctx, campaignID); err != nil {
		metrics.RollupFailures.Inc()
		logger.Warn("[draw] entry rollup failed", "campaign_id", campaignID, "err", err)
	}
}

// DrawDoor selects one of the door's entries uniformly at random and
// records its lead as the door's winner.
func (s *Service) DrawDoor(ctx context.Context, campaignID, doorID string) (*domain.Winner, error) {
	w, err := s.drawDoor(ctx, campaignID, doorID)
	observe("door", err)
	return w, err
}

func (s *Service) drawDoor(ctx context.Context, campaignID, doorID string) (*domain.Winner, error) {
	if _, err := s.repo.GetDoor(ctx, campaignID, doorID); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetDoorWinner(ctx, doorID); err == nil {
		return nil, ErrWinnerAlreadySelected
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check door winner: %w", err)
	}

	entries, err := s.repo.ListEntries(ctx, doorID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}

	chosen := entries[s.pick(len(entries))]
	w := &domain.Winner{
		ID:         uuid.New().String(),
		DoorID:     doorID,
		LeadID:     chosen.LeadID,
		EntryID:    chosen.ID,
		SelectedAt: s.now().UTC(),
	}
	if err := s.repo.CreateDoorWinner(ctx, w); err != nil {
		if errors.Is(err, ErrWinnerAlreadySelected) {
			return nil, err
		}
		return nil, fmt.Errorf("create door winner: %w", err)
	}

	logger.Info("[draw] door winner selected", "campaign_id", campaignID, "door_id", doorID, "entries", len(entries))
	return w, nil
}

// DrawLanding selects the campaign-wide winner of a landing campaign. When
// leadID is non-nil the organizer's choice is used instead of a random draw
// and must belong to the campaign.
func (s *Service) DrawLanding(ctx context.Context, campaignID string, leadID *string) (*domain.LandingWinner, error) {
	w, err := s.drawLanding(ctx, campaignID, leadID)
	observe("landing", err)
	return w, err
}

func (s *Service) drawLanding(ctx context.Context, campaignID string, leadID *string) (*domain.LandingWinner, error) {
	c, err := s.repo.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if !c.IsLanding() {
		return nil, ErrNotLandingCampaign
	}

	if _, err := s.repo.GetLandingWinner(ctx, campaignID); err == nil {
		return nil, ErrWinnerAlreadySelected
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check landing winner: %w", err)
	}

	var chosen string
	if leadID != nil {
		id := strings.TrimSpace(*leadID)
		if id == "" {
			return nil, &ValidationError{Field: "leadId", Message: "must not be empty"}
		}
		ok, err := s.repo.LeadInCampaign(ctx, campaignID, id)
		if err != nil {
			return nil, fmt.Errorf("check lead: %w", err)
		}
		if !ok {
			return nil, ErrLeadNotInCampaign
		}
		chosen = id
	} else {
		ids, err := s.repo.ListLeadIDs(ctx, campaignID)
		if err != nil {
			return nil, fmt.Errorf("list leads: %w", err)
		}
		if len(ids) == 0 {
			return nil, ErrNoLeads
		}
		chosen = ids[s.pick(len(ids))]
	}

	w := &domain.LandingWinner{
		ID:         uuid.New().String(),
		CampaignID: campaignID,
		LeadID:     chosen,
		SelectedAt: s.now().UTC(),
	}
	if err := s.repo.CreateLandingWinner(ctx, w); err != nil {
		if errors.Is(err, ErrWinnerAlreadySelected) {
			return nil, err
		}
		return nil, fmt.Errorf("create landing winner: %w", err)
	}

	logger.Info("[draw] landing winner selected", "campaign_id", campaignID, "forced", leadID != nil)
	return w, nil
}

// SetLandingVisibility shows or hides the landing winner on the public page.
func (s *Service) SetLandingVisibility(ctx context.Context, campaignID string, isPublic bool) (*domain.LandingWinner, error) {
	return s.repo.SetLandingVisibility(ctx, campaignID, isPublic)
}

// DeleteLandingWinner removes the landing winner, re-opening the campaign to
// a fresh draw.
func (s *Service) DeleteLandingWinner(ctx context.Context, campaignID string) error {
	if err := s.repo.DeleteLandingWinner(ctx, campaignID); err != nil {
		return err
	}
	logger.Info("[draw] landing winner deleted", "campaign_id", campaignID)
	return nil
}

// GetDoorWinner returns the door's winner or ErrNotFound.
func (s *Service) GetDoorWinner(ctx context.Context, campaignID, doorID string) (*domain.Winner, error) {
	if _, err := s.repo.GetDoor(ctx, campaignID, doorID); err != nil {
		return nil, err
	}
	return s.repo.GetDoorWinner(ctx, doorID)
}

// GetLandingWinner returns the campaign's landing winner or ErrNotFound.
func (s *Service) GetLandingWinner(ctx context.Context, campaignID string) (*domain.LandingWinner, error) {
	return s.repo.GetLandingWinner(ctx, campaignID)
}

func observe(kind string, err error) {
	outcome := "selected"
	switch {
	case err == nil:
	case errors.Is(err, ErrWinnerAlreadySelected):
		outcome = "conflict"
	case errors.Is(err, ErrNoEntries), errors.Is(err, ErrNoLeads):
		outcome = "empty"
	default:
		outcome = "rejected"
	}
	metrics.Draws.WithLabelValues(kind, outcome).Inc()
}

func translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Field: "input", Message: err.Error()}
	}
	fe := verrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "email":
		msg = "must be a valid email address"
	case "max":
		msg = "must be at most " + fe.Param() + " characters"
	default:
		msg = "is invalid"
	}
	return &ValidationError{Field: fe.Field(), Message: msg}
}
