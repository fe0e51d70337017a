package leads

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ignite/advent-ledger/internal/pkg/logger"
)

// Header is the first line of every export.
var Header = []string{"Email", "Name", "Phone", "First Entry", "Total Entries", "Doors Entered", "Wins", "Prizes Won"}

const dateLayout = "2006-01-02"

// Service exports leads.
type Service struct {
	repo Repository
}

// NewService creates a leads export service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Export writes the campaign's leads to w as RFC 4180 CSV with CRLF line
// ends. It returns the number of lead rows written.
//
// On landing campaigns the sign-up is the entry, so each lead shows one
// entry dated at registration, matching the analytics report.
func (s *Service) Export(ctx context.Context, campaignID string, w io.Writer) (int, error) {
	c, err := s.repo.GetCampaign(ctx, campaignID)
	if err != nil {
		return 0, err
	}

	rows, err := s.repo.ListRows(ctx, campaignID)
	if err != nil {
		return 0, fmt.Errorf("list leads: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(Header); err != nil {
		return 0, fmt.Errorf("write csv: %w", err)
	}
	for _, r := range rows {
		if c.IsLanding() {
			r = landingRow(r)
		}
		if err := cw.Write(record(r)); err != nil {
			return 0, fmt.Errorf("write csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("write csv: %w", err)
	}

	logger.Info("[leads] export written", "campaign_id", campaignID, "rows", len(rows))
	return len(rows), nil
}

func landingRow(r Row) Row {
	registered := r.RegisteredAt
	r.FirstEntry = &registered
	r.TotalEntries = 1
	return r
}

func record(r Row) []string {
	first := ""
	if r.FirstEntry != nil {
		first = r.FirstEntry.UTC().Format(dateLayout)
	}
	doors := make([]string, len(r.DoorNumbers))
	for i, n := range r.DoorNumbers {
		doors[i] = "Door " + strconv.Itoa(n)
	}
	return []string{
		r.Email,
		r.Name,
		r.Phone,
		first,
		strconv.Itoa(r.TotalEntries),
		strings.Join(doors, "; "),
		strconv.Itoa(r.Wins),
		strings.Join(r.Prizes, "; "),
	}
}
