package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignite/advent-ledger/internal/domain"
	"github.com/ignite/advent-ledger/internal/service/leads"
)

// LeadsRepo implements leads.Repository against PostgreSQL.
type LeadsRepo struct {
	db        *sqlx.DB
	campaigns *CampaignRepo
}

// NewLeadsRepo creates a Postgres-backed leads export repository.
func NewLeadsRepo(db *sqlx.DB) *LeadsRepo {
	return &LeadsRepo{db: db, campaigns: NewCampaignRepo(db)}
}

func (r *LeadsRepo) GetCampaign(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	return r.campaigns.Get(ctx, campaignID, leads.ErrNotFound)
}

type leadRow struct {
	Email        string         `db:"email"`
	Name         string         `db:"name"`
	Phone        string         `db:"phone"`
	CreatedAt    time.Time      `db:"created_at"`
	FirstEntry   *time.Time     `db:"first_entry"`
	TotalEntries int            `db:"total_entries"`
	Doors        pq.Int64Array  `db:"doors"`
	Wins         int            `db:"wins"`
	Prizes       pq.StringArray `db:"prizes"`
}

func (r *LeadsRepo) ListRows(ctx context.Context, campaignID string) ([]leads.Row, error) {
	var rows []leadRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT l.email, l.name, l.phone, l.created_at,
		       (SELECT MIN(e.entered_at) FROM entries e WHERE e.lead_id = l.id) AS first_entry,
		       (SELECT COUNT(*) FROM entries e WHERE e.lead_id = l.id) AS total_entries,
		       ARRAY(
		           SELECT d.door_number FROM entries e JOIN doors d ON d.id = e.door_id
		           WHERE e.lead_id = l.id ORDER BY d.door_number
		       ) AS doors,
		       (SELECT COUNT(*) FROM door_winners w WHERE w.lead_id = l.id)
		         + (SELECT COUNT(*) FROM landing_winners lw WHERE lw.lead_id = l.id) AS wins,
		       ARRAY(
		           SELECT d.product_name FROM door_winners w JOIN doors d ON d.id = w.door_id
		           WHERE w.lead_id = l.id AND d.product_name <> '' ORDER BY d.door_number
		       ) AS prizes
		FROM leads l
		WHERE l.campaign_id = $1
		ORDER BY l.created_at, l.id
	`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list lead rows: %w", err)
	}

	out := make([]leads.Row, len(rows))
	for i, lr := range rows {
		doors := make([]int, len(lr.Doors))
		for j, n := range lr.Doors {
			doors[j] = int(n)
		}
		out[i] = leads.Row{
			Email:        lr.Email,
			Name:         lr.Name,
			Phone:        lr.Phone,
			RegisteredAt: lr.CreatedAt,
			FirstEntry:   lr.FirstEntry,
			TotalEntries: lr.TotalEntries,
			DoorNumbers:  doors,
			Wins:         lr.Wins,
			Prizes:       []string(lr.Prizes),
		}
	}
	return out, nil
}
