package domain

import (
	"time"
)

// CampaignStatus enumerates the lifecycle states of a campaign.
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignScheduled CampaignStatus = "scheduled"
	CampaignActive    CampaignStatus = "active"
	CampaignCompleted CampaignStatus = "completed"
	CampaignArchived  CampaignStatus = "archived"
)

// CampaignFormat selects how a campaign is presented to visitors.
type CampaignFormat string

const (
	// FormatDoors is the classic grid of dated doors, one draw per door.
	FormatDoors CampaignFormat = "doors"
	// FormatLanding is a single landing page with one campaign-wide draw.
	FormatLanding CampaignFormat = "landing"
)

// Campaign is a published advent calendar owned by a workspace.
type Campaign struct {
	ID          string         `json:"id" db:"id"`
	WorkspaceID string         `json:"workspace_id" db:"workspace_id"`
	Title       string         `json:"title" db:"title"`
	Slug        string         `json:"slug" db:"slug"`
	Status      CampaignStatus `json:"status" db:"status"`
	Format      CampaignFormat `json:"format" db:"format"`
	StartsAt    *time.Time     `json:"starts_at" db:"starts_at"`
	EndsAt      *time.Time     `json:"ends_at" db:"ends_at"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// IsLanding reports whether the campaign uses the single landing-page format.
func (c *Campaign) IsLanding() bool {
	return c.Format == FormatLanding
}

// IsTerminal returns true if the campaign no longer accepts visitors.
func (c *Campaign) IsTerminal() bool {
	return c.Status == CampaignCompleted || c.Status == CampaignArchived
}

// Door is one dated unit of a door-grid campaign.
type Door struct {
	ID          string    `json:"id" db:"id"`
	CampaignID  string    `json:"campaign_id" db:"campaign_id"`
	DoorNumber  int       `json:"door_number" db:"door_number"`
	OpenDate    time.Time `json:"open_date" db:"open_date"`
	ProductName string    `json:"product_name,omitempty" db:"product_name"`
}

// Lead is a visitor-supplied contact record tied to a campaign.
type Lead struct {
	ID         string    `json:"id" db:"id"`
	CampaignID string    `json:"campaign_id" db:"campaign_id"`
	Email      string    `json:"email" db:"email"`
	Name       string    `json:"name,omitempty" db:"name"`
	Phone      string    `json:"phone,omitempty" db:"phone"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
