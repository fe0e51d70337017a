package domain

import "time"

// Entry is a Lead's registered participation in one Door's draw.
// A lead has at most one entry per door.
type Entry struct {
	ID        string    `json:"id" db:"id"`
	LeadID    string    `json:"lead_id" db:"lead_id"`
	DoorID    string    `json:"door_id" db:"door_id"`
	EnteredAt time.Time `json:"entered_at" db:"entered_at"`
}

// Winner is the drawn result for one Door. At most one exists per door.
type Winner struct {
	ID         string    `json:"id" db:"id"`
	DoorID     string    `json:"door_id" db:"door_id"`
	LeadID     string    `json:"lead_id" db:"lead_id"`
	EntryID    string    `json:"entry_id" db:"entry_id"`
	Notified   bool      `json:"notified" db:"notified"`
	SelectedAt time.Time `json:"selected_at" db:"selected_at"`
}

// LandingWinner is the single drawn result of a landing-format campaign.
type LandingWinner struct {
	ID         string    `json:"id" db:"id"`
	CampaignID string    `json:"campaign_id" db:"campaign_id"`
	LeadID     string    `json:"lead_id" db:"lead_id"`
	IsPublic   bool      `json:"is_public" db:"is_public"`
	SelectedAt time.Time `json:"selected_at" db:"selected_at"`
}
