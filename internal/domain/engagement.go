package domain

import "time"

// DeviceType is the coarse device class derived from a user-agent.
type DeviceType string

const (
	DeviceMobile  DeviceType = "mobile"
	DeviceTablet  DeviceType = "tablet"
	DeviceDesktop DeviceType = "desktop"
)

// TrafficSource categorises where a visitor came from.
type TrafficSource string

const (
	SourceDirect TrafficSource = "direct"
	SourceSocial TrafficSource = "social"
	SourceEmail  TrafficSource = "email"
	SourceSearch TrafficSource = "search"
	SourceOther  TrafficSource = "other"
)

// DoorAction distinguishes door-level interactions.
type DoorAction string

const (
	DoorActionClick   DoorAction = "click"
	DoorActionEntered DoorAction = "entered"
)

// CalendarView is one page-view of a public campaign page.
type CalendarView struct {
	ID          string        `json:"id" db:"id"`
	CampaignID  string        `json:"campaign_id" db:"campaign_id"`
	SessionID   string        `json:"session_id,omitempty" db:"session_id"`
	VisitorHash string        `json:"visitor_hash" db:"visitor_hash"`
	DeviceType  DeviceType    `json:"device_type" db:"device_type"`
	Browser     string        `json:"browser" db:"browser"`
	OS          string        `json:"os" db:"os"`
	Referrer    string        `json:"referrer,omitempty" db:"referrer"`
	Source      TrafficSource `json:"source" db:"source"`
	// Duration is filled in later by a session_end event; nil until then.
	Duration  *int      `json:"duration,omitempty" db:"duration"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DoorView is one door-level interaction (click or entered).
type DoorView struct {
	ID          string     `json:"id" db:"id"`
	CampaignID  string     `json:"campaign_id" db:"campaign_id"`
	DoorID      string     `json:"door_id" db:"door_id"`
	SessionID   string     `json:"session_id,omitempty" db:"session_id"`
	VisitorHash string     `json:"visitor_hash" db:"visitor_hash"`
	Action      DoorAction `json:"action" db:"action"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// AnalyticsSummary is the per-(campaign, UTC day) additive rollup.
// Exactly one row exists per (CampaignID, Date).
type AnalyticsSummary struct {
	CampaignID     string    `json:"campaign_id" db:"campaign_id"`
	Date           time.Time `json:"date" db:"date"`
	TotalViews     int       `json:"total_views" db:"total_views"`
	UniqueVisitors int       `json:"unique_visitors" db:"unique_visitors"`
	MobileViews    int       `json:"mobile_views" db:"mobile_views"`
	TabletViews    int       `json:"tablet_views" db:"tablet_views"`
	DesktopViews   int       `json:"desktop_views" db:"desktop_views"`
	DirectTraffic  int       `json:"direct_traffic" db:"direct_traffic"`
	SocialTraffic  int       `json:"social_traffic" db:"social_traffic"`
	EmailTraffic   int       `json:"email_traffic" db:"email_traffic"`
	SearchTraffic  int       `json:"search_traffic" db:"search_traffic"`
	OtherTraffic   int       `json:"other_traffic" db:"other_traffic"`
	TotalEntries   int       `json:"total_entries" db:"total_entries"`
}

// DeviceTotal returns the sum of the device bucket counters.
func (s AnalyticsSummary) DeviceTotal() int {
	return s.MobileViews + s.TabletViews + s.DesktopViews
}
