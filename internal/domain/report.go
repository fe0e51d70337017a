package domain

// Report is the assembled analytics view of one campaign over a period.
// Rates are pre-formatted decimal strings so that callers never see NaN.
type Report struct {
	CampaignID           string            `json:"campaign_id"`
	Period               string            `json:"period"`
	TotalViews           int               `json:"total_views"`
	UniqueVisitors       int               `json:"unique_visitors"`
	TotalEntries         int               `json:"total_entries"`
	ConversionRate       string            `json:"conversion_rate"`
	ReturningVisitorRate string            `json:"returning_visitor_rate"`
	AvgSessionDuration   int               `json:"avg_session_duration"`
	DeviceBreakdown      map[string]int    `json:"device_breakdown"`
	TrafficSources       map[string]int    `json:"traffic_sources"`
	DoorPerformance      []DoorPerformance `json:"door_performance"`
	TopDoors             []DoorPerformance `json:"top_doors"`
	Timeline             []TimelinePoint   `json:"timeline"`
}

// DoorPerformance holds per-door engagement counters and derived rates.
type DoorPerformance struct {
	DoorID         string `json:"door_id" db:"door_id"`
	DoorNumber     int    `json:"door_number" db:"door_number"`
	Views          int    `json:"views" db:"views"`
	Clicks         int    `json:"clicks" db:"clicks"`
	Entries        int    `json:"entries" db:"entries"`
	ClickRate      string `json:"click_rate" db:"-"`
	ConversionRate string `json:"conversion_rate" db:"-"`
}

// TimelinePoint is one day of the report timeline.
type TimelinePoint struct {
	Date     string `json:"date" db:"date"`
	Views    int    `json:"views" db:"views"`
	Visitors int    `json:"visitors" db:"visitors"`
	Entries  int    `json:"entries" db:"entries"`
}
