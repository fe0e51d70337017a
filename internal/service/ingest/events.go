package ingest

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// EventType discriminates the raw tracking payload.
type EventType string

const (
	TypePageView   EventType = "page_view"
	TypeDoorClick  EventType = "door_click"
	TypeDoorEnter  EventType = "door_enter"
	TypeSessionEnd EventType = "session_end"
)

// Payload is the loosely-typed JSON body posted by campaign pages.
type Payload struct {
	CalendarID string   `json:"calendarId"`
	Type       string   `json:"type"`
	DoorID     string   `json:"doorId,omitempty"`
	Referrer   string   `json:"referrer,omitempty"`
	UserAgent  string   `json:"userAgent,omitempty"`
	SessionID  string   `json:"sessionId,omitempty"`
	Duration   *float64 `json:"duration,omitempty"`
}

// Event is one validated tracking event. The set of implementations is
// closed: PageView, DoorClick, DoorEnter and SessionEnd.
type Event interface {
	Type() EventType
	Campaign() string
	isEvent()
}

// PageView is a visit to a public campaign page.
type PageView struct {
	CampaignID string `json:"calendarId" validate:"required,max=64"`
	SessionID  string `json:"sessionId" validate:"max=128"`
	Referrer   string `json:"referrer" validate:"max=2048"`
	UserAgent  string `json:"userAgent" validate:"max=1024"`
}

// DoorClick is a visitor opening a door.
type DoorClick struct {
	CampaignID string `json:"calendarId" validate:"required,max=64"`
	DoorID     string `json:"doorId" validate:"required,max=64"`
	SessionID  string `json:"sessionId" validate:"max=128"`
}

// DoorEnter is a visitor submitting the entry form behind a door.
type DoorEnter struct {
	CampaignID string `json:"calendarId" validate:"required,max=64"`
	DoorID     string `json:"doorId" validate:"required,max=64"`
	SessionID  string `json:"sessionId" validate:"max=128"`
}

// SessionEnd reports how long a page stayed open, usually sent on unload.
type SessionEnd struct {
	CampaignID string `json:"calendarId" validate:"required,max=64"`
	SessionID  string `json:"sessionId" validate:"required,max=128"`
	// Duration is in whole seconds.
	Duration int `json:"duration" validate:"gte=0,lte=86400"`
}

func (PageView) Type() EventType   { return TypePageView }
func (DoorClick) Type() EventType  { return TypeDoorClick }
func (DoorEnter) Type() EventType  { return TypeDoorEnter }
func (SessionEnd) Type() EventType { return TypeSessionEnd }

func (e PageView) Campaign() string   { return e.CampaignID }
func (e DoorClick) Campaign() string  { return e.CampaignID }
func (e DoorEnter) Campaign() string  { return e.CampaignID }
func (e SessionEnd) Campaign() string { return e.CampaignID }

func (PageView) isEvent()   {}
func (DoorClick) isEvent()  {}
func (DoorEnter) isEvent()  {}
func (SessionEnd) isEvent() {}

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

// Decode converts a raw payload into a typed event, validating exactly the
// fields its type requires.
func Decode(p Payload) (Event, error) {
	var ev Event
	switch EventType(strings.TrimSpace(p.Type)) {
	case TypePageView:
		ev = PageView{CampaignID: p.CalendarID, SessionID: p.SessionID, Referrer: p.Referrer, UserAgent: p.UserAgent}
	case TypeDoorClick:
		ev = DoorClick{CampaignID: p.CalendarID, DoorID: p.DoorID, SessionID: p.SessionID}
	case TypeDoorEnter:
		ev = DoorEnter{CampaignID: p.CalendarID, DoorID: p.DoorID, SessionID: p.SessionID}
	case TypeSessionEnd:
		if p.Duration == nil {
			return nil, &ValidationError{Field: "duration", Message: "is required"}
		}
		d := *p.Duration
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return nil, &ValidationError{Field: "duration", Message: "must be a number"}
		}
		ev = SessionEnd{CampaignID: p.CalendarID, SessionID: p.SessionID, Duration: int(math.Round(d))}
	case "":
		return nil, &ValidationError{Field: "type", Message: "is required"}
	default:
		return nil, ErrUnknownEventType
	}

	if err := getValidator().Struct(ev); err != nil {
		return nil, translate(err)
	}
	return ev, nil
}

func translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Field: "payload", Message: err.Error()}
	}
	fe := verrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "max":
		msg = "must be at most " + fe.Param() + " characters"
	case "gte":
		msg = "must be at least " + fe.Param()
	case "lte":
		msg = "must be at most " + fe.Param()
	default:
		msg = "is invalid"
	}
	return &ValidationError{Field: fe.Field(), Message: msg}
}
