package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
		want    Event
		field   string
	}{
		{
			name:    "page view",
			payload: Payload{Type: "page_view", CalendarID: "c1", SessionID: "s1", Referrer: "https://bing.com/"},
			want:    PageView{CampaignID: "c1", SessionID: "s1", Referrer: "https://bing.com/"},
		},
		{
			name:    "door click",
			payload: Payload{Type: "door_click", CalendarID: "c1", DoorID: "d1"},
			want:    DoorClick{CampaignID: "c1", DoorID: "d1"},
		},
		{
			name:    "door enter",
			payload: Payload{Type: "door_enter", CalendarID: "c1", DoorID: "d1", SessionID: "s1"},
			want:    DoorEnter{CampaignID: "c1", DoorID: "d1", SessionID: "s1"},
		},
		{
			name:    "session end rounds duration",
			payload: Payload{Type: "session_end", CalendarID: "c1", SessionID: "s1", Duration: ptr(41.6)},
			want:    SessionEnd{CampaignID: "c1", SessionID: "s1", Duration: 42},
		},
		{
			name:    "missing campaign",
			payload: Payload{Type: "page_view"},
			field:   "calendarId",
		},
		{
			name:    "door click without door",
			payload: Payload{Type: "door_click", CalendarID: "c1"},
			field:   "doorId",
		},
		{
			name:    "session end without session",
			payload: Payload{Type: "session_end", CalendarID: "c1", Duration: ptr(3)},
			field:   "sessionId",
		},
		{
			name:    "session end without duration",
			payload: Payload{Type: "session_end", CalendarID: "c1", SessionID: "s1"},
			field:   "duration",
		},
		{
			name:    "negative duration",
			payload: Payload{Type: "session_end", CalendarID: "c1", SessionID: "s1", Duration: ptr(-5)},
			field:   "duration",
		},
		{
			name:    "missing type",
			payload: Payload{CalendarID: "c1"},
			field:   "type",
		},
		{
			name:    "oversized referrer",
			payload: Payload{Type: "page_view", CalendarID: "c1", Referrer: strings.Repeat("a", 3000)},
			field:   "referrer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := Decode(tt.payload)
			if tt.field == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, ev)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidEvent))
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %T", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode(Payload{Type: "door_hover", CalendarID: "c1"})
	assert.ErrorIs(t, err, ErrUnknownEventType)
	assert.ErrorIs(t, err, ErrInvalidEvent)
}
