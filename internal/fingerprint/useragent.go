package fingerprint

import (
	"strings"

	"github.com/ignite/advent-ledger/internal/domain"
)

type signature struct {
	label    string
	contains []string
}

// Order matters: the first matching signature wins, so narrower signatures
// must precede the broader ones they are substrings of.
var (
	tabletSignatures = []string{"ipad", "tablet", "kindle", "silk/", "playbook"}
	mobileSignatures = []string{"mobi", "iphone", "ipod", "android", "blackberry", "windows phone", "opera mini"}

	browserSignatures = []signature{
		{"Edge", []string{"edg/", "edge/", "edga/", "edgios/"}},
		{"Opera", []string{"opr/", "opera", "opios/"}},
		{"Samsung Internet", []string{"samsungbrowser"}},
		{"Firefox", []string{"firefox", "fxios"}},
		{"Chrome", []string{"chrome", "crios", "chromium"}},
		{"Safari", []string{"safari"}},
		{"Internet Explorer", []string{"msie", "trident/"}},
	}

	osSignatures = []signature{
		{"iOS", []string{"iphone", "ipad", "ipod"}},
		{"Android", []string{"android"}},
		{"Windows", []string{"windows"}},
		{"ChromeOS", []string{"cros"}},
		{"macOS", []string{"mac os x", "macintosh"}},
		{"Linux", []string{"linux"}},
	}
)

// Labels returned when no signature matches.
const (
	OtherBrowser = "Other"
	UnknownOS    = "Unknown"
)

// ClassifyDevice maps a user-agent to mobile, tablet or desktop.
// Android devices without a "mobile" token are tablets.
func ClassifyDevice(userAgent string) domain.DeviceType {
	ua := strings.ToLower(userAgent)
	if containsAny(ua, tabletSignatures) {
		return domain.DeviceTablet
	}
	if strings.Contains(ua, "android") && !strings.Contains(ua, "mobile") {
		return domain.DeviceTablet
	}
	if containsAny(ua, mobileSignatures) {
		return domain.DeviceMobile
	}
	return domain.DeviceDesktop
}

// ClassifyBrowser returns a browser label, or OtherBrowser.
func ClassifyBrowser(userAgent string) string {
	return firstMatch(strings.ToLower(userAgent), browserSignatures, OtherBrowser)
}

// ClassifyOS returns an operating system label, or UnknownOS.
func ClassifyOS(userAgent string) string {
	return firstMatch(strings.ToLower(userAgent), osSignatures, UnknownOS)
}

func firstMatch(ua string, sigs []signature, fallback string) string {
	if ua == "" {
		return fallback
	}
	for _, s := range sigs {
		if containsAny(ua, s.contains) {
			return s.label
		}
	}
	return fallback
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
