package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ignite/advent-ledger/internal/domain"
)

const (
	uaIPhone     = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	uaIPad       = "Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1"
	uaAndroid    = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	uaAndroidTab = "Mozilla/5.0 (Linux; Android 13; SM-X200) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"
	uaSamsung    = "Mozilla/5.0 (Linux; Android 13; SM-S911B) AppleWebKit/537.36 (KHTML, like Gecko) SamsungBrowser/23.0 Chrome/115.0.0.0 Mobile Safari/537.36"
	uaEdge       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.2210.61"
	uaOpera      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 OPR/105.0.0.0"
	uaChromeMac  = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	uaSafariMac  = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15"
	uaFirefox    = "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
	uaChromeOS   = "Mozilla/5.0 (X11; CrOS x86_64 14541.0.0) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	uaIE11       = "Mozilla/5.0 (Windows NT 10.0; WOW64; Trident/7.0; rv:11.0) like Gecko"
)

func TestVisitorHash(t *testing.T) {
	sum := sha256.Sum256([]byte("203.0.113.7" + uaIPhone))
	want := hex.EncodeToString(sum[:])[:16]

	got := VisitorHash("203.0.113.7", uaIPhone)
	assert.Equal(t, want, got)
	assert.Len(t, got, HashLength)

	// Same NAT address and identical UA collide by design.
	assert.Equal(t, got, VisitorHash("203.0.113.7", uaIPhone))
	// A changed address yields a new hash.
	assert.NotEqual(t, got, VisitorHash("203.0.113.8", uaIPhone))
}

func TestClassifyDevice(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want domain.DeviceType
	}{
		{"iphone", uaIPhone, domain.DeviceMobile},
		{"ipad before mobile token", uaIPad, domain.DeviceTablet},
		{"android phone", uaAndroid, domain.DeviceMobile},
		{"android tablet without mobile token", uaAndroidTab, domain.DeviceTablet},
		{"desktop chrome", uaChromeMac, domain.DeviceDesktop},
		{"empty", "", domain.DeviceDesktop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyDevice(tt.ua))
		})
	}
}

func TestClassifyBrowser(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{"edge before chrome", uaEdge, "Edge"},
		{"opera before chrome", uaOpera, "Opera"},
		{"samsung before chrome", uaSamsung, "Samsung Internet"},
		{"chrome before safari", uaChromeMac, "Chrome"},
		{"safari", uaSafariMac, "Safari"},
		{"firefox", uaFirefox, "Firefox"},
		{"ie11", uaIE11, "Internet Explorer"},
		{"curl", "curl/8.4.0", OtherBrowser},
		{"empty", "", OtherBrowser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyBrowser(tt.ua))
		})
	}
}

func TestClassifyOS(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{"ios before macos", uaIPhone, "iOS"},
		{"ipad", uaIPad, "iOS"},
		{"android before linux", uaAndroid, "Android"},
		{"windows", uaEdge, "Windows"},
		{"macos", uaSafariMac, "macOS"},
		{"linux", uaFirefox, "Linux"},
		{"chromeos", uaChromeOS, "ChromeOS"},
		{"unknown", "curl/8.4.0", UnknownOS},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyOS(tt.ua))
		})
	}
}

func TestCategorizeReferrer(t *testing.T) {
	tests := []struct {
		referrer string
		want     domain.TrafficSource
	}{
		{"", domain.SourceDirect},
		{"   ", domain.SourceDirect},
		{"https://facebook.com/some/post", domain.SourceSocial},
		{"https://l.instagram.com/?u=x", domain.SourceSocial},
		{"https://t.co/abc", domain.SourceSocial},
		{"https://mail.google.com/mail/u/0/", domain.SourceEmail},
		{"https://outlook.live.com/mail/0/inbox", domain.SourceEmail},
		{"https://mail.yahoo.com/d/folders/1", domain.SourceEmail},
		{"https://bing.com/search?q=advent", domain.SourceSearch},
		{"https://www.google.com/", domain.SourceSearch},
		{"https://duckduckgo.com/?q=x", domain.SourceSearch},
		{"https://microsoft.com/", domain.SourceOther},
		{"https://example.org/blog", domain.SourceOther},
		{"news.example.com/path", domain.SourceOther},
	}
	for _, tt := range tests {
		t.Run(tt.referrer, func(t *testing.T) {
			assert.Equal(t, tt.want, CategorizeReferrer(tt.referrer))
		})
	}
}

func TestClientAddress(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/track", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, UnknownAddress, ClientAddress(r))

	r.Header.Set("X-Real-Ip", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", ClientAddress(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", ClientAddress(r))
}

func TestFingerprint(t *testing.T) {
	v := Fingerprint("203.0.113.7", uaAndroid, "https://facebook.com/")
	assert.Equal(t, VisitorHash("203.0.113.7", uaAndroid), v.Hash)
	assert.Equal(t, domain.DeviceMobile, v.Device)
	assert.Equal(t, "Chrome", v.Browser)
	assert.Equal(t, "Android", v.OS)
	assert.Equal(t, domain.SourceSocial, v.Source)
}
