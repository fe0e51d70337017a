// Package fingerprint derives an anonymous visitor identity and coarse client
// classification from the network address, user-agent and referrer of a
// public campaign page request.
//
// The visitor hash is an approximate identifier. Two visitors behind the same
// NAT address with identical user-agents collide, and a visitor whose address
// changes gets a new hash. Unique visitor counts built on it are estimates.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/ignite/advent-ledger/internal/domain"
)

// UnknownAddress is used when no forwarding header carries the client address.
const UnknownAddress = "unknown"

// HashLength is the number of hex characters kept from the SHA-256 digest.
const HashLength = 16

// Visitor bundles everything derived from one request.
type Visitor struct {
	Hash    string
	Device  domain.DeviceType
	Browser string
	OS      string
	Source  domain.TrafficSource
}

// Fingerprint classifies a visitor from its address, user-agent and referrer.
func Fingerprint(addr, userAgent, referrer string) Visitor {
	return Visitor{
		Hash:    VisitorHash(addr, userAgent),
		Device:  ClassifyDevice(userAgent),
		Browser: ClassifyBrowser(userAgent),
		OS:      ClassifyOS(userAgent),
		Source:  CategorizeReferrer(referrer),
	}
}

// VisitorHash returns the first 16 hex characters of SHA-256(addr ∥ userAgent).
func VisitorHash(addr, userAgent string) string {
	sum := sha256.Sum256([]byte(addr + userAgent))
	return hex.EncodeToString(sum[:])[:HashLength]
}

// ClientAddress extracts the visitor address from proxy headers. The first
// X-Forwarded-For hop wins, then X-Real-Ip, then UnknownAddress.
func ClientAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx >= 0 {
			xff = xff[:idx]
		}
		if ip := strings.TrimSpace(xff); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-Ip")); xri != "" {
		return xri
	}
	return UnknownAddress
}
