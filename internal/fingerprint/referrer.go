package fingerprint

import (
	"net/url"
	"strings"

	"github.com/ignite/advent-ledger/internal/domain"
)

// sourceRule matches a referrer host either by substring (bare keywords) or
// by exact domain / subdomain (short hosts such as t.co that would otherwise
// match unrelated hosts like microsoft.com).
type sourceRule struct {
	source   domain.TrafficSource
	contains []string
	domains  []string
}

// Checked in order. Email precedes search so that mail.google.com and
// mail.yahoo.com are attributed to email.
var sourceRules = []sourceRule{
	{
		source: domain.SourceSocial,
		contains: []string{"facebook", "instagram", "twitter", "linkedin", "pinterest",
			"tiktok", "reddit", "youtube", "snapchat", "whatsapp", "telegram"},
		domains: []string{"t.co", "x.com", "fb.com", "fb.me", "lnkd.in", "threads.net", "youtu.be"},
	},
	{
		source: domain.SourceEmail,
		contains: []string{"mail.", "webmail", "gmail", "outlook", "hotmail", "protonmail",
			"mailchimp", "list-manage", "klaviyo", "sendgrid"},
		domains: []string{"live.com", "proton.me"},
	},
	{
		source:   domain.SourceSearch,
		contains: []string{"google", "bing", "yahoo", "duckduckgo", "baidu", "yandex", "ecosia", "startpage"},
		domains:  []string{"ask.com", "search.brave.com"},
	},
}

// CategorizeReferrer maps a referrer URL to a traffic source. An empty
// referrer is direct traffic; unmatched hosts are "other".
func CategorizeReferrer(referrer string) domain.TrafficSource {
	referrer = strings.TrimSpace(referrer)
	if referrer == "" {
		return domain.SourceDirect
	}
	host := referrerHost(referrer)
	if host == "" {
		return domain.SourceOther
	}
	for _, rule := range sourceRules {
		if containsAny(host, rule.contains) || matchesDomain(host, rule.domains) {
			return rule.source
		}
	}
	return domain.SourceOther
}

func referrerHost(referrer string) string {
	raw := referrer
	if !strings.Contains(raw, "://") {
		raw = "//" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return strings.ToLower(referrer)
	}
	return strings.ToLower(u.Hostname())
}

func matchesDomain(host string, domains []string) bool {
	host = strings.TrimPrefix(host, "www.")
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
