package service

import (
	"net/url"
	"strings"

	"github.com/asaskevich/govalidator"
)

// deniedDomains are hosts that never carry usable nutrition tables:
// storefronts, social networks and video sites. Matching is by substring
// against the hostname, so regional variants (amazon.de, amazon.com.tr)
// are caught too.
var deniedDomains = []string{
	"youtube",
	"facebook",
	"instagram",
	"twitter",
	"tiktok",
	"pinterest",
	"reddit",
	"linkedin",
	"amazon",
	"ebay",
}

// imageExtensions are path suffixes for direct image links, which can show
// up in search results but cannot be extracted from.
var imageExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".bmp", ".ico",
}

// filterCandidates removes unusable search-result URLs while preserving
// order, then truncates to maxCandidates. An empty result means the request
// fails immediately with "no suitable pages"; there is no search retry.
func filterCandidates(urls []string) []string {
	var filtered []string
	for _, raw := range urls {
		if !usableCandidate(raw) {
			continue
		}
		filtered = append(filtered, raw)
		if len(filtered) == maxCandidates {
			break
		}
	}
	return filtered
}

func usableCandidate(raw string) bool {
	if !govalidator.IsURL(raw) {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return false
	}

	host := strings.ToLower(u.Hostname())
	// x.com needs an exact match; a substring would catch unrelated hosts.
	if host == "x.com" || strings.HasSuffix(host, ".x.com") {
		return false
	}
	for _, denied := range deniedDomains {
		if strings.Contains(host, denied) {
			return false
		}
	}

	path := strings.ToLower(u.Path)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}

	return true
}
