// Package grasp classifies the servers announced by a repository event. A
// combined ("GRASP") server is an endpoint that serves git over HTTP and acts
// as a relay for the same repository; callers pick those for pushes instead
// of a read-only relay.
package grasp

import (
	"net/url"
	"strings"

	"github.com/nbd-wtf/go-nostr"
)

// Detection is the classification of a repository announcement's servers.
// Order follows the input tags; malformed URLs never error, they just don't
// match.
type Detection struct {
	CombinedServers []string `json:"combinedServers"`
	PlainRelays     []string `json:"plainRelays"`
	CloneURLs       []string `json:"cloneUrls"`
}

// host parses a URL and returns its hostname, defaulting the scheme to wss://
// when none is given. Empty return means the value was unparseable.
func host(raw string, defaultScheme string) string {
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = defaultScheme + "://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// FromTags correlates the clone and relays tags of a repository announcement.
// A clone URL whose host also appears among the relay values is a combined
// server; relay values with no matching clone host are plain relays. Clone
// and relays tags may carry multiple values per tag.
func FromTags(tags nostr.Tags) Detection {
	var cloneURLs, relayURLs []string
	for _, tag := range tags {
		if len(tag) < 2 {
			continue
		}
		switch tag[0] {
		case "clone":
			cloneURLs = append(cloneURLs, tag[1:]...)
		case "relays":
			relayURLs = append(relayURLs, tag[1:]...)
		}
	}

	relayHosts := make(map[string]bool, len(relayURLs))
	for _, relay := range relayURLs {
		if h := host(relay, "wss"); h != "" {
			relayHosts[h] = true
		}
	}
	cloneHosts := make(map[string]bool, len(cloneURLs))
	for _, clone := range cloneURLs {
		if h := host(clone, "https"); h != "" {
			cloneHosts[h] = true
		}
	}

	det := Detection{CloneURLs: cloneURLs}
	for _, clone := range cloneURLs {
		if h := host(clone, "https"); h != "" && relayHosts[h] {
			det.CombinedServers = append(det.CombinedServers, clone)
		}
	}
	for _, relay := range relayURLs {
		h := host(relay, "wss")
		if h == "" || !cloneHosts[h] {
			det.PlainRelays = append(det.PlainRelays, relay)
		}
	}
	return det
}
