package utils

import (
	"net/url"
	"strings"
)

func IsLocalhost(serverURL string) bool {
	u, err := url.Parse(serverURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

// JoinURL joins a base URL and path segments with single slashes.
func JoinURL(base string, parts ...string) string {
	s := strings.TrimSuffix(base, "/")
	for _, p := range parts {
		s += "/" + strings.Trim(p, "/")
	}
	return s
}
