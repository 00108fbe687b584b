package tenantbus

import (
	"net"
	"strings"
)

// reservedLabels are subdomains that never name a tenant.
var reservedLabels = map[string]struct{}{
	"www": {},
	"api": {},
}

// SlugFromPath returns the slug of a "/t/{slug}" segment anywhere in the
// path, so both "/t/wondernails" and "/v1/t/wondernails/products" match.
func SlugFromPath(path string) (string, bool) {
	segments := strings.Split(strings.Trim(path, "/"), "/")

	for i := 0; i < len(segments)-1; i++ {
		if segments[i] == "t" && segments[i+1] != "" {
			return strings.ToLower(segments[i+1]), true
		}
	}

	return "", false
}

// SlugFromHost infers the slug from the first label of the host. When
// baseDomain is set the host must be a direct subdomain of it, otherwise the
// host needs at least three labels. Localhost and IP literals never match.
func SlugFromHost(host string, baseDomain string) (string, bool) {
	host = normalizeHost(host)
	if host == "" || host == "localhost" || net.ParseIP(host) != nil {
		return "", false
	}

	var label string

	switch baseDomain = normalizeHost(baseDomain); baseDomain {
	case "":
		labels := strings.Split(host, ".")
		if len(labels) < 3 {
			return "", false
		}
		label = labels[0]

	default:
		sub, found := strings.CutSuffix(host, "."+baseDomain)
		if !found || sub == "" || strings.Contains(sub, ".") {
			return "", false
		}
		label = sub
	}

	if _, reserved := reservedLabels[label]; reserved {
		return "", false
	}

	return label, true
}

func normalizeHost(host string) string {
	host = strings.TrimSpace(strings.ToLower(host))

	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	return strings.TrimSuffix(host, ".")
}
