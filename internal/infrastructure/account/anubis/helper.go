package anubis

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// tokenKey hashes the bearer token so raw tokens never sit in memory as
// cache keys.
func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func isAdminRole(role string) bool {
	return strings.EqualFold(strings.TrimSpace(role), adminRole)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// introspectionURL joins path onto base. An absolute path wins, so
// deployments can point introspection at a different host.
func introspectionURL(base, path string) string {
	base, path = strings.TrimSpace(base), strings.TrimSpace(path)
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	joined, err := url.JoinPath(base, path)
	if err != nil {
		return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
	}
	return joined
}
