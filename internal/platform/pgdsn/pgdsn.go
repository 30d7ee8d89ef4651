// Package pgdsn massages postgres connection strings shared by the API and
// the migration tool.
package pgdsn

import (
	"net/url"
	"strings"
)

const preparedBinaryParam = "disable_prepared_binary_result"

// PoolerSafe turns off binary results for prepared statements so the
// connection survives a transaction-mode pgbouncer. Keyword/value DSNs and
// URLs that already set the parameter are returned unchanged.
func PoolerSafe(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return raw
	}

	q := u.Query()
	if q.Has(preparedBinaryParam) {
		return raw
	}
	q.Set(preparedBinaryParam, "yes")
	u.RawQuery = q.Encode()
	return u.String()
}

// DatabaseName extracts the database from either a postgres:// URL or a
// keyword/value DSN. It returns "" when none is named.
func DatabaseName(raw string) string {
	raw = strings.TrimSpace(raw)
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" {
		return strings.TrimPrefix(u.Path, "/")
	}

	for _, kv := range strings.Fields(raw) {
		if name, ok := strings.CutPrefix(kv, "dbname="); ok {
			return strings.Trim(name, `"'`)
		}
	}
	return ""
}

const maxTracedQuery = 512

// TraceQuery collapses whitespace in a SQL statement and caps its length
// for use as a span attribute.
func TraceQuery(query string) string {
	flat := strings.Join(strings.Fields(query), " ")
	if len(flat) <= maxTracedQuery {
		return flat
	}
	return flat[:maxTracedQuery] + "..."
}
