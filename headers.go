package ch

import (
	"fmt"
	"net/http"
	"runtime"
)

// clientVersion is this module's own version string, surfaced in the
// User-Agent the same way kokizzu-ch/query.go stamps c.version into its
// ClientInfo on every native-protocol query.
const clientVersion = "0.1.0"

// userAgent builds the single canonical User-Agent string, folding the
// teacher's source two divergent paths (a headers.rs and a duplicate
// user_agent.rs) into one. Format:
//
//	{app_name }clickhouse-client/{version} (lv:go/{go version}, os:{os})
func userAgent(appName string) string {
	base := fmt.Sprintf("clickhouse-client/%s (lv:go/%s, os:%s)",
		clientVersion, runtime.Version(), runtime.GOOS)
	if appName == "" {
		return base
	}
	return appName + " " + base
}

// buildHeaders assembles the request headers common to every operation: the
// canonical User-Agent, credentials, database, requested format, and any
// caller-supplied extra headers (which win on conflict, mirroring how the
// teacher lets per-query settings override client defaults).
func buildHeaders(cfg *Config, database, user, password, format string, extra map[string]string) http.Header {
	h := make(http.Header, 6+len(extra))
	h.Set("User-Agent", userAgent(cfg.AppName))
	if database != "" {
		h.Set("X-ClickHouse-Database", database)
	}
	if user != "" {
		h.Set("X-ClickHouse-User", user)
	}
	if password != "" {
		h.Set("X-ClickHouse-Key", password)
	}
	if format != "" {
		h.Set("X-ClickHouse-Format", format)
	}
	for k, v := range cfg.Headers {
		h.Set(k, v)
	}
	for k, v := range extra {
		h.Set(k, v)
	}
	return h
}
