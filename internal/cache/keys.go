package cache

import (
	"net/url"
	"time"
)

// BuildKey returns the cache key for one category query:
//
//	category:YYYY-MM-DD:k1=v1&k2=v2:auth
//
// The UTC day stamp makes day-scoped results expire at midnight. Parameters are
// sorted by name. Authenticated and anonymous viewers never share a key.
func BuildKey(category string, day time.Time, params map[string]string, authenticated bool) string {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	viewer := "anon"
	if authenticated {
		viewer = "auth"
	}
	return category + ":" + day.UTC().Format(time.DateOnly) + ":" + values.Encode() + ":" + viewer
}
