package ws

import (
	"net/http"
	"strings"
)

// RoomIDFromPath returns the last segment of an escaped URL path as-is.
// "/abc/room42" -> "room42", "/" -> "", "/a/" -> "".
func RoomIDFromPath(escapedPath string) string {
	return escapedPath[strings.LastIndexByte(escapedPath, '/')+1:]
}

// checkOrigin allows requests without an Origin header and any origin when
// allowed contains "*".
func checkOrigin(allowed []string) func(r *http.Request) bool {
	allowAll := len(allowed) == 0
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			allowAll = true
		}
		set[strings.ToLower(strings.TrimRight(o, "/"))] = struct{}{}
	}

	return func(r *http.Request) bool {
		if allowAll {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[strings.ToLower(origin)]
		return ok
	}
}
