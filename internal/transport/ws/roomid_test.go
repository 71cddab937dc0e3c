package ws

import (
	"net/http/httptest"
	"testing"
)

func TestRoomIDFromPath(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/abc/room42", "room42"},
		{"/lobby", "lobby"},
		{"/", ""},
		{"", ""},
		{"/abc/", ""},
		{"/a/b/c/d", "d"},
		{"/call/room%20one", "room%20one"},
		{"room", "room"},
	}
	for _, tc := range cases {
		if got := RoomIDFromPath(tc.path); got != tc.want {
			t.Errorf("RoomIDFromPath(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestCheckOrigin(t *testing.T) {
	req := func(origin string) bool {
		r := httptest.NewRequest("GET", "/r", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return checkOrigin([]string{"https://app.example.com/"})(r)
	}

	if !req("") {
		t.Fatalf("requests without Origin must pass")
	}
	if !req("https://APP.example.com") {
		t.Fatalf("listed origin rejected")
	}
	if req("https://evil.example.com") {
		t.Fatalf("unlisted origin accepted")
	}

	r := httptest.NewRequest("GET", "/r", nil)
	r.Header.Set("Origin", "https://anything.test")
	if !checkOrigin([]string{"*"})(r) {
		t.Fatalf("wildcard must allow every origin")
	}
	if !checkOrigin(nil)(r) {
		t.Fatalf("empty list must allow every origin")
	}
}
