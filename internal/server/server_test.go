package server

import "testing"

func TestShouldSkipJWT(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path string
		want bool
	}{
		{path: "/ping", want: true},
		{path: "/health", want: true},
		{path: "/auth/login", want: true},
		{path: "/telegram/webhook", want: true},
		{path: "/telegram/webhook/extra", want: false},
		{path: "/api/returns", want: false},
		{path: "/api/telegram/link", want: false},
		{path: "/api/files", want: false},
		{path: "/users/me", want: false},
	}

	for _, tc := range cases {
		got := shouldSkipJWT(tc.path)
		if got != tc.want {
			t.Fatalf("path=%q want=%v got=%v", tc.path, tc.want, got)
		}
	}
}
