package router

import (
	"testing"
)

func TestNavigateOptionFunctions(t *testing.T) {
	opts := NavigateOptions{}

	WithReplace()(&opts)
	if !opts.Replace {
		t.Error("WithReplace should set Replace to true")
	}

	params := map[string]any{"page": 1}
	WithParams(params)(&opts)
	if opts.Params["page"] != 1 {
		t.Error("WithParams should set params")
	}
}

func TestNavigationRequestBuildURL(t *testing.T) {
	tests := []struct {
		request NavigationRequest
		want    string
	}{
		{NavigationRequest{Path: "/users"}, "/users"},
		{
			NavigationRequest{
				Path:    "/search",
				Options: NavigateOptions{Params: map[string]any{"q": "go"}},
			},
			"/search?q=go",
		},
	}

	for _, tt := range tests {
		got, err := tt.request.BuildURL()
		if err != nil {
			t.Fatalf("BuildURL(%q): %v", tt.request.Path, err)
		}
		if got != tt.want {
			t.Errorf("BuildURL(%q) = %q, want %q", tt.request.Path, got, tt.want)
		}
	}
}

func TestSameDocument(t *testing.T) {
	const base = "http://localhost:8080/config/system"

	tests := []struct {
		href string
		want string
		ok   bool
	}{
		{"/about", "/about", true},
		{"about", "/config/about", true},
		{"../about", "/about", true},
		{"./", "/config/", true},
		{"?tab=2", "/config/system?tab=2", true},
		{"/about#team", "/about#team", true},
		{"/search?q=1", "/search?q=1", true},
		{"http://localhost:8080/contact", "/contact", true},
		{"//localhost:8080/contact", "/contact", true},
		{"http://localhost:8080", "/", true},
		{"https://example.com/about", "", false},
		{"https://localhost:8080/about", "", false},
		{"mailto:someone@example.com", "", false},
		{"#section", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := SameDocument(tt.href, base)
		if ok != tt.ok || got != tt.want {
			t.Errorf("SameDocument(%q) = %q, %v; want %q, %v", tt.href, got, ok, tt.want, tt.ok)
		}
	}
}
