package router

import (
	"fmt"
	"net/url"
	"strings"
)

// NavigateOptions configures a navigation.
type NavigateOptions struct {
	// Replace overwrites the current history entry instead of pushing.
	Replace bool

	// Params are query parameters added to the URL.
	Params map[string]any
}

// NavigateOption is a functional option for Navigate.
type NavigateOption func(*NavigateOptions)

// WithReplace overwrites the current history entry instead of pushing.
func WithReplace() NavigateOption {
	return func(o *NavigateOptions) {
		o.Replace = true
	}
}

// WithParams adds query parameters to the navigation URL.
func WithParams(params map[string]any) NavigateOption {
	return func(o *NavigateOptions) {
		o.Params = params
	}
}

// NavigationRequest is a pending navigation.
type NavigationRequest struct {
	Path    string
	Options NavigateOptions
}

// BuildURL constructs the URL written to history.
func (nr *NavigationRequest) BuildURL() (string, error) {
	u, err := url.Parse(nr.Path)
	if err != nil {
		return "", fmt.Errorf("invalid path: %s", nr.Path)
	}

	if nr.Options.Params != nil {
		q := u.Query()
		for k, v := range nr.Options.Params {
			q.Set(k, fmt.Sprintf("%v", v))
		}
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

// SameDocument reports whether clicking href should be handled in-page, and
// returns the URL to push when it should. base is the URL of the current
// document; relative hrefs are resolved against it the way the browser
// does. Links to other origins, non-HTTP schemes and bare fragments are left
// to the browser.
func SameDocument(href, base string) (string, bool) {
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}

	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}

	b, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	abs := b.ResolveReference(u)
	if !strings.EqualFold(abs.Host, b.Host) || abs.Scheme != b.Scheme {
		return "", false
	}

	p := abs.EscapedPath()
	if p == "" {
		p = "/"
	} else if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if abs.RawQuery != "" {
		p += "?" + abs.RawQuery
	}
	if abs.Fragment != "" {
		p += "#" + abs.EscapedFragment()
	}
	return p, true
}
