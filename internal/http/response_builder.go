// Package http provides HTTP server and handler implementations.
//
// This file implements the builder used by mutating handlers to finish a
// request: an optional flash message followed by a 302 redirect.

package http

import (
	"net/http"
	"net/url"
)

// listingPaths are the only pages a mutation may redirect back to.
var listingPaths = map[string]bool{
	"/":         true,
	"/tasks":    true,
	"/expenses": true,
	"/shopping": true,
	"/members":  true,
}

// RedirectBuilder provides a fluent API for post-mutation redirects.
type RedirectBuilder struct {
	target string
	flash  *Flash
}

// NewRedirect creates a redirect to the given listing path.
func NewRedirect(listing string) *RedirectBuilder {
	return &RedirectBuilder{target: listing}
}

// Back replaces the target with the referring page when it is an allow-listed
// listing. Anything else, including other hosts, keeps the listing.
func (b *RedirectBuilder) Back(r *http.Request) *RedirectBuilder {
	if path, ok := SafeReferrer(r); ok {
		b.target = path
	}
	return b
}

// Flash attaches a message to show after the redirect.
func (b *RedirectBuilder) Flash(level, message string) *RedirectBuilder {
	b.flash = &Flash{Level: level, Message: message}
	return b
}

// Success is a convenience method for success flashes.
func (b *RedirectBuilder) Success(message string) *RedirectBuilder {
	return b.Flash(FlashSuccess, message)
}

// Error is a convenience method for error flashes.
func (b *RedirectBuilder) Error(message string) *RedirectBuilder {
	return b.Flash(FlashError, message)
}

// Info is a convenience method for info flashes.
func (b *RedirectBuilder) Info(message string) *RedirectBuilder {
	return b.Flash(FlashInfo, message)
}

// Target returns where the redirect will point.
func (b *RedirectBuilder) Target() string {
	return b.target
}

// Write sets the flash cookie, if any, and sends the 302.
func (b *RedirectBuilder) Write(w http.ResponseWriter, r *http.Request, signer *flashSigner) error {
	var err error
	if b.flash != nil && signer != nil {
		err = signer.Set(w, b.flash.Level, b.flash.Message)
	}
	http.Redirect(w, r, b.target, http.StatusFound)
	return err
}

// SafeReferrer returns the Referer path when it names a listing page on this
// host.
func SafeReferrer(r *http.Request) (string, bool) {
	ref := r.Header.Get("Referer")
	if ref == "" {
		return "", false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	if u.Host != "" && u.Host != r.Host {
		return "", false
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	if !listingPaths[path] {
		return "", false
	}
	return path, true
}
