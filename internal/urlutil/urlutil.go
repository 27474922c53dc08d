// Package urlutil implements the crawler's bespoke URL canonicalization
// rules: parsing into scheme/host/path, fragment stripping, relative-link
// resolution, extension classification, and filesystem-safe naming.
//
// These are deliberately hand-rolled rather than delegated to net/url: the
// canonical form and resolve() rules below are exact, testable laws (see the
// round-trip properties in the package tests) that diverge from RFC 3986
// resolution in edge cases net/url would handle differently — defaulting an
// empty path to "/", resolving relative hrefs against the directory of
// base.path rather than a full reference-merge, and truncating sanitized
// names to exactly 240 bytes.
package urlutil

import (
	"regexp"
	"strings"
)

// Parts is the normalized, canonical decomposition of a URL: lowercased
// scheme and host, and a path that defaults to "/".
type Parts struct {
	Scheme string
	Host   string
	Path   string
}

var schemeRE = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)

// Parse decomposes a URL of the form scheme://host[/path...] into its
// canonical parts. It reports ok=false for anything that doesn't match that
// shape.
func Parse(raw string) (Parts, bool) {
	idx := strings.Index(raw, "://")
	if idx <= 0 {
		return Parts{}, false
	}
	scheme := raw[:idx]
	if !isValidScheme(scheme) {
		return Parts{}, false
	}
	rest := raw[idx+3:]

	host := rest
	path := "/"
	if slash := strings.IndexByte(rest, '/'); slash >= 0 {
		host = rest[:slash]
		path = rest[slash:]
		if path == "" {
			path = "/"
		}
	}
	if host == "" {
		return Parts{}, false
	}

	return Parts{
		Scheme: strings.ToLower(scheme),
		Host:   strings.ToLower(host),
		Path:   path,
	}, true
}

// Format renders canonical parts back into a scheme://host+path string,
// the inverse of Parse: Parse(Format(parts)) == parts for any canonical
// parts produced by Parse.
func Format(parts Parts) string {
	return parts.Scheme + "://" + parts.Host + parts.Path
}

func isValidScheme(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
			continue
		case i == 0:
			return false
		case r >= '0' && r <= '9', r == '+', r == '.', r == '-':
			continue
		default:
			return false
		}
	}
	return true
}

// StripFragment removes everything from the first '#' onward. It is
// idempotent: StripFragment(StripFragment(x)) == StripFragment(x).
func StripFragment(raw string) string {
	if idx := strings.IndexByte(raw, '#'); idx >= 0 {
		return raw[:idx]
	}
	return raw
}

func stripQuery(raw string) string {
	if idx := strings.IndexByte(raw, '?'); idx >= 0 {
		return raw[:idx]
	}
	return raw
}

// Resolve turns href into a canonical absolute URL relative to base, or
// returns "" if href is empty, a mailto:/javascript: link, or otherwise
// unresolvable.
func Resolve(base Parts, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "javascript:") {
		return ""
	}
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return StripFragment(href)
	}
	if strings.HasPrefix(href, "//") {
		return base.Scheme + ":" + StripFragment(href)
	}
	if strings.HasPrefix(href, "/") {
		return base.Scheme + "://" + base.Host + StripFragment(href)
	}

	dir := "/"
	if slash := strings.LastIndexByte(base.Path, '/'); slash >= 0 {
		dir = base.Path[:slash+1]
	}
	return StripFragment(base.Scheme + "://" + base.Host + dir + href)
}

// ExtensionOf returns the lowercased, dotted filename extension of a URL,
// ignoring fragment and query, or "" if the filename has no '.'.
func ExtensionOf(raw string) string {
	raw = StripFragment(raw)
	raw = stripQuery(raw)
	name := raw
	if idx := strings.LastIndexByte(raw, '/'); idx >= 0 {
		name = raw[idx+1:]
	}
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return ""
	}
	return strings.ToLower(name[idx:])
}

var downloadMarkers = []string{"format=pdf", "format=doc", "download=1"}

// QueryIndicatesDownload reports whether the lowercased URL contains any of
// the known download-intent query markers. Its result is computed for
// completeness but — per spec — is never consulted by should_enqueue's
// accept path: extension-less URLs are accepted unconditionally regardless
// of this function's answer.
func QueryIndicatesDownload(raw string) bool {
	lower := strings.ToLower(raw)
	for _, marker := range downloadMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

var unsafeRunRE = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

const maxFilenameLen = 240

// SanitizeFilename builds a filesystem-safe name from the canonical parts of
// a URL, an extension to ensure is present, and a prefix ("html" or "file").
func SanitizeFilename(parts Parts, extension, prefix string) string {
	path := parts.Path
	if path == "" || path == "/" {
		path = "/index"
	}
	path = strings.ReplaceAll(path, "/", "_")

	name := prefix + "__" + parts.Host + path
	if extension != "" && !strings.Contains(name, extension) {
		name += extension
	}

	name = unsafeRunRE.ReplaceAllString(name, "_")

	if len(name) > maxFilenameLen {
		name = name[:maxFilenameLen]
	}
	return name
}
