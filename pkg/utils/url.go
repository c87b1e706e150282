package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// HashURL creates a SHA256 hash of a URL string.
// This is useful for creating consistent, safe keys for Redis.
func HashURL(rawURL string) string {
	h := sha256.New()
	h.Write([]byte(rawURL))
	return hex.EncodeToString(h.Sum(nil))
}

// ToAbsoluteURL converts a relative URL to an absolute URL given a base URL.
func ToAbsoluteURL(base *url.URL, relative string) (string, error) {
	relURL, err := url.Parse(relative)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(relURL).String(), nil
}

// StripFragment drops the "#section" part of an address. Two addresses that
// differ only by fragment name the same page.
func StripFragment(address string) string {
	if i := strings.IndexByte(address, '#'); i >= 0 {
		return address[:i]
	}
	return address
}

// CanonicalURL returns the identity form of an absolute address: scheme and
// host lower-cased, fragment dropped and the path percent-encoded one way, so
// /wiki/René and /wiki/Ren%C3%A9 name the same page.
func CanonicalURL(address string) (string, error) {
	u, err := url.Parse(address)
	if err != nil {
		return "", err
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	// An encoded slash would decode into a path separator.
	if !strings.Contains(strings.ToLower(u.RawPath), "%2f") {
		u.RawPath = ""
	}
	return u.String(), nil
}

// PageName is the trailing path segment of an address, "Pianist" for
// https://en.wikipedia.org/wiki/Pianist. Pages in different namespaces may
// share a name; use the full address when identity matters.
func PageName(address string) string {
	address = strings.TrimRight(StripFragment(address), "/")
	name := address
	if i := strings.LastIndexByte(address, '/'); i >= 0 {
		name = address[i+1:]
	}
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}

// ArticleURL builds the article address for a page name, "Computer Science"
// becomes <base>/wiki/Computer_Science.
func ArticleURL(base, name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	return strings.TrimRight(base, "/") + "/wiki/" + name
}
