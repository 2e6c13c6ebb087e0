// Package media normalizes trailer links and builds placeholder artwork URLs.
package media

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// EmbedIDLength is the length of a video-sharing embed identifier.
const EmbedIDLength = 11

// Matches youtu.be/<id>, watch?v=<id>, embed/<id>, v/<id> and /u/<x>/<id>.
var embedPattern = regexp.MustCompile(`^.*((youtu.be/)|(v/)|(/u/\w/)|(embed/)|(watch\?))\??v?=?([^#&?]*).*`)

// ExtractEmbedID returns the embed identifier of a trailer URL, if it has one.
func ExtractEmbedID(rawURL string) (string, bool) {
	if rawURL == "" {
		return "", false
	}
	m := embedPattern.FindStringSubmatch(rawURL)
	if m == nil || len(m[7]) != EmbedIDLength {
		return "", false
	}
	return m[7], true
}

// EmbedURL is the autoplaying player URL for an embed identifier.
func EmbedURL(id string) string {
	return fmt.Sprintf("https://www.youtube.com/embed/%s?autoplay=1&controls=1", id)
}

// WatchURL is the canonical watch page for an embed identifier.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

const placeholderHost = "https://placehold.co"

// PosterFallback is the placeholder poster for a title.
func PosterFallback(title string) string {
	return placeholder("400x600", "18181b", "404040", title)
}

// BackdropFallback is the placeholder backdrop used in detail views.
func BackdropFallback(title string) string {
	return placeholder("1280x720", "222", "red", title)
}

// HeroFallback is the placeholder for the featured title banner.
func HeroFallback(title string) string {
	return placeholder("1920x1080", "111", "333", title)
}

// PosterOrFallback returns poster when set, otherwise the placeholder.
func PosterOrFallback(poster, title string) string {
	if strings.TrimSpace(poster) != "" {
		return poster
	}
	return PosterFallback(title)
}

func placeholder(size, bg, fg, title string) string {
	return fmt.Sprintf("%s/%s/%s/%s?text=%s", placeholderHost, size, bg, fg, escapeComponent(title))
}

// escapeComponent query-escapes s with spaces as %20 instead of '+'. Unlike
// encodeURIComponent it also escapes !'()*.
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
