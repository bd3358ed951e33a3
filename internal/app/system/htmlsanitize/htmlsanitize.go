// Package htmlsanitize strips markup from user-supplied text.
//
// Usernames, group names, bios, and gift ideas are plain text; anything
// that looks like HTML in them is attacker-controlled and is removed
// before storage.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Plain removes all HTML from s and unescapes the survivors, returning
// the trimmed plain-text content.
func Plain(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
