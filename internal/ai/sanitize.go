package ai

import (
	"regexp"
	"strings"
)

var (
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	bracketRe    = regexp.MustCompile(`\[[^\]]*\]`)
	actionRe     = regexp.MustCompile(`(?i)\((?:pauses?|laughs?|smiles?|nods?|sighs?|thinks?|chuckles?|shrugs?)[^)]*\)`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// SanitizeSpeech strips markup and stage directions that models sometimes
// leak into the visible part of a reply. Only the speech channel is
// sanitized; the private rationale is stored verbatim.
func SanitizeSpeech(speech string) string {
	speech = tagRe.ReplaceAllString(speech, "")
	speech = bracketRe.ReplaceAllString(speech, "")
	speech = actionRe.ReplaceAllString(speech, "")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(speech, " "))
}
