package sanitize

import (
	"regexp"
	"strings"
)

// killPatterns flag source-system leakage in finished articles: storage URIs,
// internal file names and deny-listed organization names.
var killPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)gs://`),
	regexp.MustCompile(`(?i)\.pdf\b`),
	regexp.MustCompile(`(?i)\.docx\b`),
	regexp.MustCompile(`(?i)\.xlsx\b`),
	regexp.MustCompile(`(?i)\.pptx\b`),
}

// KillSwitch is the hard output filter applied after generation. The pattern
// list is static; deny-listed organization names can be extended per
// deployment.
type KillSwitch struct {
	denylist []*regexp.Regexp
}

// NewKillSwitch creates a KillSwitch with the given deny-listed organization
// names on top of the built-in leakage patterns.
func NewKillSwitch(deniedOrgs ...string) *KillSwitch {
	if len(deniedOrgs) == 0 {
		deniedOrgs = DefaultDeniedOrgs()
	}
	ks := &KillSwitch{}
	for _, org := range deniedOrgs {
		ks.denylist = append(ks.denylist, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(org)+`\b`))
	}
	return ks
}

// DefaultDeniedOrgs returns the built-in organization deny list.
func DefaultDeniedOrgs() []string {
	return []string{"BAVARIA", "RCI"}
}

// Scan returns the patterns that matched in text, empty when the text is
// clean. Matching is case-insensitive throughout.
func (ks *KillSwitch) Scan(text string) []string {
	var hits []string
	for _, p := range killPatterns {
		if p.MatchString(text) {
			hits = append(hits, p.String())
		}
	}
	for _, p := range ks.denylist {
		if p.MatchString(text) {
			hits = append(hits, p.String())
		}
	}
	return hits
}

// Triggered reports whether any text in the given set fails the scan.
func (ks *KillSwitch) Triggered(texts ...string) bool {
	for _, t := range texts {
		if len(ks.Scan(t)) > 0 {
			return true
		}
	}
	return false
}

// ViolationNotice builds the corrective instruction appended to the
// conversation for the single regeneration attempt.
func ViolationNotice(hits []string) string {
	notice := "You violated privacy rules (mentioned internal names, file names or URIs). " +
		"Regenerate strictly complying with NO internal mentions."
	if len(hits) > 0 {
		notice += " Detected: " + strings.Join(hits, ", ")
	}
	return notice
}
