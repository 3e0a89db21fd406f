package history

import "regexp"

// DefaultSession is the session name used when sanitization yields the
// empty string (spec §3 Session, §8 "Session name containing only unsafe
// characters -> default").
const DefaultSession = "default"

var unsafeSessionChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// SanitizeSession reduces name to the safe alphabet [A-Za-z0-9_-]+,
// falling back to DefaultSession when nothing safe remains.
func SanitizeSession(name string) string {
	cleaned := unsafeSessionChars.ReplaceAllString(name, "")
	if cleaned == "" {
		return DefaultSession
	}
	return cleaned
}
