package types

// Version is the application version, overridden at build time via ldflags.
var Version = "dev"

// DOID is a content platform course/resource identifier (e.g. "do_1137...").
type DOID string

// String returns the raw identifier.
func (id DOID) String() string {
	return string(id)
}

// Suffix returns the last n characters of the identifier. Used to
// disambiguate truncated folder names while keeping paths short.
func (id DOID) Suffix(n int) string {
	s := string(id)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// SessionID identifies one batch download session. Derived from the session
// start timestamp (20060102_150405).
type SessionID string

func (id SessionID) String() string {
	return string(id)
}
