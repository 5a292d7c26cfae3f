package behavior

// Identity reports who is acting on records.
type Identity interface {
	IsAuthenticated() bool
	CurrentIdentity() any
}

// StaticIdentity is an Identity fixed at construction, typically taken
// from configuration or a command-line flag. A nil or empty ID is treated
// as anonymous.
type StaticIdentity struct {
	ID any
}

// IsAuthenticated reports whether an ID is set.
func (s StaticIdentity) IsAuthenticated() bool {
	return s.ID != nil && s.ID != ""
}

// CurrentIdentity returns the ID.
func (s StaticIdentity) CurrentIdentity() any {
	return s.ID
}
