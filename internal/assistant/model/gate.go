package model

// AccessGate is the external auth collaborator. Credential issuance and
// verification live outside the core; the core only asks whether a user
// is signed in and for the opaque token to cache on the session.
type AccessGate interface {
	IsAuthenticated() bool
	CurrentToken() (string, bool)
}
