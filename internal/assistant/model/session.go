package model

// Session is the browser-profile-scoped state for one conversation.
// Concurrency model:
//   - The session is owned by the state store and mutated only through
//     its methods; the relay touches the single in-flight assistant
//     message through those same methods.
//   - GenerationInFlight is the de facto lock: at most one generation is
//     active per session, and a submission attempted while it is set is
//     rejected before any state is touched.
type Session struct {
	Transcript []Message
	History    []HistoryEntry

	// AuthToken is the opaque credential from the access gate, empty when
	// signed out. The core never inspects it.
	AuthToken string

	GenerationInFlight bool
}

// NewSession returns an empty session; Bootstrap fills it from durable
// storage when available.
func NewSession() *Session {
	return &Session{
		Transcript: []Message{},
		History:    []HistoryEntry{},
	}
}
