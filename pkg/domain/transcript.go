package domain

import "time"

// Transcript is the audit record of one elicitation session.
// It is a copy written after the fact; the live session state never leaves the call.
type Transcript struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at,omitempty"`
	Outcome    Outcome    `json:"outcome,omitempty"`
	Error      string     `json:"error,omitempty"`
	Rounds     []Exchange `json:"rounds"`
	// Sealed carries the encrypted transcript when a store encrypts at rest.
	// Rounds and Error are empty while it is set.
	Sealed     string     `json:"sealed,omitempty"`
}

// Exchange records a single round.
type Exchange struct {
	Round     int       `json:"round"`
	Attempt   int       `json:"attempt"`
	Field     string    `json:"field,omitempty"`
	Message   string    `json:"message"`
	Response  string    `json:"response,omitempty"`
	Rejection string    `json:"rejection,omitempty"`
	At        time.Time `json:"at"`
}

// Clone returns a deep copy of the transcript.
func (t *Transcript) Clone() *Transcript {
	c := *t
	c.Rounds = append([]Exchange(nil), t.Rounds...)
	return &c
}
