package interview

import "time"

// Status tags a response as a real answer or a degraded placeholder.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Turn is one question/response pair in a persona's own history.
type Turn struct {
	Question string `json:"question"`
	Response string `json:"response"`
}

// PeerResponse is another persona's answer from the current round.
type PeerResponse struct {
	PersonaID string `json:"agent_id"`
	Response  string `json:"response"`
}

// Response is produced exactly once per (question, persona) pair.
type Response struct {
	PersonaID string    `json:"agent_id"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
}

// Degraded reports whether the response is a placeholder for a failed call.
func (r Response) Degraded() bool {
	return r.Status == StatusError
}

// Peer converts the response into the form shown to later personas.
func (r Response) Peer() PeerResponse {
	return PeerResponse{PersonaID: r.PersonaID, Response: r.Response}
}
