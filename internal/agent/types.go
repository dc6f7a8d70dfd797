// Package agent implements the expert response generator.
package agent

// Role is the author of a message in a model exchange.
type Role string

const (
	// RoleSystem carries the persona instruction.
	RoleSystem Role = "system"
	// RoleUser carries the consultation text.
	RoleUser Role = "user"
)

// Message is one entry of the sequence sent to the model.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is a single-shot request to the remote model.
type CompletionRequest struct {
	Model       string
	Temperature float64
	Messages    []Message
}

// ConsultRequest is the JSON body accepted by the consultation API.
type ConsultRequest struct {
	Persona string `json:"persona"`
	Message string `json:"message"`
}

// ConsultResponse is returned by the consultation API on success.
type ConsultResponse struct {
	ConsultationID string `json:"consultation_id"`
	Persona        string `json:"persona"`
	Answer         string `json:"answer"`
}

// Stats describes the configured generator.
type Stats struct {
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
}
