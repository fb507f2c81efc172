package models

// Response is implemented by every operation result.
type Response interface {
	OK() bool
}

// Envelope carries the fields common to every response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	// Error is a machine readable failure code, set only when Success is false.
	Error string `json:"error,omitempty"`
}

// OK reports whether the operation succeeded.
func (e Envelope) OK() bool { return e.Success }

// Succeeded returns a success envelope.
func Succeeded(message string) Envelope {
	return Envelope{Success: true, Message: message}
}

// Failure is the response for every failed operation. It carries no payload.
type Failure struct {
	Envelope
}

// Failed builds a Failure from an error code and message.
func Failed(code, message string) Failure {
	return Failure{Envelope{Success: false, Message: message, Error: code}}
}
