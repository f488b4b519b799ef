// Package llm hides vendor differences behind one generation contract.
//
// Each Provider binds a vendor backend with fixed generation parameters set
// at construction (model, temperature); the gateway does not expose per-call
// parameter overrides. Provider selection happens once per call via
// Gateway.Resolve, which falls back to the configured default for
// unrecognized identifiers rather than failing.
package llm

// Message roles understood by every provider binding.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in the ordered sequence handed to a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
