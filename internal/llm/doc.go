// Package llm provides clients for the insight-selection reasoner. The
// reasoner receives a prompt describing a user's spend context and the
// insight card catalog, and returns raw JSON that the insights validator
// checks before anything reaches the notification gate.
package llm
