package providers

import "context"

// ChatModelProvider is the optional language-model collaborator. Callers
// must treat any error as "provider absent" and fall back to deterministic
// behavior; a single attempt per call, no retries.
type ChatModelProvider interface {
	// Complete sends a system+user prompt pair and returns the model's text.
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error)
}
