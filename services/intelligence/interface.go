// File: services/intelligence/interface.go
package ai

import "context"

// Generator produces a free-text answer for a prompt.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
