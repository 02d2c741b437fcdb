// Package avatar provisions profile images from an external generative-image
// service. Provisioning is best effort: callers bound it with a context
// deadline and treat every failure as "no avatar", never as a registration
// failure.
package avatar

import (
	"context"
	"errors"
	"fmt"
)

// ErrGenerationFailed covers every provisioning failure: network errors,
// quota rejections, and malformed responses. Callers log it and continue.
var ErrGenerationFailed = errors.New("avatar generation failed")

const basePrompt = "An abstract, artistic, futuristic avatar for a digital art platform. " +
	"A glowing neon orb of creative energy, with vibrant cyan and magenta light trails " +
	"on a dark, minimalist background. A sense of digital innovation and artistry. " +
	"Logo-like simplicity."

// PromptFor builds the generation prompt for a new account. The email acts
// as a per-account seed so two registrations do not yield the same image.
func PromptFor(email string) string {
	return fmt.Sprintf("%s Unique seed: %s.", basePrompt, email)
}

// Generator produces a single square PNG for the given prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}
