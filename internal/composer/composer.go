// Package composer builds the reply prompt and asks the generative model for
// the supportive response.
package composer

import (
	"context"
	"fmt"
	"strings"

	"mindscape-go/internal/types"
)

// Generator is the generative-text collaborator: one prompt in, text out.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Composer struct {
	gen Generator
}

func New(gen Generator) *Composer {
	return &Composer{gen: gen}
}

// Compose returns the generated reply. Generator errors are returned as is.
func (c *Composer) Compose(ctx context.Context, text string, resources []types.Resource) (string, error) {
	reply, err := c.gen.Generate(ctx, BuildPrompt(text, resources))
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}
	return reply, nil
}

// BuildPrompt picks the resource-aware prompt when resources is non-empty.
func BuildPrompt(text string, resources []types.Resource) string {
	if len(resources) == 0 {
		return fmt.Sprintf(`You are MindScape, a warm and supportive wellness companion.
Someone shared the following in their journal:

"""%s"""

Reply in a few short, kind sentences. Acknowledge how they feel, offer gentle encouragement and one small, practical step they could take today. Do not diagnose and do not sound clinical.
`, text)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `You are MindScape, a warm and supportive wellness companion for young people.
Be culturally sensitive: respect the person's family, community and background, use simple everyday language, and avoid judgement or stigma around mental health.

Someone shared the following in their journal:

"""%s"""

Reply in a few short, kind paragraphs. Acknowledge how they feel, then gently suggest reaching out for support.
Weave the resources below into your reply naturally, as part of the conversation, explaining why each one could help. Do not paste them as a bare list, and keep every name and contact detail exactly as written.

Resources:
`, text)
	for _, r := range resources {
		b.WriteString("- ")
		b.WriteString(FormatResource(r))
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatResource renders "name: description (contact-or-website)".
func FormatResource(r types.Resource) string {
	s := r.Name + ": " + r.Description
	if reach := r.Reach(); reach != "" {
		s += " (" + reach + ")"
	}
	return s
}
