// Package drafter composes post content from a topic and tone using fixed
// templates: a hook, a short structured body, and a call to action.
package drafter

import (
	"fmt"
	"strings"

	"postline/internal/domain"
)

type toneTemplate struct {
	hookPrefix string
	cta        string
}

var toneTemplates = map[domain.Tone]toneTemplate{
	domain.ToneProfessional: {
		hookPrefix: "Here's what I've learned about",
		cta:        "What's your experience with this? Share in the comments.",
	},
	domain.ToneCasual: {
		hookPrefix: "Let me tell you something about",
		cta:        "Thoughts? Drop them below.",
	},
	domain.ToneInspirational: {
		hookPrefix: "The most powerful lesson I've learned about",
		cta:        "If this resonates, share it with someone who needs to hear it.",
	},
	domain.ToneEducational: {
		hookPrefix: "Most people get this wrong about",
		cta:        "Save this for later and follow for more insights.",
	},
	domain.ToneStorytelling: {
		hookPrefix: "I never expected this when I started with",
		cta:        "Have a similar story? I'd love to hear it.",
	},
}

// Compose generates templated content for a topic in the given tone.
func Compose(topic string, tone domain.Tone) domain.Content {
	tpl, ok := toneTemplates[tone]
	if !ok {
		tpl = toneTemplates[domain.ToneProfessional]
	}
	hook := fmt.Sprintf("%s %s:", tpl.hookPrefix, topic)
	return domain.Content{
		Hook:         hook,
		Body:         buildBody(topic, tone, hook, tpl.cta),
		CallToAction: tpl.cta,
	}
}

// FromCustom wraps user-supplied body text: the first line becomes the hook
// and no call to action is assumed.
func FromCustom(body string) domain.Content {
	hook := body
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		hook = body[:i]
	}
	return domain.Content{Hook: hook, Body: body}
}

func buildBody(topic string, tone domain.Tone, hook, cta string) string {
	paragraphs := []string{
		hook,
		"",
	}
	switch tone {
	case domain.ToneStorytelling:
		paragraphs = append(paragraphs, fmt.Sprintf("My journey with %s started unexpectedly.", topic), "")
	case domain.ToneEducational:
		paragraphs = append(paragraphs, fmt.Sprintf("Let me break down %s into actionable steps.", topic), "")
	}
	paragraphs = append(paragraphs,
		fmt.Sprintf("When it comes to %s, there are key insights that can transform your approach.", topic),
		"",
		"Here's what matters most:",
		"",
		fmt.Sprintf("1. Understanding the fundamentals of %s is essential.", topic),
		fmt.Sprintf("2. Applying %s consistently leads to measurable results.", topic),
		fmt.Sprintf("3. The best practitioners of %s never stop learning.", topic),
		"",
		cta,
	)
	return strings.Join(paragraphs, "\n")
}
