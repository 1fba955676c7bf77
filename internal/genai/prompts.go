// Package genai wraps the external model API used for marketing copy.
package genai

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/listkit/listkit/internal/model"
)

// ListingInput bundles the listing and agent-profile fields a prompt needs.
type ListingInput struct {
	Address     string
	Price       string
	Beds        int
	Baths       float64
	Sqft        int
	Description string
	Features    string
	AgentName   string
	Brokerage   string
	Tone        model.Tone
}

// toneDescriptions maps a tone to its prompt phrasing.
// Unknown tones fall back to luxury.
var toneDescriptions = map[model.Tone]string{
	model.ToneLuxury:   "sophisticated, elegant, and premium",
	model.ToneFamily:   "warm, welcoming, and family-oriented",
	model.ToneInvestor: "data-driven, ROI-focused, and analytical",
}

// contentPrompts holds the fixed instruction template per content type.
// Each template pins the exact output shape the UI renders.
var contentPrompts = map[model.ContentType]string{
	model.ContentTypeInstagram: `Create an Instagram Carousel post for this real estate listing.
Provide exactly 5 slides of copy (Slide 1 through Slide 5), each 2-3 sentences.
Then provide a caption with emojis (2-3 sentences).
Then provide 20 relevant hashtags.
Format:
SLIDE 1: ...
SLIDE 2: ...
SLIDE 3: ...
SLIDE 4: ...
SLIDE 5: ...
CAPTION: ...
HASHTAGS: ...`,

	model.ContentTypeFacebook: `Create a long-form Facebook post for this real estate listing.
Use emojis throughout. Include property highlights, neighborhood details, and a call to action.
Should be 4-6 paragraphs. Make it engaging and shareable.`,

	model.ContentTypeEmail: `Create a "Just Listed" email to past clients announcing this new listing.
Include a compelling subject line, greeting, property highlights, and call to action.
Format:
SUBJECT: ...
BODY:
...`,

	model.ContentTypeOpenHouse: `Create an Open House announcement for this listing.
Include the property highlights, what makes it special, and a compelling invitation.
Format it ready to post on social media or send as a flyer.
Include placeholder for date/time: [DATE] and [TIME].`,

	model.ContentTypeSMS: `Create a 3-text SMS follow-up sequence for leads interested in this listing, spaced over 7 days.
Each text should be under 160 characters.
Format:
TEXT 1 (Day 1): ...
TEXT 2 (Day 3): ...
TEXT 3 (Day 7): ...`,

	model.ContentTypeVideo: `Create a 30-second video walkthrough script for this listing.
Include shot directions in brackets and voiceover text.
Format:
[SHOT: ...] Voiceover: "..."
Include 5-6 shots covering exterior, main living areas, kitchen, primary bedroom, and a closing shot.`,
}

// ToneDescription returns the prompt phrasing for a tone, defaulting to luxury.
func ToneDescription(tone model.Tone) string {
	if desc, ok := toneDescriptions[tone]; ok {
		return desc
	}
	return toneDescriptions[model.ToneLuxury]
}

// BuildPrompt assembles the full user message for one content type:
// role/tone preamble, property-detail block, then the fixed instruction
// template for the type.
func BuildPrompt(contentType model.ContentType, listing ListingInput) string {
	return fmt.Sprintf(`You are an expert real estate marketing copywriter. Write in a %s tone.

Property Details:
- Address: %s
- Price: %s
- Bedrooms: %d | Bathrooms: %s | Sq Ft: %s
- Description: %s
- Key Features: %s
- Agent: %s, %s

%s`,
		ToneDescription(listing.Tone),
		listing.Address,
		listing.Price,
		listing.Beds,
		formatBaths(listing.Baths),
		formatThousands(listing.Sqft),
		listing.Description,
		listing.Features,
		listing.AgentName,
		listing.Brokerage,
		contentPrompts[contentType],
	)
}

// formatBaths renders bath counts without trailing zeros (2, 2.5).
func formatBaths(baths float64) string {
	return strconv.FormatFloat(baths, 'f', -1, 64)
}

// formatThousands renders an int with comma grouping (1,850).
func formatThousands(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var b strings.Builder
	for i, digit := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}
