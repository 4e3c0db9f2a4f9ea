package prodmeta

import (
	"context"
	"encoding/json"
)

// ExtractRequest is the input to a structured extraction call.
type ExtractRequest struct {
	// URL is the page the content came from. Informational only.
	URL string

	// Content is the rendered page text.
	Content string

	// Schema is the JSON schema the response must follow.
	Schema json.RawMessage

	// Instruction tells the model how to populate the schema.
	Instruction string
}

// Extractor populates a schema from page content using a language model.
type Extractor interface {
	// Extract returns the raw JSON produced by the model. The value is
	// expected to be a single object but may be an array of objects.
	Extract(ctx context.Context, cfg ProviderConfig, req *ExtractRequest) (string, error)
}

// PromptCounter measures the prompt an Extractor would send for a request,
// in model tokens.
type PromptCounter interface {
	CountRequest(ctx context.Context, req *ExtractRequest) (int, error)
}

// Instruction is the fixed extraction instruction sent with every page.
const Instruction = `Extract comprehensive product information from this product page and analyze it to fill ALL fields of the schema.

BASIC INFO: Copy the product name, brand, detailed description, specifications, key selling points, price, website and delivery information verbatim from the page.

IMAGE LINKS: Extract ALL product image URLs found on the page: main product images, gallery images, zoom images and variant images. Always return full absolute URLs.

DEMOGRAPHICS: Determine the target gender, the age range (if the product is for kids), the price bracket (Budget/Mid-range/Premium/Luxury) and the cities where the product is available.

STYLE & OCCASIONS: Identify suitable occasions, style tags and target personas.

BOOLEAN OCCASIONS: Decide whether the product is suitable for each of:
- valentines (Valentine's Day)
- baby_shower (Baby Shower)
- anniversaries_weddings (Anniversaries & Weddings)
- birthdays (Birthdays)
- house_warmings (House Warmings)
- festivals (Festivals)

BOOLEAN PERSONALITIES: Decide whether the product suits each of:
- fitness_sports_enthusiast (Fitness/Sports Enthusiast)
- aesthete (Aesthete)
- minimalist_functional (Minimalist/Functional)
- maximalist (Maximalist)
- fashionable (Fashionable)
- foodie (Foodie)
- wellness_seeker (Wellness Seeker)
- new_parent (New Parent)
- teenagers (Teenagers)
- working_professionals (Working Professionals)
- parents (Parents)
- bride_groom_to_be (Bride/Groom to be)

Be analytical about the boolean fields: when the page does not state them, infer each one from the product type, category, style and use case instead of leaving it false.
Return only ONE comprehensive product object.`
