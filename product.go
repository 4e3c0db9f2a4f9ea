package prodmeta

import (
	"fmt"
	"strconv"
	"strings"
)

// Product is the structured record extracted from a product page.
// The zero value is a valid record: every string is empty and every
// suitability flag is false. Use NewProduct to get a non-nil ImageLinks.
type Product struct {
	// Basic product info.
	Product          string   `json:"product" jsonschema:"required,description=Product name or title"`
	Brand            string   `json:"brand" jsonschema:"required,description=Brand or manufacturer"`
	Description      string   `json:"product_description" jsonschema:"description=Detailed product description"`
	Details          string   `json:"everything_you_need_to_know" jsonschema:"description=Comprehensive product information and specifications"`
	WhyWeLoveIt      string   `json:"why_we_love_it" jsonschema:"description=Key selling points and unique features"`
	Price            string   `json:"price" jsonschema:"required,description=Current price of the product"`
	Website          string   `json:"website" jsonschema:"description=Website or platform where product is sold"`
	DeliveryTimeline string   `json:"delivery_timeline" jsonschema:"description=Expected delivery time"`
	ImageLinks       []string `json:"image_links" jsonschema:"description=List of absolute product image URLs"`

	// Demographics.
	AgeKids      string `json:"age_kids" jsonschema:"description=Age range if product is for kids"`
	Gender       string `json:"gender" jsonschema:"description=Target gender (Men/Women/Unisex/Kids)"`
	PriceBracket string `json:"price_bracket" jsonschema:"description=Price category (Budget/Mid-range/Premium/Luxury)"`
	Cities       string `json:"cities" jsonschema:"description=Cities where product is available"`

	// Style and occasion.
	Occasion  string `json:"occasion" jsonschema:"description=Suitable occasions for the product"`
	StyleTags string `json:"style_tags" jsonschema:"description=Style categories and tags"`
	Personas  string `json:"personas" jsonschema:"description=Target customer personas"`

	// Suitable occasions.
	Valentines            bool `json:"valentines" jsonschema:"description=Suitable for Valentine's Day"`
	BabyShower            bool `json:"baby_shower" jsonschema:"description=Suitable for Baby Shower"`
	AnniversariesWeddings bool `json:"anniversaries_weddings" jsonschema:"description=Suitable for Anniversaries & Weddings"`
	Birthdays             bool `json:"birthdays" jsonschema:"description=Suitable for Birthdays"`
	HouseWarmings         bool `json:"house_warmings" jsonschema:"description=Suitable for House Warmings"`
	Festivals             bool `json:"festivals" jsonschema:"description=Suitable for Festivals"`

	// Suited personalities.
	FitnessSportsEnthusiast bool `json:"fitness_sports_enthusiast" jsonschema:"description=Suited for Fitness/Sports Enthusiasts"`
	Aesthete                bool `json:"aesthete" jsonschema:"description=Suited for Aesthetes"`
	MinimalistFunctional    bool `json:"minimalist_functional" jsonschema:"description=Suited for Minimalist/Functional personalities"`
	Maximalist              bool `json:"maximalist" jsonschema:"description=Suited for Maximalists"`
	Fashionable             bool `json:"fashionable" jsonschema:"description=Suited for Fashionable personalities"`
	Foodie                  bool `json:"foodie" jsonschema:"description=Suited for Foodies"`
	WellnessSeeker          bool `json:"wellness_seeker" jsonschema:"description=Suited for Wellness Seekers"`
	NewParent               bool `json:"new_parent" jsonschema:"description=Suited for New Parents"`
	Teenagers               bool `json:"teenagers" jsonschema:"description=Suited for Teenagers"`
	WorkingProfessionals    bool `json:"working_professionals" jsonschema:"description=Suited for Working Professionals"`
	Parents                 bool `json:"parents" jsonschema:"description=Suited for Parents"`
	BrideGroomToBe          bool `json:"bride_groom_to_be" jsonschema:"description=Suited for Bride/Groom to be"`
}

// NewProduct returns a Product with every field at its default.
func NewProduct() *Product {
	return &Product{ImageLinks: []string{}}
}

// OccasionFlags lists the JSON names of the occasion suitability flags.
var OccasionFlags = []string{
	"valentines",
	"baby_shower",
	"anniversaries_weddings",
	"birthdays",
	"house_warmings",
	"festivals",
}

// PersonalityFlags lists the JSON names of the personality suitability flags.
var PersonalityFlags = []string{
	"fitness_sports_enthusiast",
	"aesthete",
	"minimalist_functional",
	"maximalist",
	"fashionable",
	"foodie",
	"wellness_seeker",
	"new_parent",
	"teenagers",
	"working_professionals",
	"parents",
	"bride_groom_to_be",
}

// ProductFromMap populates a Product from a decoded JSON object.
// Unknown keys are ignored, absent or null keys keep their defaults, and
// values of an unexpected type are coerced where a sensible reading exists.
// It never fails.
func ProductFromMap(m map[string]any) *Product {
	return &Product{
		Product:          str(m, "product"),
		Brand:            str(m, "brand"),
		Description:      str(m, "product_description"),
		Details:          str(m, "everything_you_need_to_know"),
		WhyWeLoveIt:      str(m, "why_we_love_it"),
		Price:            str(m, "price"),
		Website:          str(m, "website"),
		DeliveryTimeline: str(m, "delivery_timeline"),
		ImageLinks:       strs(m, "image_links"),

		AgeKids:      str(m, "age_kids"),
		Gender:       str(m, "gender"),
		PriceBracket: str(m, "price_bracket"),
		Cities:       str(m, "cities"),

		Occasion:  str(m, "occasion"),
		StyleTags: str(m, "style_tags"),
		Personas:  str(m, "personas"),

		Valentines:            flag(m, "valentines"),
		BabyShower:            flag(m, "baby_shower"),
		AnniversariesWeddings: flag(m, "anniversaries_weddings"),
		Birthdays:             flag(m, "birthdays"),
		HouseWarmings:         flag(m, "house_warmings"),
		Festivals:             flag(m, "festivals"),

		FitnessSportsEnthusiast: flag(m, "fitness_sports_enthusiast"),
		Aesthete:                flag(m, "aesthete"),
		MinimalistFunctional:    flag(m, "minimalist_functional"),
		Maximalist:              flag(m, "maximalist"),
		Fashionable:             flag(m, "fashionable"),
		Foodie:                  flag(m, "foodie"),
		WellnessSeeker:          flag(m, "wellness_seeker"),
		NewParent:               flag(m, "new_parent"),
		Teenagers:               flag(m, "teenagers"),
		WorkingProfessionals:    flag(m, "working_professionals"),
		Parents:                 flag(m, "parents"),
		BrideGroomToBe:          flag(m, "bride_groom_to_be"),
	}
}

// str reads a string field. Scalars are formatted and lists of scalars are
// joined with ", " since models occasionally return tags as arrays.
func str(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			switch item := item.(type) {
			case string:
				if item != "" {
					parts = append(parts, item)
				}
			case float64, bool:
				parts = append(parts, fmt.Sprint(item))
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// strs reads a list of strings, dropping non-string and empty entries.
// The result is never nil.
func strs(m map[string]any, key string) []string {
	out := []string{}
	switch v := m[key].(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case string:
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// flag reads a boolean field, accepting common string spellings.
func flag(m map[string]any, key string) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "y", "1":
			return true
		}
	case float64:
		return v != 0
	}
	return false
}
