package generation

import (
	"fmt"
	"strings"
)

// ImagePrompt builds the prompt for an image request.
func ImagePrompt(req ImageRequest) string {
	switch req.Kind {
	case ImageKindStarch:
		return fmt.Sprintf(
			"A realistic overhead food photograph of %s, prepared as follows: %s. Plated on a neutral background, natural light, no text.",
			req.Subject, strings.Join(req.Steps, " "))
	default:
		if len(req.Ingredients) == 0 {
			return fmt.Sprintf(
				"A realistic restaurant-quality food photograph of %s, plated, natural light, no text.",
				req.Subject)
		}
		return fmt.Sprintf(
			"A realistic restaurant-quality food photograph of %s made with %s, plated, natural light, no text.",
			req.Subject, strings.Join(req.Ingredients, ", "))
	}
}

// PairingPrompt builds the prompt asking for wine pairings as JSON.
func PairingPrompt(description string) string {
	return "Suggest three wines that pair with: " + description + ".\n" +
		`Reply with a JSON array only. Each element must have the string fields ` +
		`"wine_name", "wine_type", "flavor", "profile", "proteins", "reason" and "region".`
}
