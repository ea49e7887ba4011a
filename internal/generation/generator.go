package generation

import (
	"context"

	"github.com/phrazzld/mise-api/internal/domain"
)

// ImageKind selects the prompt used for an image request.
type ImageKind string

const (
	ImageKindDish   ImageKind = "dish"
	ImageKindStarch ImageKind = "starch"
)

// ImageRequest describes the picture to generate.
type ImageRequest struct {
	Kind        ImageKind
	Subject     string
	Ingredients []string
	Steps       []string
}

// ImageGenerator produces a picture and returns it base64 encoded. The
// result may carry a data-URL prefix.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req ImageRequest) (string, error)
}

// PairingGenerator suggests wines for a dish description such as
// "Risotto with saffron, and parmesan".
type PairingGenerator interface {
	GeneratePairings(ctx context.Context, description string) ([]domain.PairingSuggestion, error)
}
