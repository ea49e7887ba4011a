package generation

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/phrazzld/mise-api/internal/domain"
)

// ParsePairings decodes a model answer into pairing suggestions. It accepts a
// bare JSON array or an object with a "wines" array, optionally wrapped in a
// markdown code fence. Entries without a name or type are dropped.
func ParsePairings(raw string) ([]domain.PairingSuggestion, error) {
	body := strings.TrimSpace(raw)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyResponse
	}

	var wines []domain.PairingSuggestion
	if strings.HasPrefix(body, "{") {
		var wrapped struct {
			Wines []domain.PairingSuggestion `json:"wines"`
		}
		if err := json.Unmarshal([]byte(body), &wrapped); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		wines = wrapped.Wines
	} else if err := json.Unmarshal([]byte(body), &wines); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	out := wines[:0]
	for _, w := range wines {
		if strings.TrimSpace(w.Name) == "" || strings.TrimSpace(w.Type) == "" {
			continue
		}
		out = append(out, w)
	}
	if len(out) == 0 {
		return nil, ErrEmptyResponse
	}
	return out, nil
}

// DecodeImage decodes a base64 image, dropping any data-URL prefix such as
// "data:image/png;base64,".
func DecodeImage(encoded string) ([]byte, error) {
	if i := strings.LastIndex(encoded, ","); i >= 0 {
		encoded = encoded[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 image: %v", ErrInvalidResponse, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyResponse
	}
	return data, nil
}
