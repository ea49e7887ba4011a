package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/mise-api/internal/config"
	"github.com/phrazzld/mise-api/internal/domain"
	"github.com/phrazzld/mise-api/internal/generation"
	"google.golang.org/genai"
)

// modelsAPI is the subset of *genai.Models the client uses.
type modelsAPI interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
	GenerateImages(
		ctx context.Context,
		model string,
		prompt string,
		config *genai.GenerateImagesConfig,
	) (*genai.GenerateImagesResponse, error)
}

// Client generates dish images and wine pairings through the Gemini API.
type Client struct {
	models     modelsAPI
	textModel  string
	imageModel string
	logger     *slog.Logger
}

var (
	_ generation.ImageGenerator   = (*Client)(nil)
	_ generation.PairingGenerator = (*Client)(nil)
)

// NewClient creates a Client for the Gemini API backend.
func NewClient(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return newClient(client.Models, cfg, logger)
}

func newClient(models modelsAPI, cfg config.LLMConfig, logger *slog.Logger) (*Client, error) {
	if cfg.TextModel == "" || cfg.ImageModel == "" {
		return nil, fmt.Errorf("%w: text and image model names are required", generation.ErrInvalidConfig)
	}

	return &Client{
		models:     models,
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
		logger:     logger.With("component", "gemini_client"),
	}, nil
}

// GenerateImage renders req with Imagen and returns the first image as base64.
func (c *Client) GenerateImage(ctx context.Context, req generation.ImageRequest) (string, error) {
	prompt := generation.ImagePrompt(req)

	c.logger.DebugContext(ctx, "requesting image",
		"model", c.imageModel,
		"kind", req.Kind,
		"subject", req.Subject)

	resp, err := c.models.GenerateImages(ctx, c.imageModel, prompt, nil)
	if err != nil {
		return "", fmt.Errorf("image generation request failed: %w", err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 {
		return "", generation.ErrEmptyResponse
	}

	img := resp.GeneratedImages[0]
	if img.RAIFilteredReason != "" {
		return "", fmt.Errorf("%w: %s", generation.ErrContentBlocked, img.RAIFilteredReason)
	}
	if img.Image == nil || len(img.Image.ImageBytes) == 0 {
		return "", generation.ErrEmptyResponse
	}

	return base64.StdEncoding.EncodeToString(img.Image.ImageBytes), nil
}

// GeneratePairings asks the text model for wines matching description.
func (c *Client) GeneratePairings(ctx context.Context, description string) ([]domain.PairingSuggestion, error) {
	if description == "" {
		return nil, fmt.Errorf("%w: empty dish description", generation.ErrInvalidConfig)
	}

	resp, err := c.models.GenerateContent(ctx, c.textModel, genai.Text(generation.PairingPrompt(description)),
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"})
	if err != nil {
		return nil, fmt.Errorf("pairing request failed: %w", err)
	}
	if resp == nil {
		return nil, generation.ErrEmptyResponse
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("%w: %s", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}

	wines, err := generation.ParsePairings(resp.Text())
	if err != nil {
		c.logger.WarnContext(ctx, "unusable pairing response", "error", err)
		return nil, err
	}

	c.logger.DebugContext(ctx, "pairings generated", "count", len(wines))
	return wines, nil
}
