package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePairings(t *testing.T) {
	t.Parallel()

	t.Run("bare array", func(t *testing.T) {
		wines, err := ParsePairings(`[{"wine_name":"Barolo","wine_type":"Red","region":"Piedmont"}]`)
		require.NoError(t, err)
		require.Len(t, wines, 1)
		assert.Equal(t, "Barolo", wines[0].Name)
		assert.Equal(t, "Piedmont", wines[0].Region)
	})

	t.Run("fenced object", func(t *testing.T) {
		raw := "```json\n{\"wines\":[{\"wine_name\":\"Chablis\",\"wine_type\":\"White\"},{\"wine_name\":\"\",\"wine_type\":\"Red\"}]}\n```"
		wines, err := ParsePairings(raw)
		require.NoError(t, err)
		require.Len(t, wines, 1)
		assert.Equal(t, "Chablis", wines[0].Name)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ParsePairings("  ")
		assert.ErrorIs(t, err, ErrEmptyResponse)

		_, err = ParsePairings(`[]`)
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := ParsePairings(`[{"wine_name":`)
		assert.ErrorIs(t, err, ErrInvalidResponse)
	})
}

func TestDecodeImage(t *testing.T) {
	t.Parallel()

	data, err := DecodeImage("data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	data, err = DecodeImage("aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	_, err = DecodeImage("not base64!")
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, err = DecodeImage("")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestPrompts(t *testing.T) {
	t.Parallel()

	dish := ImagePrompt(ImageRequest{Kind: ImageKindDish, Subject: "Paella", Ingredients: []string{"rice", "saffron"}})
	assert.Contains(t, dish, "Paella made with rice, saffron")

	plain := ImagePrompt(ImageRequest{Subject: "Paella"})
	assert.NotContains(t, plain, "made with")

	starch := ImagePrompt(ImageRequest{Kind: ImageKindStarch, Subject: "Pommes purée", Steps: []string{"Boil.", "Mash."}})
	assert.Contains(t, starch, "Boil. Mash.")

	assert.Contains(t, PairingPrompt("Paella with rice"), "Paella with rice")
}
