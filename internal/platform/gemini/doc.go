// Package gemini implements the generation ports on top of Google's genai
// SDK: Imagen for dish and starch pictures, Gemini JSON output for wine
// pairings. Retries are the caller's concern (see generation.Do).
package gemini
