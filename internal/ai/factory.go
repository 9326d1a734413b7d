// factory.go - Match provider factory for creating oracle instances

package ai

import (
	"fmt"
	"log"

	"github.com/teklifware/product_match_api/configs"
)

// CreateMatchProvider creates a match oracle based on configuration.
// An empty AI_PROVIDER disables the generative tier entirely; the engine
// then answers from exact and lexical matching only.
func CreateMatchProvider() (MatchProvider, error) {
	provider := configs.AI_PROVIDER

	switch provider {
	case "":
		log.Printf("⚪ AI sağlayıcı yapılandırılmadı, üretken eşleştirme kapalı")
		return nil, nil

	case "openai":
		log.Printf("🟢 Creating OpenAI match provider (%s)", configs.OPENAI_MODEL_NAME)
		return NewOpenAIProvider(configs.OPENAI_API_KEY, configs.OPENAI_MODEL_NAME), nil

	case "gemini":
		log.Printf("🔵 Creating Gemini match provider (%s)", configs.GEMINI_MODEL_NAME)
		return NewGeminiProvider(configs.GEMINI_API_KEY, configs.GEMINI_MODEL_NAME), nil

	default:
		return nil, fmt.Errorf("unsupported AI provider: %s (supported: openai, gemini)", provider)
	}
}

// CreateVisionProvider creates the request-line extractor. Only Gemini
// carries a vision model here, so a nil provider is normal when the
// configured provider is OpenAI or generative matching is disabled.
func CreateVisionProvider() VisionProvider {
	if configs.GEMINI_API_KEY == "" {
		log.Printf("⚪ Görsel okuma kapalı (GEMINI_API_KEY tanımsız)")
		return nil
	}

	log.Printf("📷 Creating Gemini vision provider (%s)", configs.GEMINI_MODEL_NAME)
	return NewGeminiProvider(configs.GEMINI_API_KEY, configs.GEMINI_MODEL_NAME)
}
