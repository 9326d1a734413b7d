// types.go - Core data model and collaborator interfaces of the matching engine

package matcher

import (
	"context"

	"github.com/teklifware/product_match_api/internal/common"
)

// Strategy tags attached to individual match candidates
const (
	StrategyExact      = "exact"
	StrategyLexical    = "lexical"
	StrategyGenerative = "generative"
)

// CatalogProduct is a read-only snapshot of one catalog row (SKU)
type CatalogProduct struct {
	ID          string  `json:"id"`
	ProductType string  `json:"product_type"`
	Diameter    string  `json:"diameter,omitempty"`
	ProductCode string  `json:"product_code"`
	Description string  `json:"description,omitempty"`
	SearchText  string  `json:"search_text"`
	BasePrice   float64 `json:"base_price"`
	Currency    string  `json:"currency"`
	Unit        string  `json:"unit"`
}

// MatchCandidate is the result of scoring one catalog product against one
// parsed request. Created once, never mutated, ordered by confidence.
type MatchCandidate struct {
	ProductID  string         `json:"product_id"`
	Product    CatalogProduct `json:"product"`
	Confidence float64        `json:"confidence"`
	Strategy   string         `json:"strategy"`
	Reasoning  string         `json:"reasoning"`
	ElapsedMS  int64          `json:"execution_time"`
}

// MatchDecision is the orchestrator output for one request
type MatchDecision struct {
	Candidates        []MatchCandidate `json:"matched"`
	MultiMatch        bool             `json:"isMultiMatch"`
	MultiMatchMessage string           `json:"multiMatchMessage,omitempty"`
	Method            string           `json:"method"`
	Note              string           `json:"message,omitempty"`
	TotalTimeMS       int64            `json:"totalTime"`
	Parsed            ParsedRequest    `json:"parsed"`
}

// Catalog is the read interface onto the external product store.
// Implementations must be safe for concurrent use; the engine never writes.
type Catalog interface {
	// SearchByCode finds products whose code or search text contains the
	// given code substring (case-insensitive).
	SearchByCode(ctx context.Context, code string) ([]CatalogProduct, error)

	// SearchByPattern finds products whose search text contains the given
	// measurement pattern substring, capped at limit results.
	SearchByPattern(ctx context.Context, pattern string, limit int) ([]CatalogProduct, error)

	// SearchFullText runs a language-aware full-text query over the indexed
	// search text, capped at limit results.
	SearchFullText(ctx context.Context, keywords []string, limit int) ([]CatalogProduct, error)

	// SampleProducts returns a bounded, unranked slice of the catalog used
	// as the oracle candidate pool when lexical search finds nothing.
	SampleProducts(ctx context.Context, limit int) ([]CatalogProduct, error)
}

// OraclePick is a validated oracle answer: one candidate id plus confidence
type OraclePick struct {
	ProductID  string
	Confidence float64
	Reasoning  string
	Tokens     common.TokenUsage
}

// Oracle is the generative scoring service consulted as a last resort.
// A nil Oracle on the engine disables the generative stage entirely.
type Oracle interface {
	// PickProduct submits the raw request and a bounded candidate list and
	// returns exactly one pick, or an error on any transport/parse problem.
	PickProduct(ctx context.Context, rawText string, candidates []CatalogProduct) (*OraclePick, error)

	// GetProviderName returns the provider name (e.g. "openai", "gemini")
	GetProviderName() string
}

// MatchRecord is the analytics payload written after every decision
type MatchRecord struct {
	RequestID       string
	CustomerRequest string
	ProductID       string // empty when no match
	Strategy        string // candidate strategy tag, or "none"
	Confidence      float64
	ElapsedMS       int64
	TokensUsed      int
}

// AnalyticsSink records decisions for offline review. Implementations must
// never block the caller; the engine invokes Record on its own goroutine.
type AnalyticsSink interface {
	Record(rec MatchRecord)
}
