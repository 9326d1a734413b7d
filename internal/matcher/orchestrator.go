// orchestrator.go - Sequences the matching stages and emits the final decision

package matcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teklifware/product_match_api/internal/common"
)

// ErrEmptyRequest is returned when the customer request is blank; no matcher
// stage is invoked in that case.
var ErrEmptyRequest = errors.New("customer request is empty")

// ErrCatalogUnavailable marks catalog failures that survived the storage
// layer's single retry. A broken store aborts the match; it never reports
// a silent "no match".
var ErrCatalogUnavailable = errors.New("katalog sorgusu başarısız")

// Decision method names, exposed to callers
const (
	MethodExact            = "exact-match"
	MethodFullText         = "fulltext-search"
	MethodFullTextFallback = "fulltext-fallback"
	MethodAIFallback       = "ai-fallback"
	MethodNoMatch          = "no-match"
)

// Config holds the engine tuning knobs. The defaults mirror the production
// catalog settings; gap and candidate caps are the precision/recall levers.
type Config struct {
	SearchLimit      int           // Result cap for pattern/full-text queries
	AICandidateLimit int           // Candidates forwarded to the oracle
	AISampleLimit    int           // Unranked pool size when lexical search is empty
	MultiMatchGap    float64       // Confidence gap for the "similar set"
	ExactThreshold   float64       // Exact result is terminal at or above this
	LexicalThreshold float64       // Lexical top result accepted at or above this
	OracleTimeout    time.Duration // Budget for one oracle call
}

// DefaultConfig returns the production defaults
func DefaultConfig() Config {
	return Config{
		SearchLimit:      10,
		AICandidateLimit: 10,
		AISampleLimit:    100,
		MultiMatchGap:    0.1,
		ExactThreshold:   0.9,
		LexicalThreshold: 0.7,
		OracleTimeout:    15 * time.Second,
	}
}

// Engine runs the tiered match strategy over one injected catalog snapshot.
// Stateless between requests; safe for concurrent use.
type Engine struct {
	catalog Catalog
	oracle  Oracle        // nil disables the generative stage
	sink    AnalyticsSink // nil disables analytics
	cfg     Config
}

// NewEngine wires an engine from its collaborators
func NewEngine(catalog Catalog, oracle Oracle, sink AnalyticsSink, cfg Config) *Engine {
	return &Engine{
		catalog: catalog,
		oracle:  oracle,
		sink:    sink,
		cfg:     cfg,
	}
}

// Match resolves a raw customer request to zero or more ranked catalog
// candidates: exact code/pattern match first, then lexical search, then the
// generative oracle. Only input errors and persistent catalog failures are
// returned as errors; every oracle problem degrades to the best available
// lexical result or a no-match decision.
func (e *Engine) Match(ctx context.Context, rawText string) (*MatchDecision, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, ErrEmptyRequest
	}

	rc := common.NewRequestContext(rawText)
	start := time.Now()

	rc.StartStep("parse_request")
	parsed := Normalize(rawText)
	rc.EndStep("success", nil, nil)

	// Stage 1: exact match
	rc.StartStep("exact_match")
	exact, err := e.tryExact(ctx, parsed)
	if err != nil {
		rc.EndStep("failed", nil, err)
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	rc.EndStep("success", nil, nil)

	if exact != nil && exact.Confidence >= e.cfg.ExactThreshold {
		rc.LogInfo("✓ Tam eşleşme: %s (%.2f)", exact.Product.ProductCode, exact.Confidence)
		return e.resolve(rc, parsed, MethodExact, []MatchCandidate{*exact}, false, "", "", start), nil
	}

	// Stage 2: lexical search
	rc.StartStep("lexical_match")
	lexical, err := e.searchLexical(ctx, parsed)
	if err != nil {
		rc.EndStep("failed", nil, err)
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	rc.EndStep("success", nil, nil)

	if len(lexical) > 0 && lexical[0].Confidence >= e.cfg.LexicalThreshold {
		rc.LogInfo("✓ Metin eşleşmesi: %s (%.2f)", lexical[0].Product.ProductCode, lexical[0].Confidence)

		// Tie-break: near-tied candidates force human disambiguation even
		// though a single top score exists
		similar := similarSet(lexical, e.cfg.MultiMatchGap)
		if len(similar) >= 2 {
			msg := fmt.Sprintf("%d benzer ürün bulundu. Lütfen uygun olanı seçin:", len(similar))
			return e.resolve(rc, parsed, MethodFullText, similar, true, msg, "", start), nil
		}
		return e.resolve(rc, parsed, MethodFullText, lexical, false, "", "", start), nil
	}

	// Stage 3: generative fallback
	if e.oracle == nil {
		rc.LogWarning("AI servisi yapılandırılmamış, metin arama sonuçları döndürülüyor")
		return e.resolve(rc, parsed, MethodFullTextFallback, lexical, false, "",
			"AI oracle not available, using full-text results", start), nil
	}

	rc.StartStep("generative_match")
	pool := make([]CatalogProduct, 0, len(lexical))
	for _, r := range lexical {
		pool = append(pool, r.Product)
	}
	if len(pool) == 0 {
		// No lexical grounding at all: hand the oracle a bounded, unranked
		// catalog sample instead
		pool, err = e.catalog.SampleProducts(ctx, e.cfg.AISampleLimit)
		if err != nil {
			rc.EndStep("failed", nil, err)
			return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
		}
	}
	aiCandidate, tokens := e.aiMatch(ctx, rawText, pool, rc)
	if aiCandidate != nil {
		rc.EndStep("success", tokens, nil)
		rc.LogInfo("✓ AI eşleşmesi: %s (%.2f)", aiCandidate.Product.ProductCode, aiCandidate.Confidence)
		return e.resolve(rc, parsed, MethodAIFallback, []MatchCandidate{*aiCandidate}, false, "", "", start), nil
	}
	rc.EndStep("skipped", tokens, nil)

	// Terminal: no match
	rc.LogWarning("✗ Eşleşme bulunamadı")
	return e.resolve(rc, parsed, MethodNoMatch, []MatchCandidate{}, false, "", "Ürün bulunamadı", start), nil
}

// resolve builds the terminal decision, logs the summary and records the
// outcome to the analytics sink regardless of which state was reached.
func (e *Engine) resolve(rc *common.RequestContext, parsed ParsedRequest, method string,
	candidates []MatchCandidate, multiMatch bool, multiMatchMessage, note string, start time.Time) *MatchDecision {

	decision := &MatchDecision{
		Candidates:        candidates,
		MultiMatch:        multiMatch,
		MultiMatchMessage: multiMatchMessage,
		Method:            method,
		Note:              note,
		TotalTimeMS:       time.Since(start).Milliseconds(),
		Parsed:            parsed,
	}
	if decision.Candidates == nil {
		decision.Candidates = []MatchCandidate{}
	}

	rc.GetSummary()
	e.record(rc, decision)
	return decision
}

// record writes the decision to the analytics sink. Fire-and-forget: the
// write happens on its own goroutine and never blocks the response path.
func (e *Engine) record(rc *common.RequestContext, decision *MatchDecision) {
	if e.sink == nil {
		return
	}

	rec := MatchRecord{
		RequestID:       rc.RequestID,
		CustomerRequest: decision.Parsed.RawText,
		Strategy:        "none",
		ElapsedMS:       decision.TotalTimeMS,
		TokensUsed:      rc.TotalTokens.TotalTokens,
	}
	if len(decision.Candidates) > 0 {
		rec.ProductID = decision.Candidates[0].ProductID
		rec.Strategy = decision.Candidates[0].Strategy
		rec.Confidence = decision.Candidates[0].Confidence
	}

	go e.sink.Record(rec)
}
