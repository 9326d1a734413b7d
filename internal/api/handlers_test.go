package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teklifware/product_match_api/internal/matcher"
)

// fakeMatcher returns a canned decision keyed by the request text
type fakeMatcher struct {
	decisions map[string]*matcher.MatchDecision
	err       error
}

func (f *fakeMatcher) Match(ctx context.Context, rawText string) (*matcher.MatchDecision, error) {
	if f.err != nil {
		return nil, f.err
	}
	if d, ok := f.decisions[rawText]; ok {
		return d, nil
	}
	return &matcher.MatchDecision{
		Candidates: []matcher.MatchCandidate{},
		Method:     matcher.MethodNoMatch,
	}, nil
}

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/v1/match-product", h.MatchProduct)
	router.POST("/api/v1/match-products", h.MatchProducts)
	router.POST("/api/v1/process-image", h.ProcessImage)
	router.GET("/api/v1/analytics/recent", h.RecentAnalytics)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMatchProductReturnsDecision(t *testing.T) {
	decision := &matcher.MatchDecision{
		Candidates: []matcher.MatchCandidate{
			{ProductID: "p1", Confidence: 1.0, Strategy: matcher.StrategyExact},
		},
		Method: matcher.MethodExact,
	}
	h := &Handler{Engine: &fakeMatcher{decisions: map[string]*matcher.MatchDecision{
		"NTG EF 63-50": decision,
	}}}
	router := newTestRouter(h)

	w := postJSON(t, router, "/api/v1/match-product", gin.H{"customerRequest": "NTG EF 63-50"})
	require.Equal(t, http.StatusOK, w.Code)

	var got matcher.MatchDecision
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, matcher.MethodExact, got.Method)
	require.Len(t, got.Candidates, 1)
	assert.Equal(t, "p1", got.Candidates[0].ProductID)
}

func TestMatchProductMissingBodyRejected(t *testing.T) {
	h := &Handler{Engine: &fakeMatcher{}}
	router := newTestRouter(h)

	w := postJSON(t, router, "/api/v1/match-product", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMatchProductEmptyRequestRejected(t *testing.T) {
	h := &Handler{Engine: &fakeMatcher{err: matcher.ErrEmptyRequest}}
	router := newTestRouter(h)

	w := postJSON(t, router, "/api/v1/match-product", gin.H{"customerRequest": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMatchProductCatalogDownIs503(t *testing.T) {
	h := &Handler{Engine: &fakeMatcher{
		err: fmt.Errorf("%w: connection refused", matcher.ErrCatalogUnavailable),
	}}
	router := newTestRouter(h)

	w := postJSON(t, router, "/api/v1/match-product", gin.H{"customerRequest": "boru"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMatchProductEngineErrorIs500(t *testing.T) {
	h := &Handler{Engine: &fakeMatcher{err: errors.New("katalog sorgusu başarısız")}}
	router := newTestRouter(h)

	w := postJSON(t, router, "/api/v1/match-product", gin.H{"customerRequest": "boru"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestMatchProductsBulkMatchesEachLine(t *testing.T) {
	good := &matcher.MatchDecision{
		Candidates: []matcher.MatchCandidate{{ProductID: "p1", Confidence: 0.9}},
		Method:     matcher.MethodFullText,
	}
	h := &Handler{Engine: &fakeMatcher{decisions: map[string]*matcher.MatchDecision{
		"dirsek 63-50": good,
	}}}
	router := newTestRouter(h)

	w := postJSON(t, router, "/api/v1/match-products", gin.H{
		"requests": []string{"dirsek 63-50", "bilinmeyen ürün"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count   int               `json:"count"`
		Results []bulkMatchResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, matcher.MethodFullText, resp.Results[0].Decision.Method)
	assert.Equal(t, matcher.MethodNoMatch, resp.Results[1].Decision.Method)
}

func TestMatchProductsEmptyListRejected(t *testing.T) {
	h := &Handler{Engine: &fakeMatcher{}}
	router := newTestRouter(h)

	w := postJSON(t, router, "/api/v1/match-products", gin.H{"requests": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProcessImageWithoutVisionProviderIs503(t *testing.T) {
	h := &Handler{Engine: &fakeMatcher{}}
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/process-image", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRecentAnalyticsWithoutStoreIs503(t *testing.T) {
	h := &Handler{Engine: &fakeMatcher{}}
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/recent", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestIntQueryDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?limit=25&bad=xyz&neg=-3", nil)

	assert.Equal(t, 25, intQuery(c, "limit", 50))
	assert.Equal(t, 50, intQuery(c, "missing", 50))
	assert.Equal(t, 50, intQuery(c, "bad", 50))
	assert.Equal(t, 50, intQuery(c, "neg", 50))
}
