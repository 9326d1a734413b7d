// handlers.go - HTTP handlers for matching, catalog and quotation endpoints

package api

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/teklifware/product_match_api/configs"
	"github.com/teklifware/product_match_api/internal/ai"
	"github.com/teklifware/product_match_api/internal/matcher"
	"github.com/teklifware/product_match_api/internal/processor"
	"github.com/teklifware/product_match_api/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
)

// maxImageSize caps uploaded request-list photos at 10 MB
const maxImageSize = 10 << 20

// Matcher resolves one raw customer request to a decision
type Matcher interface {
	Match(ctx context.Context, rawText string) (*matcher.MatchDecision, error)
}

// AnalyticsReader serves recorded decisions for review
type AnalyticsReader interface {
	RecentDecisions(ctx context.Context, limit int) ([]bson.M, error)
}

// Handler carries the wired collaborators of the HTTP surface. Vision and
// Analytics may be nil; their endpoints then answer 503.
type Handler struct {
	Engine    Matcher
	Store     *storage.PostgresStore
	Vision    ai.VisionProvider
	Analytics AnalyticsReader
}

// matchRequest is the body of POST /api/v1/match-product
type matchRequest struct {
	CustomerRequest string `json:"customerRequest" binding:"required"`
}

// bulkMatchRequest is the body of POST /api/v1/match-products
type bulkMatchRequest struct {
	Requests []string `json:"requests" binding:"required"`
}

// bulkMatchResult pairs one request line with its decision or error
type bulkMatchResult struct {
	Request  string                 `json:"request"`
	Decision *matcher.MatchDecision `json:"decision,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// MatchProduct resolves a single customer request line
func (h *Handler) MatchProduct(c *gin.Context) {
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "customerRequest alanı zorunludur"})
		return
	}

	decision, err := h.Engine.Match(c.Request.Context(), req.CustomerRequest)
	if errors.Is(err, matcher.ErrEmptyRequest) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "customerRequest boş olamaz"})
		return
	}
	if errors.Is(err, matcher.ErrCatalogUnavailable) {
		log.Printf("❌ Katalog erişilemiyor: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "katalog şu anda erişilemiyor"})
		return
	}
	if err != nil {
		log.Printf("❌ Eşleştirme hatası: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "eşleştirme başarısız: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, decision)
}

// MatchProducts resolves a list of request lines sequentially. One bad line
// does not fail the batch; each line carries its own decision or error.
func (h *Handler) MatchProducts(c *gin.Context) {
	var req bulkMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Requests) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "requests alanı zorunludur"})
		return
	}

	results := make([]bulkMatchResult, 0, len(req.Requests))
	for _, line := range req.Requests {
		decision, err := h.Engine.Match(c.Request.Context(), line)
		if err != nil {
			results = append(results, bulkMatchResult{Request: line, Error: err.Error()})
			continue
		}
		results = append(results, bulkMatchResult{Request: line, Decision: decision})
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(results),
		"results": results,
	})
}

// ProcessImage extracts request lines from an uploaded photo of a customer
// request list and matches each line
func (h *Handler) ProcessImage(c *gin.Context) {
	if h.Vision == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "görsel okuma servisi yapılandırılmamış"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image dosyası zorunludur"})
		return
	}
	if fileHeader.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "görsel 10MB sınırını aşıyor"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "görsel açılamadı"})
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "görsel okunamadı"})
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	processed, mimeType, err := processor.PreprocessImageBytes(imageData, mimeType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "görsel işlenemedi: " + err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(configs.AI_TIMEOUT_SEC)*time.Second)
	defer cancel()

	lines, tokens, err := h.Vision.ExtractRequestLines(ctx, processed, mimeType)
	if err != nil {
		log.Printf("❌ Görselden satır çıkarma hatası: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "görselden talep satırları okunamadı: " + err.Error()})
		return
	}

	results := make([]bulkMatchResult, 0, len(lines))
	for _, line := range lines {
		decision, err := h.Engine.Match(c.Request.Context(), line)
		if err != nil {
			results = append(results, bulkMatchResult{Request: line, Error: err.Error()})
			continue
		}
		results = append(results, bulkMatchResult{Request: line, Decision: decision})
	}

	resp := gin.H{
		"lines":   lines,
		"count":   len(results),
		"results": results,
	}
	if tokens != nil {
		resp["tokens"] = tokens
	}
	c.JSON(http.StatusOK, resp)
}

// --- Products ---

// ListProducts returns catalog products with limit/offset paging
func (h *Handler) ListProducts(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	products, err := h.Store.ListProducts(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if products == nil {
		products = []matcher.CatalogProduct{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(products), "products": products})
}

// CreateProduct inserts one catalog product
func (h *Handler) CreateProduct(c *gin.Context) {
	var in storage.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_code ve product_type zorunludur"})
		return
	}

	product, err := h.Store.CreateProduct(c.Request.Context(), in)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, product)
}

// GetProduct fetches one product by id
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.Store.GetProduct(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "ürün bulunamadı"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, product)
}

// UpdateProduct replaces one product
func (h *Handler) UpdateProduct(c *gin.Context) {
	var in storage.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_code ve product_type zorunludur"})
		return
	}

	product, err := h.Store.UpdateProduct(c.Request.Context(), c.Param("id"), in)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "ürün bulunamadı"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes one product
func (h *Handler) DeleteProduct(c *gin.Context) {
	err := h.Store.DeleteProduct(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "ürün bulunamadı"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// importRequest is the body of POST /api/v1/products/import
type importRequest struct {
	Products []storage.ProductInput `json:"products" binding:"required"`
}

// ImportProducts bulk-inserts pre-parsed catalog rows
func (h *Handler) ImportProducts(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Products) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "products alanı zorunludur"})
		return
	}

	result, err := h.Store.BulkInsertProducts(c.Request.Context(), req.Products)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// --- Companies ---

// ListCompanies returns all companies
func (h *Handler) ListCompanies(c *gin.Context) {
	companies, err := h.Store.ListCompanies(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if companies == nil {
		companies = []storage.Company{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(companies), "companies": companies})
}

// CreateCompany inserts one company
func (h *Handler) CreateCompany(c *gin.Context) {
	var company storage.Company
	if err := c.ShouldBindJSON(&company); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name alanı zorunludur"})
		return
	}

	created, err := h.Store.CreateCompany(c.Request.Context(), company)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetCompany fetches one company by id
func (h *Handler) GetCompany(c *gin.Context) {
	company, err := h.Store.GetCompany(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "firma bulunamadı"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, company)
}

// UpdateCompany replaces one company
func (h *Handler) UpdateCompany(c *gin.Context) {
	var company storage.Company
	if err := c.ShouldBindJSON(&company); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name alanı zorunludur"})
		return
	}

	updated, err := h.Store.UpdateCompany(c.Request.Context(), c.Param("id"), company)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "firma bulunamadı"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteCompany removes one company
func (h *Handler) DeleteCompany(c *gin.Context) {
	err := h.Store.DeleteCompany(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "firma bulunamadı"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// --- Quotations ---

// ListQuotations returns quotation headers, newest first
func (h *Handler) ListQuotations(c *gin.Context) {
	quotations, err := h.Store.ListQuotations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if quotations == nil {
		quotations = []storage.Quotation{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(quotations), "quotations": quotations})
}

// CreateQuotation inserts a quotation header plus items
func (h *Handler) CreateQuotation(c *gin.Context) {
	var q storage.Quotation
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "company_id ve items zorunludur"})
		return
	}

	created, err := h.Store.CreateQuotation(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetQuotation fetches one quotation with items
func (h *Handler) GetQuotation(c *gin.Context) {
	q, err := h.Store.GetQuotation(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "teklif bulunamadı"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, q)
}

// --- Analytics ---

// RecentAnalytics returns the latest recorded match decisions
func (h *Handler) RecentAnalytics(c *gin.Context) {
	if h.Analytics == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analitik deposu yapılandırılmamış"})
		return
	}

	limit := intQuery(c, "limit", 50)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	decisions, err := h.Analytics.RecentDecisions(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if decisions == nil {
		decisions = []bson.M{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(decisions), "decisions": decisions})
}

// intQuery reads an integer query parameter with a default
func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		return def
	}
	return val
}
