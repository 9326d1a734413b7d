// logsink.go - Log-only analytics fallback when MongoDB is not configured

package analytics

import (
	"log"

	"github.com/teklifware/product_match_api/internal/matcher"
)

// LogSink writes match decisions to the application log. Used when
// MONGO_URI is unset so the engine always has a sink to call.
type LogSink struct{}

// NewLogSink creates a log-only sink
func NewLogSink() *LogSink {
	log.Println("⚪ MongoDB yapılandırılmadı, analitik kayıtları log'a yazılacak")
	return &LogSink{}
}

// Record logs one decision
func (s *LogSink) Record(rec matcher.MatchRecord) {
	log.Printf("📈 [%s] karar: strateji=%s ürün=%s güven=%.2f süre=%dms token=%d",
		rec.RequestID, rec.Strategy, rec.ProductID, rec.Confidence, rec.ElapsedMS, rec.TokensUsed)
}
