// postgres.go - PostgreSQL catalog store with Turkish full-text search

package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/teklifware/product_match_api/internal/matcher"
)

// PostgresStore implements matcher.Catalog plus the CRUD surface of the API
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the connection pool and verifies connectivity
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	log.Println("✅ Connected to PostgreSQL successfully!")
	return &PostgresStore{db: db}, nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() {
	if s.db != nil {
		s.db.Close()
		log.Println("PostgreSQL connection closed")
	}
}

const productColumns = `id, product_type, COALESCE(diameter, ''), product_code,
	COALESCE(description, ''), search_text, base_price, currency, unit`

// scanProducts reads catalog rows in productColumns order
func scanProducts(rows *sql.Rows) ([]matcher.CatalogProduct, error) {
	var products []matcher.CatalogProduct
	for rows.Next() {
		var p matcher.CatalogProduct
		err := rows.Scan(&p.ID, &p.ProductType, &p.Diameter, &p.ProductCode,
			&p.Description, &p.SearchText, &p.BasePrice, &p.Currency, &p.Unit)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// isTransient reports whether a query error is worth one immediate retry.
// Connection class errors (bad conn, network, SQLSTATE 08xxx) qualify;
// anything else is a real query problem and propagates unchanged.
func isTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return strings.HasPrefix(string(pqErr.Code), "08")
	}
	return false
}

// queryProducts runs a catalog query with a single retry on transient errors
func (s *PostgresStore) queryProducts(ctx context.Context, query string, args ...interface{}) ([]matcher.CatalogProduct, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil && isTransient(err) {
		log.Printf("⚠️ Geçici veritabanı hatası, sorgu tekrarlanıyor: %v", err)
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog query failed: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// SearchByCode finds products whose code or search text contains the code
func (s *PostgresStore) SearchByCode(ctx context.Context, code string) ([]matcher.CatalogProduct, error) {
	query := fmt.Sprintf(`SELECT %s FROM products
		WHERE product_code ILIKE $1 OR search_text ILIKE $1
		ORDER BY product_code
		LIMIT 1`, productColumns)

	return s.queryProducts(ctx, query, "%"+code+"%")
}

// SearchByPattern finds products whose search text contains the measurement
// pattern, e.g. "200-100"
func (s *PostgresStore) SearchByPattern(ctx context.Context, pattern string, limit int) ([]matcher.CatalogProduct, error) {
	query := fmt.Sprintf(`SELECT %s FROM products
		WHERE search_text ILIKE $1
		ORDER BY product_code
		LIMIT $2`, productColumns)

	return s.queryProducts(ctx, query, "%"+pattern+"%", limit)
}

// fullTextQuery matches against the stored, GIN-indexed search_vector
// column (generated from search_text with the turkish configuration) so
// large catalogs never re-stem per row
var fullTextQuery = fmt.Sprintf(`SELECT %s FROM products
	WHERE search_vector @@ plainto_tsquery('turkish', $1)
	ORDER BY ts_rank(search_vector, plainto_tsquery('turkish', $1)) DESC
	LIMIT $2`, productColumns)

// SearchFullText runs a Turkish full-text query over the indexed search
// vector. plainto_tsquery ANDs the keywords and handles Turkish stemming,
// so "boru dirsek" matches rows indexed as "borular" too.
func (s *PostgresStore) SearchFullText(ctx context.Context, keywords []string, limit int) ([]matcher.CatalogProduct, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	return s.queryProducts(ctx, fullTextQuery, strings.Join(keywords, " "), limit)
}

// SampleProducts returns a bounded unranked slice of the catalog, used as
// the oracle candidate pool when lexical search comes up empty. Served
// from a short-lived cache since the sample does not need freshness.
func (s *PostgresStore) SampleProducts(ctx context.Context, limit int) ([]matcher.CatalogProduct, error) {
	return getOrLoadSample(ctx, limit, s.loadSample)
}

func (s *PostgresStore) loadSample(ctx context.Context, limit int) ([]matcher.CatalogProduct, error) {
	query := fmt.Sprintf(`SELECT %s FROM products
		ORDER BY product_code
		LIMIT $1`, productColumns)

	return s.queryProducts(ctx, query, limit)
}
