// crud.go - Product, company and quotation persistence

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/teklifware/product_match_api/internal/matcher"
)

// ErrNotFound is returned when a row lookup by id finds nothing
var ErrNotFound = errors.New("record not found")

// ProductInput is the write model of a catalog product. SearchText is
// derived, never accepted from the client.
type ProductInput struct {
	ProductType string  `json:"product_type" binding:"required"`
	Diameter    string  `json:"diameter"`
	ProductCode string  `json:"product_code" binding:"required"`
	Description string  `json:"description"`
	BasePrice   float64 `json:"base_price"`
	Currency    string  `json:"currency"`
	Unit        string  `json:"unit"`
}

// buildSearchText concatenates the searchable fields into the single
// lowercased column both ILIKE and full-text queries run against
func buildSearchText(in ProductInput) string {
	parts := []string{in.ProductCode, in.ProductType, in.Diameter, in.Description}
	var kept []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.ToLower(strings.Join(kept, " "))
}

// CreateProduct inserts one catalog product and returns it
func (s *PostgresStore) CreateProduct(ctx context.Context, in ProductInput) (*matcher.CatalogProduct, error) {
	id := uuid.New().String()
	query := `INSERT INTO products
		(id, product_type, diameter, product_code, description, search_text, base_price, currency, unit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())`

	_, err := s.db.ExecContext(ctx, query, id, in.ProductType, in.Diameter,
		in.ProductCode, in.Description, buildSearchText(in), in.BasePrice, in.Currency, in.Unit)
	if err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	InvalidateSampleCache()
	return s.GetProduct(ctx, id)
}

// ListProducts returns catalog products ordered by code
func (s *PostgresStore) ListProducts(ctx context.Context, limit, offset int) ([]matcher.CatalogProduct, error) {
	query := fmt.Sprintf(`SELECT %s FROM products
		ORDER BY product_code
		LIMIT $1 OFFSET $2`, productColumns)

	return s.queryProducts(ctx, query, limit, offset)
}

// GetProduct fetches one product by id
func (s *PostgresStore) GetProduct(ctx context.Context, id string) (*matcher.CatalogProduct, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	products, err := s.queryProducts(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrNotFound
	}
	return &products[0], nil
}

// UpdateProduct replaces the mutable fields of one product
func (s *PostgresStore) UpdateProduct(ctx context.Context, id string, in ProductInput) (*matcher.CatalogProduct, error) {
	query := `UPDATE products SET
		product_type = $2, diameter = $3, product_code = $4, description = $5,
		search_text = $6, base_price = $7, currency = $8, unit = $9, updated_at = NOW()
		WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, id, in.ProductType, in.Diameter,
		in.ProductCode, in.Description, buildSearchText(in), in.BasePrice, in.Currency, in.Unit)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	InvalidateSampleCache()
	return s.GetProduct(ctx, id)
}

// DeleteProduct removes one product by id
func (s *PostgresStore) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	InvalidateSampleCache()
	return nil
}

// ImportRowError reports a single rejected row of a bulk import
type ImportRowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ImportResult summarizes a bulk product import
type ImportResult struct {
	Inserted int              `json:"inserted"`
	Failed   int              `json:"failed"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}

// BulkInsertProducts inserts pre-parsed catalog rows in one transaction.
// Rows failing validation are reported per-row; a database error aborts
// the whole batch.
func (s *PostgresStore) BulkInsertProducts(ctx context.Context, rows []ProductInput) (*ImportResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin import transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO products
		(id, product_type, diameter, product_code, description, search_text, base_price, currency, unit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare import statement: %w", err)
	}
	defer stmt.Close()

	result := &ImportResult{}
	for i, in := range rows {
		if strings.TrimSpace(in.ProductCode) == "" || strings.TrimSpace(in.ProductType) == "" {
			result.Failed++
			result.Errors = append(result.Errors, ImportRowError{
				Row:   i + 1,
				Error: "product_code ve product_type zorunludur",
			})
			continue
		}

		_, err := stmt.ExecContext(ctx, uuid.New().String(), in.ProductType, in.Diameter,
			in.ProductCode, in.Description, buildSearchText(in), in.BasePrice, in.Currency, in.Unit)
		if err != nil {
			return nil, fmt.Errorf("failed to insert import row %d: %w", i+1, err)
		}
		result.Inserted++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import transaction: %w", err)
	}

	InvalidateSampleCache()
	return result, nil
}

// Company is a customer company a quotation is addressed to
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" binding:"required"`
	TaxID     string    `json:"tax_id"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

const companyColumns = `id, name, COALESCE(tax_id, ''), COALESCE(email, ''),
	COALESCE(phone, ''), COALESCE(address, ''), created_at`

func scanCompanies(rows *sql.Rows) ([]Company, error) {
	var companies []Company
	for rows.Next() {
		var c Company
		err := rows.Scan(&c.ID, &c.Name, &c.TaxID, &c.Email, &c.Phone, &c.Address, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company row: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// CreateCompany inserts one company
func (s *PostgresStore) CreateCompany(ctx context.Context, c Company) (*Company, error) {
	c.ID = uuid.New().String()
	query := `INSERT INTO companies (id, name, tax_id, email, phone, address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())`

	_, err := s.db.ExecContext(ctx, query, c.ID, c.Name, c.TaxID, c.Email, c.Phone, c.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to insert company: %w", err)
	}
	return s.GetCompany(ctx, c.ID)
}

// ListCompanies returns companies ordered by name
func (s *PostgresStore) ListCompanies(ctx context.Context) ([]Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM companies ORDER BY name`, companyColumns)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()
	return scanCompanies(rows)
}

// GetCompany fetches one company by id
func (s *PostgresStore) GetCompany(ctx context.Context, id string) (*Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM companies WHERE id = $1`, companyColumns)

	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	defer rows.Close()

	companies, err := scanCompanies(rows)
	if err != nil {
		return nil, err
	}
	if len(companies) == 0 {
		return nil, ErrNotFound
	}
	return &companies[0], nil
}

// UpdateCompany replaces the mutable fields of one company
func (s *PostgresStore) UpdateCompany(ctx context.Context, id string, c Company) (*Company, error) {
	query := `UPDATE companies SET name = $2, tax_id = $3, email = $4, phone = $5, address = $6
		WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, id, c.Name, c.TaxID, c.Email, c.Phone, c.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to update company: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetCompany(ctx, id)
}

// DeleteCompany removes one company by id
func (s *PostgresStore) DeleteCompany(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// QuotationItem is one line of a quotation. AIMatched marks lines whose
// product was resolved by the matching engine rather than picked by hand;
// OriginalRequest preserves the customer's raw wording for review.
type QuotationItem struct {
	ID              string  `json:"id"`
	QuotationID     string  `json:"quotation_id"`
	ProductID       string  `json:"product_id" binding:"required"`
	Quantity        float64 `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	Currency        string  `json:"currency"`
	AIMatched       bool    `json:"ai_matched"`
	OriginalRequest string  `json:"original_request"`
}

// Quotation is a price offer header plus its line items
type Quotation struct {
	ID        string          `json:"id"`
	CompanyID string          `json:"company_id" binding:"required"`
	Status    string          `json:"status"`
	Notes     string          `json:"notes"`
	Items     []QuotationItem `json:"items"`
	CreatedAt time.Time       `json:"created_at"`
}

// CreateQuotation inserts the header and all items in one transaction
func (s *PostgresStore) CreateQuotation(ctx context.Context, q Quotation) (*Quotation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin quotation transaction: %w", err)
	}
	defer tx.Rollback()

	q.ID = uuid.New().String()
	if q.Status == "" {
		q.Status = "draft"
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO quotations (id, company_id, status, notes, created_at)
		VALUES ($1, $2, $3, $4, NOW())`,
		q.ID, q.CompanyID, q.Status, q.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to insert quotation: %w", err)
	}

	for i := range q.Items {
		q.Items[i].ID = uuid.New().String()
		q.Items[i].QuotationID = q.ID
		item := q.Items[i]

		_, err = tx.ExecContext(ctx,
			`INSERT INTO quotation_items
			(id, quotation_id, product_id, quantity, unit_price, currency, ai_matched, original_request)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			item.ID, item.QuotationID, item.ProductID, item.Quantity,
			item.UnitPrice, item.Currency, item.AIMatched, item.OriginalRequest)
		if err != nil {
			return nil, fmt.Errorf("failed to insert quotation item %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit quotation transaction: %w", err)
	}

	return s.GetQuotation(ctx, q.ID)
}

// ListQuotations returns quotation headers, newest first. Items are only
// loaded on GetQuotation.
func (s *PostgresStore) ListQuotations(ctx context.Context) ([]Quotation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company_id, status, COALESCE(notes, ''), created_at
		FROM quotations ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotations: %w", err)
	}
	defer rows.Close()

	var quotations []Quotation
	for rows.Next() {
		var q Quotation
		if err := rows.Scan(&q.ID, &q.CompanyID, &q.Status, &q.Notes, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quotation row: %w", err)
		}
		quotations = append(quotations, q)
	}
	return quotations, rows.Err()
}

// GetQuotation fetches one quotation with its items
func (s *PostgresStore) GetQuotation(ctx context.Context, id string) (*Quotation, error) {
	var q Quotation
	err := s.db.QueryRowContext(ctx,
		`SELECT id, company_id, status, COALESCE(notes, ''), created_at
		FROM quotations WHERE id = $1`, id).
		Scan(&q.ID, &q.CompanyID, &q.Status, &q.Notes, &q.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, quotation_id, product_id, quantity, unit_price, currency, ai_matched, COALESCE(original_request, '')
		FROM quotation_items WHERE quotation_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load quotation items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item QuotationItem
		err := rows.Scan(&item.ID, &item.QuotationID, &item.ProductID, &item.Quantity,
			&item.UnitPrice, &item.Currency, &item.AIMatched, &item.OriginalRequest)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quotation item: %w", err)
		}
		q.Items = append(q.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &q, nil
}
