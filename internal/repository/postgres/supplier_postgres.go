package postgres

import (
	"context"
	"database/sql"

	"marketapi/internal/model"
	"marketapi/internal/repository"
)

// SupplierPostgres is a PostgreSQL implementation of repository.SupplierRepository.
type SupplierPostgres struct {
	db *sql.DB
}

// NewSupplierPostgres creates a new SupplierPostgres repository.
func NewSupplierPostgres(db *sql.DB) *SupplierPostgres {
	return &SupplierPostgres{db: db}
}

var _ repository.SupplierRepository = (*SupplierPostgres)(nil)

const supplierColumns = `id, code, name, abn, status, data, created_at`

func scanSupplier(s rowScanner) (*model.Supplier, error) {
	var (
		sup model.Supplier
		raw []byte
	)
	if err := s.Scan(&sup.ID, &sup.Code, &sup.Name, &sup.ABN, &sup.Status, &raw, &sup.CreatedAt); err != nil {
		return nil, err
	}
	data, err := decodeJSON(raw)
	if err != nil {
		return nil, err
	}
	sup.Data = data
	sup.Frameworks = []string{}
	sup.Domains = []model.SupplierDomain{}
	return &sup, nil
}

// FindByCode returns the supplier with its frameworks and domains.
func (r *SupplierPostgres) FindByCode(ctx context.Context, code int64) (*model.Supplier, error) {
	const q = `SELECT ` + supplierColumns + ` FROM suppliers WHERE code = $1`
	sup, err := scanSupplier(r.db.QueryRowContext(ctx, q, code))
	if err != nil {
		return nil, err
	}
	if err := r.loadRelations(ctx, sup); err != nil {
		return nil, err
	}
	return sup, nil
}

func (r *SupplierPostgres) loadRelations(ctx context.Context, sup *model.Supplier) error {
	const qFrameworks = `
		SELECT f.slug
		FROM supplier_frameworks sf
		JOIN frameworks f ON f.id = sf.framework_id
		WHERE sf.supplier_id = $1
		ORDER BY f.slug
	`
	rows, err := r.db.QueryContext(ctx, qFrameworks, sup.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			rows.Close()
			return err
		}
		sup.Frameworks = append(sup.Frameworks, slug)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	const qDomains = `
		SELECT sd.id, sd.supplier_id, sd.domain_id, d.name, sd.status
		FROM supplier_domains sd
		JOIN domains d ON d.id = sd.domain_id
		WHERE sd.supplier_id = $1
		ORDER BY d.name
	`
	rows, err = r.db.QueryContext(ctx, qDomains, sup.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var d model.SupplierDomain
		if err := rows.Scan(&d.ID, &d.SupplierID, &d.DomainID, &d.DomainName, &d.Status); err != nil {
			return err
		}
		sup.Domains = append(sup.Domains, d)
	}
	return rows.Err()
}

// FindByABN matches an ABN with whitespace removed on both sides.
func (r *SupplierPostgres) FindByABN(ctx context.Context, abn string) (*model.Supplier, error) {
	const q = `
		SELECT ` + supplierColumns + `
		FROM suppliers
		WHERE regexp_replace(abn, '\s', '', 'g') = $1
		ORDER BY id
		LIMIT 1
	`
	return scanSupplier(r.db.QueryRowContext(ctx, q, abn))
}

// List pages through suppliers, optionally filtered by a case-insensitive name fragment.
func (r *SupplierPostgres) List(ctx context.Context, name string, pq repository.PageQuery) (*repository.PageResult[model.Supplier], error) {
	pattern := "%" + name + "%"

	const qCount = `SELECT COUNT(*) FROM suppliers WHERE name ILIKE $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, pattern).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + supplierColumns + `
		FROM suppliers
		WHERE name ILIKE $1
		ORDER BY name, code
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, pattern, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Supplier, 0)
	for rows.Next() {
		sup, err := scanSupplier(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *sup)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Supplier]{Items: items, Total: total}, nil
}

func scanApplication(s rowScanner) (*model.Application, error) {
	var (
		a    model.Application
		code sql.NullInt64
	)
	if err := s.Scan(&a.ID, &code, &a.Type, &a.Status, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.SupplierCode = int64Ptr(code)
	return &a, nil
}

// FindApplication fetches a single application.
func (r *SupplierPostgres) FindApplication(ctx context.Context, id int64) (*model.Application, error) {
	const q = `SELECT id, supplier_code, type, status, created_at FROM applications WHERE id = $1`
	return scanApplication(r.db.QueryRowContext(ctx, q, id))
}

// ApplicationsForSupplier lists the supplier's applications of one type.
func (r *SupplierPostgres) ApplicationsForSupplier(ctx context.Context, code int64, appType string) ([]model.Application, error) {
	const q = `
		SELECT id, supplier_code, type, status, created_at
		FROM applications
		WHERE supplier_code = $1 AND type = $2
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, q, code, appType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// ApplicationExistsForABN reports whether any application carries the ABN.
func (r *SupplierPostgres) ApplicationExistsForABN(ctx context.Context, abn string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM applications
			WHERE regexp_replace(COALESCE(data->>'abn', ''), '\s', '', 'g') = $1
		)
	`
	var exists bool
	err := r.db.QueryRowContext(ctx, q, abn).Scan(&exists)
	return exists, err
}
