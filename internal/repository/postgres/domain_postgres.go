package postgres

import (
	"context"
	"database/sql"

	"marketapi/internal/model"
	"marketapi/internal/repository"
)

// DomainPostgres is a PostgreSQL implementation of repository.DomainRepository.
type DomainPostgres struct {
	db *sql.DB
}

// NewDomainPostgres creates a new DomainPostgres repository.
func NewDomainPostgres(db *sql.DB) *DomainPostgres {
	return &DomainPostgres{db: db}
}

var _ repository.DomainRepository = (*DomainPostgres)(nil)

const domainColumns = `id, name, price_minimum::float8, price_maximum::float8, criteria_needed`

// FindByID returns the domain with its criteria.
func (r *DomainPostgres) FindByID(ctx context.Context, id int64) (*model.Domain, error) {
	const q = `SELECT ` + domainColumns + ` FROM domains WHERE id = $1`
	return r.find(ctx, q, id)
}

// FindByName matches the name case-insensitively.
func (r *DomainPostgres) FindByName(ctx context.Context, name string) (*model.Domain, error) {
	const q = `SELECT ` + domainColumns + ` FROM domains WHERE lower(name) = lower($1)`
	return r.find(ctx, q, name)
}

func (r *DomainPostgres) find(ctx context.Context, q string, arg any) (*model.Domain, error) {
	var d model.Domain
	if err := r.db.QueryRowContext(ctx, q, arg).Scan(&d.ID, &d.Name, &d.PriceMinimum, &d.PriceMaximum, &d.CriteriaNeeded); err != nil {
		return nil, err
	}

	const qCriteria = `
		SELECT id, domain_id, name, description, essential
		FROM domain_criteria
		WHERE domain_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, qCriteria, d.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	d.Criteria = make([]model.DomainCriteria, 0)
	for rows.Next() {
		var c model.DomainCriteria
		if err := rows.Scan(&c.ID, &c.DomainID, &c.Name, &c.Description, &c.Essential); err != nil {
			return nil, err
		}
		d.Criteria = append(d.Criteria, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &d, nil
}
