package repository

import (
	"context"

	"marketapi/internal/model"
)

// SupplierRepository reads suppliers together with their frameworks and domains.
type SupplierRepository interface {
	FindByCode(ctx context.Context, code int64) (*model.Supplier, error)
	FindByABN(ctx context.Context, abn string) (*model.Supplier, error)
	List(ctx context.Context, name string, pq PageQuery) (*PageResult[model.Supplier], error)

	FindApplication(ctx context.Context, id int64) (*model.Application, error)
	ApplicationsForSupplier(ctx context.Context, code int64, appType string) ([]model.Application, error)
	ApplicationExistsForABN(ctx context.Context, abn string) (bool, error)
}

// DomainRepository reads domains and their criteria.
type DomainRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Domain, error)
	FindByName(ctx context.Context, name string) (*model.Domain, error)
}
