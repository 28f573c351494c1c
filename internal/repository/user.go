package repository

import (
	"context"

	"marketapi/internal/model"
)

// UserRepository reads marketplace accounts.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// FindByIDs returns the users that exist among ids; missing ids are skipped.
	FindByIDs(ctx context.Context, ids []int64) ([]model.User, error)
	// EmailsForSupplier returns active user addresses belonging to the supplier.
	EmailsForSupplier(ctx context.Context, supplierCode int64) ([]string, error)
}
