package store

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mcreview/mcreview-backend/internal/domain/packages"
	"github.com/mcreview/mcreview-backend/internal/platform/dbctx"
)

// CASGuard provides optimistic-concurrency helpers for draft writes. Clients
// pass the updated_at they last observed; a mismatch means someone else wrote
// in between and the caller must refetch, never silently overwrite.
type CASGuard struct {
	db *gorm.DB
}

func NewCASGuard(db *gorm.DB) CASGuard {
	return CASGuard{db: db}
}

func (g CASGuard) baseDB(dbc dbctx.Context) (*gorm.DB, error) {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx), nil
	}
	if g.db != nil {
		return g.db.WithContext(dbc.Ctx), nil
	}
	return nil, packages.NewError(packages.CodeValidation, "store.cas", "missing db transaction context", nil)
}

// UpdateByLastSeen updates a row only when id and updated_at both match the
// client-observed values.
func (g CASGuard) UpdateByLastSeen(dbc dbctx.Context, table string, id uuid.UUID, lastSeenUpdatedAt time.Time, updates map[string]any) (bool, error) {
	db, err := g.baseDB(dbc)
	if err != nil {
		return false, err
	}
	if table == "" || id == uuid.Nil {
		return false, packages.NewError(packages.CodeValidation, "store.cas", "table and id are required for UpdateByLastSeen", nil)
	}
	res := db.Table(table).
		Where("id = ? AND updated_at = ?", id, lastSeenUpdatedAt).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RequireCASSuccess converts a failed compare-and-set into a typed conflict.
func RequireCASSuccess(ok bool, message string) error {
	if ok {
		return nil
	}
	return packages.NewError(packages.CodeConflict, "store.cas", message, nil)
}
