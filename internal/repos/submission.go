package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mcreview/mcreview-backend/internal/logger"
	"github.com/mcreview/mcreview-backend/internal/types"
)

type SubmissionRepo interface {
	CreatePackage(ctx context.Context, tx *gorm.DB, pkg *types.SubmissionPackage, joins []*types.SubmissionPackageRevision) (*types.SubmissionPackage, error)
	GetPackagesForContractRevisions(ctx context.Context, tx *gorm.DB, revisionIDs []uuid.UUID) ([]*types.SubmissionPackage, map[uuid.UUID][]*types.SubmissionPackageRevision, error)
	GetPackagesForRateRevisions(ctx context.Context, tx *gorm.DB, revisionIDs []uuid.UUID) ([]*types.SubmissionPackage, map[uuid.UUID][]*types.SubmissionPackageRevision, error)
	GetJoinsForPackages(ctx context.Context, tx *gorm.DB, packageIDs []uuid.UUID) (map[uuid.UUID][]*types.SubmissionPackageRevision, error)
}

type submissionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) SubmissionRepo {
	repoLog := baseLog.With("repo", "SubmissionRepo")
	return &submissionRepo{db: db, log: repoLog}
}

func (r *submissionRepo) base(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *submissionRepo) CreatePackage(ctx context.Context, tx *gorm.DB, pkg *types.SubmissionPackage, joins []*types.SubmissionPackageRevision) (*types.SubmissionPackage, error) {
	db := r.base(tx).WithContext(ctx)
	if err := db.Create(pkg).Error; err != nil {
		return nil, err
	}
	for _, join := range joins {
		join.SubmissionPackageID = pkg.ID
	}
	if len(joins) > 0 {
		if err := db.Create(&joins).Error; err != nil {
			return nil, err
		}
	}
	return pkg, nil
}

// GetPackagesForContractRevisions loads every submission package that
// includes any of the given contract revisions, plus all join rows for those
// packages keyed by package ID.
func (r *submissionRepo) GetPackagesForContractRevisions(ctx context.Context, tx *gorm.DB, revisionIDs []uuid.UUID) ([]*types.SubmissionPackage, map[uuid.UUID][]*types.SubmissionPackageRevision, error) {
	if len(revisionIDs) == 0 {
		return nil, map[uuid.UUID][]*types.SubmissionPackageRevision{}, nil
	}
	db := r.base(tx).WithContext(ctx)

	var packageIDs []uuid.UUID
	if err := db.Model(&types.SubmissionPackageRevision{}).
		Where("contract_revision_id IN ?", revisionIDs).
		Distinct().
		Pluck("submission_package_id", &packageIDs).Error; err != nil {
		return nil, nil, err
	}
	if len(packageIDs) == 0 {
		return nil, map[uuid.UUID][]*types.SubmissionPackageRevision{}, nil
	}

	var pkgs []*types.SubmissionPackage
	if err := db.Where("id IN ?", packageIDs).
		Order("submitted_at DESC").
		Find(&pkgs).Error; err != nil {
		return nil, nil, err
	}

	joins, err := r.GetJoinsForPackages(ctx, tx, packageIDs)
	if err != nil {
		return nil, nil, err
	}
	return pkgs, joins, nil
}

// GetPackagesForRateRevisions is the rate-flavored package lookup.
func (r *submissionRepo) GetPackagesForRateRevisions(ctx context.Context, tx *gorm.DB, revisionIDs []uuid.UUID) ([]*types.SubmissionPackage, map[uuid.UUID][]*types.SubmissionPackageRevision, error) {
	if len(revisionIDs) == 0 {
		return nil, map[uuid.UUID][]*types.SubmissionPackageRevision{}, nil
	}
	db := r.base(tx).WithContext(ctx)

	var packageIDs []uuid.UUID
	if err := db.Model(&types.SubmissionPackageRevision{}).
		Where("rate_revision_id IN ?", revisionIDs).
		Distinct().
		Pluck("submission_package_id", &packageIDs).Error; err != nil {
		return nil, nil, err
	}
	if len(packageIDs) == 0 {
		return nil, map[uuid.UUID][]*types.SubmissionPackageRevision{}, nil
	}

	var pkgs []*types.SubmissionPackage
	if err := db.Where("id IN ?", packageIDs).
		Order("submitted_at DESC").
		Find(&pkgs).Error; err != nil {
		return nil, nil, err
	}

	joins, err := r.GetJoinsForPackages(ctx, tx, packageIDs)
	if err != nil {
		return nil, nil, err
	}
	return pkgs, joins, nil
}

func (r *submissionRepo) GetJoinsForPackages(ctx context.Context, tx *gorm.DB, packageIDs []uuid.UUID) (map[uuid.UUID][]*types.SubmissionPackageRevision, error) {
	result := map[uuid.UUID][]*types.SubmissionPackageRevision{}
	if len(packageIDs) == 0 {
		return result, nil
	}
	var joins []*types.SubmissionPackageRevision
	if err := r.base(tx).WithContext(ctx).
		Where("submission_package_id IN ?", packageIDs).
		Find(&joins).Error; err != nil {
		return nil, err
	}
	for _, join := range joins {
		result[join.SubmissionPackageID] = append(result[join.SubmissionPackageID], join)
	}
	return result, nil
}
