package services

import (
	"context"

	"github.com/mcreview/mcreview-backend/internal/domain/packages"
	"github.com/mcreview/mcreview-backend/internal/logger"
	"github.com/mcreview/mcreview-backend/internal/utils"
)

// FlagService resolves the feature flags submission validation depends on.
// Flags live in the environment so reviewers can stage the 438 attestation
// requirement per deployment without a release.
type FlagService interface {
	SubmissionFlags(ctx context.Context) packages.FeatureFlags
}

type envFlagService struct {
	log *logger.Logger
}

func NewEnvFlagService(log *logger.Logger) FlagService {
	return &envFlagService{log: log.With("service", "FlagService")}
}

func (fs *envFlagService) SubmissionFlags(ctx context.Context) packages.FeatureFlags {
	return packages.FeatureFlags{
		Require438Attestation: utils.GetEnvAsBool("FF_438_ATTESTATION", false, fs.log),
	}
}
