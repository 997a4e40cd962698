package services

import (
	"context"

	"github.com/mcreview/mcreview-backend/internal/domain/packages"
	"github.com/mcreview/mcreview-backend/internal/logger"
	"github.com/mcreview/mcreview-backend/internal/reference"
)

// ProgramService exposes the state and program catalog to callers that
// populate package forms. Collaborators hold this service; nothing reads the
// catalog through package state.
type ProgramService interface {
	GetState(ctx context.Context, stateCode string) (*reference.State, error)
	FindStatePrograms(ctx context.Context, stateCode string, programIDs []string) ([]reference.Program, error)
}

type programService struct {
	log     *logger.Logger
	catalog *reference.Catalog
}

// NewProgramService loads the embedded catalog once at construction.
func NewProgramService(log *logger.Logger) (ProgramService, error) {
	catalog, err := reference.LoadCatalog()
	if err != nil {
		return nil, packages.NewError(packages.CodeInternal, opPrograms, "state catalog unavailable", err)
	}
	return &programService{log: log.With("service", "ProgramService"), catalog: catalog}, nil
}

const opPrograms = "services.programs"

func (ps *programService) GetState(ctx context.Context, stateCode string) (*reference.State, error) {
	st, ok := ps.catalog.StateByCode(stateCode)
	if !ok {
		return nil, packages.NewError(packages.CodeNotFound, opPrograms, "unknown state code", nil)
	}
	return &st, nil
}

func (ps *programService) FindStatePrograms(ctx context.Context, stateCode string, programIDs []string) ([]reference.Program, error) {
	programs, err := ps.catalog.FindStatePrograms(stateCode, programIDs)
	if err != nil {
		return nil, packages.NewError(packages.CodeValidation, opPrograms, err.Error(), nil)
	}
	return programs, nil
}
