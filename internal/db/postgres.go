package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mcreview/mcreview-backend/internal/logger"
	"github.com/mcreview/mcreview-backend/internal/types"
	"github.com/mcreview/mcreview-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	log.Info("Loading environment variables...")
	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "mcreview", log)
	log.Debug("Environment variables loaded")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.Contract{},
		&types.ContractRevision{},
		&types.Rate{},
		&types.RateRevision{},
		&types.DraftRateJoin{},
		&types.SubmissionPackage{},
		&types.SubmissionPackageRevision{},
		&types.ReviewStatusAction{},
		&types.Question{},
		&types.QuestionResponse{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	s.log.Info("Configuring foreign key relationships for postgres tables...")
	if err := s.db.Exec(`
		ALTER TABLE "contract_revision"
		ADD CONSTRAINT "fk_contract_revision_contract_id"
		FOREIGN KEY ("contract_id")
		REFERENCES "contract"("id")
		ON DELETE CASCADE
	`).Error; err != nil {
		return fmt.Errorf("failed to add fk_contract_revision_contract_id: %w", err)
	}
	if err := s.db.Exec(`
		ALTER TABLE "rate_revision"
		ADD CONSTRAINT "fk_rate_revision_rate_id"
		FOREIGN KEY ("rate_id")
		REFERENCES "rate"("id")
		ON DELETE CASCADE
	`).Error; err != nil {
		return fmt.Errorf("failed to add fk_rate_revision_rate_id: %w", err)
	}
	if err := s.db.Exec(`
		ALTER TABLE "submission_package_revision"
		ADD CONSTRAINT "fk_submission_package_revision_package_id"
		FOREIGN KEY ("submission_package_id")
		REFERENCES "submission_package"("id")
		ON DELETE CASCADE
	`).Error; err != nil {
		return fmt.Errorf("failed to add fk_submission_package_revision_package_id: %w", err)
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
