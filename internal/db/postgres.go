package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	types "github.com/clipsmith/clipsmith-backend/internal/domain"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/envutil"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/logger"
)

type Service struct {
	db     *gorm.DB
	driver string
	log    *logger.Logger
}

// New opens the primary database. Postgres is the production driver; setting
// DB_DRIVER=sqlite opens a local file instead for single-binary development.
func New(log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "DBService")

	driver := envutil.GetEnv("DB_DRIVER", "postgres")
	switch driver {
	case "postgres":
		return newPostgres(serviceLog)
	case "sqlite":
		return newSQLite(serviceLog)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}
}

func newPostgres(log *logger.Logger) (*Service, error) {
	host := envutil.GetEnv("POSTGRES_HOST", "localhost")
	port := envutil.GetEnv("POSTGRES_PORT", "5432")
	user := envutil.GetEnv("POSTGRES_USER", "postgres")
	password := envutil.GetEnv("POSTGRES_PASSWORD", "")
	name := envutil.GetEnv("POSTGRES_NAME", "clipsmith")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)

	log.Info("Connecting to Postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		log.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}

	return &Service{db: gdb, driver: "postgres", log: log}, nil
}

func newSQLite(log *logger.Logger) (*Service, error) {
	path := envutil.GetEnv("SQLITE_PATH", "clipsmith.db")

	log.Info("Opening sqlite database...", "path", path)
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to open sqlite database", "error", err)
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return &Service{db: gdb, driver: "sqlite", log: log}, nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	err := s.db.AutoMigrate(
		&types.Workspace{},
		&types.MediaAsset{},
		&types.Timeline{},
		&types.MediaClip{},
		&types.TimelineClip{},

		&types.LabelEntity{},
		&types.LabelClip{},

		&types.MediaRecommendation{},
		&types.TimelineRecommendation{},

		&types.JobRun{},
	)
	if err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *Service) DB() *gorm.DB {
	return s.db
}

func (s *Service) Driver() string {
	return s.driver
}
