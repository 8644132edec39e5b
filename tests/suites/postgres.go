package suites

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/joefazee/categorical/app/database"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const (
	postgresImage = "postgres:17.5-alpine3.21"
	postgresPort  = "5432/tcp"
)

// PostgresContainer is a throwaway postgres instance and the database
// settings that reach it.
type PostgresContainer struct {
	testcontainers.Container
	Config database.Config
}

// URL renders the connection string golang-migrate expects
func (pc *PostgresContainer) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		pc.Config.User, pc.Config.Password, pc.Config.Host, pc.Config.Port, pc.Config.Database)
}

func NewPostgresContainer(ctx context.Context) (*PostgresContainer, error) {
	cfg := database.Config{User: "journal", Password: "journal-test", Database: "categorical"}

	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{postgresPort},
		Cmd:          []string{"postgres", "-c", "fsync=off"},
		Env: map[string]string{
			"POSTGRES_DB":       cfg.Database,
			"POSTGRES_USER":     cfg.User,
			"POSTGRES_PASSWORD": cfg.Password,
		},
		WaitingFor: wait.ForSQL(postgresPort, "postgres", func(host string, port nat.Port) string {
			return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
				cfg.User, cfg.Password, host, port.Port(), cfg.Database)
		}).WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	if cfg.Host, err = container.Host(ctx); err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	mapped, err := container.MappedPort(ctx, postgresPort)
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}
	cfg.Port = mapped.Port()

	return &PostgresContainer{Container: container, Config: cfg}, nil
}

// RepositoryTestSuite runs repository tests against a real postgres
// migrated with the files under migrations/. Skipped in -short mode.
type RepositoryTestSuite struct {
	suite.Suite
	Container      *PostgresContainer
	DB             *gorm.DB
	AutoMigrate    bool
	MigrationsPath string
}

func (s *RepositoryTestSuite) SetupSuite() {
	if testing.Short() {
		s.T().Skip("Skipping database integration tests in short mode")
	}

	if s.MigrationsPath == "" {
		s.MigrationsPath = findMigrations()
	}

	container, err := NewPostgresContainer(context.Background())
	if err != nil {
		s.T().Fatalf("Failed to create postgres container: %v", err)
	}
	s.Container = container
	s.T().Cleanup(s.cleanup)

	if s.DB, err = database.New(&container.Config); err != nil {
		s.T().Fatalf("Failed to connect: %v", err)
	}

	if s.AutoMigrate {
		if err := s.RunMigrations(); err != nil {
			s.T().Fatalf("Failed to run migrations: %v", err)
		}
	}
}

// findMigrations walks up to the module root
func findMigrations() string {
	wd, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(wd, "go.mod")); err == nil {
			return filepath.Join(wd, "migrations")
		}
		parent := filepath.Dir(wd)
		if parent == wd {
			return ""
		}
		wd = parent
	}
}

func (s *RepositoryTestSuite) RunMigrations() error {
	if s.MigrationsPath == "" {
		return errors.New("migrations path not set")
	}

	m, err := migrate.New("file://"+s.MigrationsPath, s.Container.URL())
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// BeforeTest empties every application table so tests start clean
func (s *RepositoryTestSuite) BeforeTest(_, _ string) {
	if s.DB == nil {
		return
	}
	var tables []string
	s.DB.Raw(`SELECT table_name FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		AND table_name <> 'schema_migrations'`).Scan(&tables)
	for _, table := range tables {
		s.DB.Exec(fmt.Sprintf(`TRUNCATE TABLE %q`, table))
	}
}

func (s *RepositoryTestSuite) cleanup() {
	if s.DB != nil {
		if sqlDB, err := s.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if s.Container != nil {
		_ = s.Container.Terminate(context.Background())
	}
}

func (s *RepositoryTestSuite) CountRecords(table string) int64 {
	var c int64
	s.DB.Table(table).Count(&c)
	return c
}

func (s *RepositoryTestSuite) TableExists(table string) bool {
	return s.DB.Migrator().HasTable(table)
}
