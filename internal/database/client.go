// Package database persists observations and completed analysis runs in
// Postgres via GORM.
package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/trailcam/camtrap-activity/internal/log"
	"github.com/trailcam/camtrap-activity/internal/types"
	"go.uber.org/zap"
)

// Client holds the connection to the Postgres database
type Client struct {
	dsn    string
	DB     *gorm.DB
	logger *zap.SugaredLogger
}

// NewClient creates a new database client
func NewClient(dsn string, logger *zap.SugaredLogger) *Client {
	return &Client{
		dsn:    dsn,
		logger: logger,
	}
}

// Connect connects to the Postgres database and migrates the schema
func (c *Client) Connect() error {
	var err error

	// Create a logger for gorm
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	log.Info("connecting to Postgres...")
	c.DB, err = gorm.Open(postgres.Open(c.dsn), &gorm.Config{Logger: dbLogger})
	if err != nil {
		log.Warn("warning: unable to create a Postgres connection:", err)
		return err
	}
	log.Info("Postgres connection successful")

	if err := c.DB.AutoMigrate(&types.Observation{}, &AnalysisRun{}, &OverlapRecord{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	return nil
}

// SaveObservations inserts a batch of observations
func (c *Client) SaveObservations(observations []types.Observation) error {
	if len(observations) == 0 {
		return nil
	}
	if err := c.DB.CreateInBatches(observations, 500).Error; err != nil {
		return fmt.Errorf("failed to save observations: %w", err)
	}
	return nil
}

// LoadObservations retrieves all observations, oldest first
func (c *Client) LoadObservations() ([]types.Observation, error) {
	var observations []types.Observation
	if err := c.DB.Order("time").Find(&observations).Error; err != nil {
		return nil, fmt.Errorf("failed to load observations: %w", err)
	}
	return observations, nil
}

// SaveRun records a completed analysis run with its overlap matrix
func (c *Client) SaveRun(run *AnalysisRun, overlaps []OverlapRecord) error {
	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return fmt.Errorf("failed to save analysis run: %w", err)
		}
		for i := range overlaps {
			overlaps[i].RunID = run.ID
		}
		if len(overlaps) > 0 {
			if err := tx.Create(&overlaps).Error; err != nil {
				return fmt.Errorf("failed to save overlap records: %w", err)
			}
		}
		return nil
	})
}

// Close closes the underlying connection pool
func (c *Client) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
