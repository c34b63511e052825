package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"time"

	"baul-admin-api/internal/database"

	"github.com/sirupsen/logrus"
)

func main() {
	var (
		dbPath  = flag.String("db", "./data/baul.db", "Database file path")
		action  = flag.String("action", "up", "Migration action: up, down, status, validate, backup")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	// Setup logger
	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	absDBPath, err := filepath.Abs(*dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to get absolute database path")
	}

	logger.WithFields(logrus.Fields{
		"db_path": absDBPath,
		"action":  *action,
	}).Info("Starting migration tool")

	// Migrations are applied explicitly by the actions below
	connectionManager := database.NewConnectionManager(&database.ConnectionConfig{
		DatabasePath:    absDBPath,
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		Logger:          logger,
	})

	if err := connectionManager.Connect(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer connectionManager.Close()

	migrationManager := connectionManager.GetMigrationManager()

	switch *action {
	case "up":
		err = migrationManager.RunMigrations()
	case "down":
		err = migrationManager.RollbackMigration()
	case "status":
		err = showMigrationStatus(migrationManager)
	case "validate":
		err = migrationManager.ValidateSchema()
		if err == nil {
			fmt.Println("Schema validation passed successfully")
		}
	case "backup":
		var path string
		path, err = migrationManager.Backup()
		if err == nil && path != "" {
			fmt.Printf("Backup written to %s\n", path)
		}
	default:
		logger.WithField("action", *action).Fatal("Unknown action. Use: up, down, status, validate, backup")
	}

	if err != nil {
		connectionManager.Close()
		logger.WithError(err).WithField("action", *action).Fatal("Migration action failed")
	}

	logger.Info("Migration tool completed successfully")
}

func showMigrationStatus(m *database.MigrationManager) error {
	status, err := m.GetMigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	fmt.Printf("Migration Status:\n")
	fmt.Printf("  Version: %d\n", status.Version)
	fmt.Printf("  Applied: %t\n", status.Applied)
	fmt.Printf("  Dirty: %t\n", status.Dirty)
	fmt.Printf("  Timestamp: %s\n", status.Timestamp.Format("2006-01-02 15:04:05"))

	return nil
}
