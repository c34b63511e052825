package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"baul-admin-api/internal/config"
	"baul-admin-api/internal/importer"
	"baul-admin-api/internal/models"
	"baul-admin-api/pkg/server"

	"github.com/sirupsen/logrus"
)

func main() {
	var (
		productsFile  = flag.String("archivo", "", "Product CSV file to import")
		customersFile = flag.String("clientes", "", "JSON file with the initial customer list")
		verbose       = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if *productsFile == "" && *customersFile == "" {
		fmt.Fprintln(os.Stderr, "usage: import -archivo productos.csv | -clientes clientes.json")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}

	logger := cfg.NewLogger()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	container, err := server.NewContainer(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize container")
	}

	ctx := context.Background()
	code := 0

	if *customersFile != "" {
		if err := seedCustomers(ctx, container, *customersFile); err != nil {
			logger.WithError(err).Error("Customer seeding failed")
			code = 1
		}
	}

	if *productsFile != "" && code == 0 {
		if err := importProducts(ctx, container, *productsFile); err != nil {
			logger.WithError(err).Error("Product import failed")
			code = 1
		}
	}

	container.Close()
	os.Exit(code)
}

func seedCustomers(ctx context.Context, container *server.Container, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var customers []*models.Customer
	if err := json.Unmarshal(data, &customers); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}

	n, err := container.ImportService.SeedCustomers(ctx, customers)
	if err != nil {
		return err
	}

	if n == 0 {
		fmt.Println("La colección de clientes ya tiene datos, no se cargó nada.")
	} else {
		fmt.Printf("Se cargaron %d clientes.\n", n)
	}
	return nil
}

func importProducts(ctx context.Context, container *server.Container, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	result, err := container.ImportService.ImportProducts(ctx, filepath.Base(path), content)
	if err != nil {
		var rejected *importer.BatchRejectedError
		var writeErr *importer.WriteError
		switch {
		case errors.As(err, &rejected):
			fmt.Fprintln(os.Stderr, rejected.Error())
		case errors.As(err, &writeErr):
			fmt.Fprintf(os.Stderr, "%s (%d productos guardados antes del error)\n", writeErr.Error(), writeErr.Written)
		}
		return err
	}

	fmt.Println(result.Message)
	return nil
}
