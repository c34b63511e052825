package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"baul-admin-api/internal/adapters/storage"
	"baul-admin-api/internal/importer"
	"baul-admin-api/internal/models"
	"baul-admin-api/internal/repositories"
)

// ArchivePrefix is the storage folder uploaded import files are kept under
const ArchivePrefix = "importaciones"

// importService implements the ImportService interface
type importService struct {
	pipeline     *importer.Pipeline
	archive      storage.FileStorage
	customerRepo repositories.CustomerRepository
	logger       *logrus.Logger
	now          func() time.Time
}

// NewImportService creates a new import service instance. A nil archive
// disables upload archiving.
func NewImportService(
	pipeline *importer.Pipeline,
	archive storage.FileStorage,
	customerRepo repositories.CustomerRepository,
	logger *logrus.Logger,
) ImportService {
	if logger == nil {
		logger = logrus.New()
	}
	return &importService{
		pipeline:     pipeline,
		archive:      archive,
		customerRepo: customerRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// ImportProducts archives the upload and runs it through the import pipeline.
// Archiving problems are logged and do not block the import.
func (s *importService) ImportProducts(ctx context.Context, filename string, content []byte) (*importer.Result, error) {
	if key, err := s.archiveUpload(ctx, filename, content); err != nil {
		s.logger.WithError(err).WithField("file", filename).Warn("Failed to archive import file")
	} else if key != "" {
		s.logger.WithField("key", key).Debug("Import file archived")
	}

	result, err := s.pipeline.Run(ctx, filename, content, func(p importer.Progress) {
		s.logger.WithFields(logrus.Fields{
			"file":    filename,
			"current": p.Current,
			"total":   p.Total,
		}).Debug("Import progress")
	})
	if err != nil {
		return result, fmt.Errorf("import failed: %w", err)
	}
	return result, nil
}

func (s *importService) archiveUpload(ctx context.Context, filename string, content []byte) (string, error) {
	if s.archive == nil {
		return "", nil
	}
	key := path.Join(ArchivePrefix, fmt.Sprintf("%s-%s", s.now().UTC().Format("20060102T150405.000"), path.Base(filename)))
	err := s.archive.Store(ctx, key, content, &storage.StoreOptions{
		ContentType: "text/csv",
		Metadata:    map[string]string{"original_name": filename},
	})
	return key, err
}

// ListImports returns the archived upload files, newest first.
func (s *importService) ListImports(ctx context.Context) ([]storage.FileMetadata, error) {
	if s.archive == nil {
		return []storage.FileMetadata{}, nil
	}
	files, err := s.archive.List(ctx, &storage.ListOptions{Prefix: ArchivePrefix + "/"})
	if err != nil {
		return nil, fmt.Errorf("failed to list import files: %w", err)
	}
	for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
		files[i], files[j] = files[j], files[i]
	}
	return files, nil
}

// GetImport returns the content of an archived upload by file name.
func (s *importService) GetImport(ctx context.Context, name string) ([]byte, error) {
	key, err := s.archiveKey(ctx, name)
	if err != nil {
		return nil, err
	}
	data, err := s.archive.Retrieve(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file %s: %w", name, err)
	}
	return data, nil
}

// DeleteImport removes an archived upload.
func (s *importService) DeleteImport(ctx context.Context, name string) error {
	key, err := s.archiveKey(ctx, name)
	if err != nil {
		return err
	}
	if err := s.archive.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete import file %s: %w", name, err)
	}
	s.logger.WithField("key", key).Info("Import file deleted")
	return nil
}

// archiveKey maps a file name to its archive key, checking that it exists.
func (s *importService) archiveKey(ctx context.Context, name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", validationError(fmt.Errorf("invalid import file name %q", name))
	}
	if s.archive == nil {
		return "", repositories.NotFoundError("import", name)
	}
	key := path.Join(ArchivePrefix, name)
	exists, err := s.archive.Exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to check import file %s: %w", name, err)
	}
	if !exists {
		return "", repositories.NotFoundError("import", name)
	}
	return key, nil
}

// SeedCustomers loads an initial customer list into an empty collection.
// It returns the number of customers written; nothing is written when the
// collection already has data.
func (s *importService) SeedCustomers(ctx context.Context, customers []*models.Customer) (int, error) {
	count, err := s.customerRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	if count > 0 {
		s.logger.WithField("existing", count).Info("Customer collection is not empty, skipping seed")
		return 0, nil
	}

	written := 0
	for _, customer := range customers {
		if customer.CreatedAt.IsZero() {
			customer.CreatedAt = models.NewTimestamp(s.now())
		}
		if err := s.customerRepo.Create(ctx, customer); err != nil {
			return written, fmt.Errorf("failed to seed customer %q: %w", customer.Name, err)
		}
		written++
	}

	s.logger.WithField("count", written).Info("Customers seeded")
	return written, nil
}
