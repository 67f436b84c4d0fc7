package seeder

import (
	"context"
	"fmt"

	"github.com/alexivanou/communes-api/internal/model"
	"github.com/alexivanou/communes-api/internal/repository"
	"go.uber.org/zap"
)

// Seed loads the communes file into the cities table. Rows already
// present are left unchanged, so it can be re-run.
func Seed(ctx context.Context, parser *Parser, cities repository.CityRepository, logger *zap.Logger) (int, error) {
	logger.Info("Importing cities", zap.String("file", parser.dataFile))

	batches := 0
	total, err := parser.ProcessCities(func(batch []model.City) error {
		if err := cities.BulkInsertCities(ctx, batch); err != nil {
			return fmt.Errorf("failed to insert cities batch: %w", err)
		}
		batches++
		logger.Debug("Inserted cities batch", zap.Int("batch", batches), zap.Int("size", len(batch)))
		return nil
	})
	if err != nil {
		return total, err
	}

	logger.Info("Cities imported", zap.Int("cities", total), zap.Int("batches", batches))
	return total, nil
}
