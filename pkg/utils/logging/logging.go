// Package logging builds the application logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// InitLogger creates a zap logger for the given environment.
// Production environments get JSON output at Info level; everything else gets
// a human-readable development logger at Debug level.
func InitLogger(env string) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)

	switch env {
	case "prod", "production":
		logger, err = zap.NewProduction()
	default:
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger, nil
}
