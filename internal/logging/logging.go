// Package logging constructs the process-wide zap logger, exactly the way
// the teacher's initLogger does: production config in prod, development
// config otherwise. Every other package receives the logger by constructor
// injection; there is no package-level global.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds a *zap.Logger selecting production or development encoding
// based on env (typically "production" or "development").
func New(env string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}
