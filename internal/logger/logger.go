package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// Init installs the global zap logger for the given environment.
func Init(environment string) error {
	var (
		l   *zap.Logger
		err error
	)
	switch environment {
	case "production":
		l, err = zap.NewProduction()
	case "test":
		l = zap.NewNop()
	default:
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return fmt.Errorf("zap.New -> %w", err)
	}

	zap.ReplaceGlobals(l)

	return nil
}
