package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterDBTracing registers the otelgorm plugin on the GORM instance so
// every query shows up as a child span. SQL variables are excluded from
// spans; prescription sales data must not leak into traces.
func RegisterDBTracing(db *gorm.DB, enabled bool, logger *zap.Logger) error {
	if !enabled {
		logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}
	return db.Use(otelgorm.NewPlugin(
		otelgorm.WithDBName("pharmacy"),
		otelgorm.WithoutQueryVariables(),
	))
}
