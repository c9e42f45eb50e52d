package schema

import (
	"gorm.io/gorm"
)

// AllModels returns all schema models for GORM AutoMigrate.
func AllModels() []any {
	return []any{
		&Observation{},
		&AggregatedScore{},
		&SourceRun{},
	}
}

// TableNames returns names of the exported tables in creation order.
func TableNames() []string {
	return []string{"observations", "aggregated_scores", "source_runs"}
}

// Migrate runs GORM AutoMigrate to create or update schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
