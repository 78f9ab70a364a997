package database

import (
	"fmt"

	applog "gatherly-api/logger"
	"gatherly-api/models"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Initialize opens the database for the configured driver ("mysql" or
// "postgres"). Driver errors are translated so duplicate keys surface as
// gorm.ErrDuplicatedKey.
func Initialize(driver, databaseURL string, verbose bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(databaseURL)
	case "postgres", "postgresql":
		dialector = postgres.Open(databaseURL)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	logMode := logger.Warn
	if verbose {
		logMode = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   logger.Default.LogMode(logMode),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB, log *applog.Logger) error {
	err := db.AutoMigrate(
		&models.Plan{},
		&models.Participant{},
		&models.Vote{},
		&models.VoteCast{},
		&models.Venue{},
		&models.VenueOverride{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	addCustomIndexes(db, log)
	addDatabaseConstraints(db, log)
	return nil
}

// addCustomIndexes creates indexes gorm tags cannot express. Failures are
// logged; the service still works without them.
func addCustomIndexes(db *gorm.DB, log *applog.Logger) {
	indexes := []struct {
		table string
		name  string
		sql   string
	}{
		{"plans", "idx_plans_chat_created", "CREATE INDEX idx_plans_chat_created ON plans(chat_id, created_at DESC)"},
		{"vote_casts", "idx_vote_casts_vote_venue", "CREATE INDEX idx_vote_casts_vote_venue ON vote_casts(vote_id, venue_id)"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			continue
		}
		if err := db.Exec(idx.sql).Error; err != nil {
			log.Warn("could not create index", zap.String("index", idx.name), zap.Error(err))
		}
	}
}

// addDatabaseConstraints adds CHECK constraints on status columns. Dialects
// without ALTER TABLE ADD CONSTRAINT (sqlite) just log a warning.
func addDatabaseConstraints(db *gorm.DB, log *applog.Logger) {
	constraints := []struct {
		name string
		sql  string
	}{
		{"ck_plans_status", "ALTER TABLE plans ADD CONSTRAINT ck_plans_status CHECK (status IN ('open', 'voting', 'closed', 'cancelled'))"},
		{"ck_plans_winner_iff_closed", "ALTER TABLE plans ADD CONSTRAINT ck_plans_winner_iff_closed CHECK ((status = 'closed') = (winning_venue_id IS NOT NULL))"},
		{"ck_votes_status", "ALTER TABLE votes ADD CONSTRAINT ck_votes_status CHECK (status IN ('open', 'closed'))"},
		{"ck_venues_rating", "ALTER TABLE venues ADD CONSTRAINT ck_venues_rating CHECK (rating >= 0 AND rating <= 5)"},
	}

	for _, c := range constraints {
		if err := db.Exec(c.sql).Error; err != nil {
			log.Warn("could not add constraint", zap.String("constraint", c.name), zap.Error(err))
		}
	}
}
