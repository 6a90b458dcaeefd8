package utils

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"project/backend/config"
	"project/backend/models"
)

// InitDB opens the postgres connection and migrates the schema.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := MigrateDB(db); err != nil {
		return nil, err
	}
	return db, nil
}

// MigrateDB runs the schema migration; shared by main and the test setup.
func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.CourseSettings{},
		&models.CourseMembership{},
		&models.CourseGroup{},
		&models.CourseGroupMember{},
		&models.CourseMilestone{},
		&models.CourseMilestoneTemplate{},
		&models.CourseSubmission{},
		&models.CourseSubmissionViewableGroup{},
		&models.CourseSubmissionComment{},
	)
}
