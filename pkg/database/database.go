package database

import (
	"fmt"
	"log"

	"testprep_backend/internal/config"
	"testprep_backend/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedPlans(db)

	return db, nil
}

// Migrate creates/updates the schema. Shared with the test suite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Subject{},
		&model.Topic{},
		&model.CategorySubject{},
		&model.Question{},
		&model.Test{},
		&model.TestAttempt{},
		&model.AttemptAnswer{},
		&model.Plan{},
		&model.Payment{},
		&model.Subscription{},
	)
}

// seedPlans inserts default subscription plans on first boot.
func seedPlans(db *gorm.DB) {
	var count int64
	db.Model(&model.Plan{}).Count(&count)
	if count > 0 {
		return
	}
	defaults := []model.Plan{
		{Name: "Single Category - 3 Months", Scope: model.ScopeSingleCategory, DurationDays: 90, Amount: decimal.NewFromInt(299), IsActive: true},
		{Name: "Single Category - 1 Year", Scope: model.ScopeSingleCategory, DurationDays: 365, Amount: decimal.NewFromInt(799), IsActive: true},
		{Name: "All Categories - 1 Year", Scope: model.ScopeAllCategories, DurationDays: 365, Amount: decimal.NewFromInt(1499), IsActive: true},
	}
	for _, p := range defaults {
		db.Create(&p)
	}
}
