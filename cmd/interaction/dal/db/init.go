package db

import (
	"time"

	"github.com/HuaTug/video-comment/cmd/model"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormopentracing "gorm.io/plugin/opentracing"
)

// Open connects to MySQL and migrates the comments table.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn),
		&gorm.Config{
			PrepareStmt:            true,
			SkipDefaultTransaction: true,
		},
	)
	if err != nil {
		return nil, err
	}
	if err = db.Use(gormopentracing.New()); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	hlog.Info("Starting comments table migration...")
	if err = db.AutoMigrate(&model.Comment{}); err != nil {
		hlog.Errorf("Failed to migrate comments table: %v", err)
		return nil, err
	}
	return db, nil
}
