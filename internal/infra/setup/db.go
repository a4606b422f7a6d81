package setup

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/zittiandbuoni/taskino/internal/domain"
)

// InitDB 初始化 PostgreSQL 连接并配置连接池。
func InitDB(user, password, host, port, name string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		host, user, password, name, port)

	// TranslateError 让驱动把唯一约束冲突等错误翻译为 gorm.ErrDuplicatedKey
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("setup: connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("setup: get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// MigrateDB 自动迁移 Room, Item, Like, User 模型对应的表结构。
func MigrateDB(db *gorm.DB) error {
	err := db.AutoMigrate(&domain.Room{}, &domain.Item{}, &domain.Like{}, &domain.User{})
	if err != nil {
		return fmt.Errorf("setup: auto migrate: %w", err)
	}
	return nil
}
