package db

import (
	"time"

	"gorm.io/gorm"
)

// KVEntry 整包資料以 key 存放，例如訂單集合
type KVEntry struct {
	Key       string `gorm:"primaryKey;size:128"`
	Value     []byte `gorm:"type:bytea;not null"`
	UpdatedAt time.Time
}

func (KVEntry) TableName() string {
	return "kv_entries"
}

type DbDao struct {
	*gorm.DB
}

func NewDbDao(conn *gorm.DB) *DbDao {
	return &DbDao{
		DB: conn,
	}
}

// 初始化db schema
// 冪等性
func (d *DbDao) InitMigrate() error {
	return d.AutoMigrate(
		&KVEntry{},
	)
}
