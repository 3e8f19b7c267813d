package database

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Sessions 为每个存储操作开一个带 ctx 的会话；ctx 超时即中断 SQL
type Sessions struct {
	DB *gorm.DB
}

func NewSessions(db *gorm.DB) Sessions { return Sessions{DB: db} }

// WithSession 只读会话
func (s Sessions) WithSession(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(s.DB.WithContext(ctx))
}

// WithTransaction fn 返回 error 时回滚
func (s Sessions) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.DB.WithContext(ctx).Transaction(fn)
}

// IsDupKey 唯一索引冲突（pg / mysql / sqlite）
func IsDupKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || // postgres
		strings.Contains(s, "Error 1062") || // mysql
		strings.Contains(s, "UNIQUE constraint failed") // sqlite
}
