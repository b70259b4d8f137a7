// Package store 提供本地数据存储层实现。
// 前端的 localStorage 助手落到 SQLite，清空 WebView 缓存后数据仍然保留。
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrEmptyKey 键为空。
var ErrEmptyKey = errors.New("key is empty")

// DefaultNamespace 前端 localStorage 使用的命名空间。
const DefaultNamespace = "local"

// Record 表示一条键值记录。
type Record struct {
	Namespace string    `json:"namespace"`
	Key       string    `json:"key"`
	Value     string    `json:"value"` // JSON 文本，由前端序列化
	UpdatedAt time.Time `json:"updated_at"`
}

// LocalStore 定义键值存储接口。
type LocalStore interface {
	Get(ctx context.Context, namespace, key string) (*Record, error)
	Set(ctx context.Context, namespace, key, value string) error
	Delete(ctx context.Context, namespace, key string) error
	Keys(ctx context.Context, namespace string) ([]string, error)
	Close() error
}

// SQLiteLocalStore 实现 LocalStore 接口。
type SQLiteLocalStore struct {
	db *sql.DB
	mu sync.RWMutex

	now   func() time.Time
	retry func(ctx context.Context, fn func() error) error
}

// NewSQLiteLocalStore 在已打开（且已迁移）的连接上创建存储。
func NewSQLiteLocalStore(db *sql.DB) *SQLiteLocalStore {
	return &SQLiteLocalStore{db: db, now: time.Now, retry: withBusyRetry}
}

// Get 不存在时返回 nil, nil。
func (s *SQLiteLocalStore) Get(ctx context.Context, namespace, key string) (*Record, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var record Record
	var updatedAt string
	err := s.retry(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			`SELECT namespace, key, value, updated_at FROM kv WHERE namespace = ? AND key = ?`,
			namespace, key,
		).Scan(&record.Namespace, &record.Key, &record.Value, &updatedAt)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("获取键值失败: %w", err)
	}

	record.UpdatedAt = parseSQLiteDateTime(updatedAt)
	return &record, nil
}

// Set 存在则更新，不存在则插入。
func (s *SQLiteLocalStore) Set(ctx context.Context, namespace, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO kv (namespace, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`
	updatedAt := s.now().Format(timeLayout)
	err := s.retry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, namespace, key, value, updatedAt)
		return err
	})
	if err != nil {
		return fmt.Errorf("写入键值失败: %w", err)
	}
	return nil
}

// Delete 删除不存在的键不是错误。
func (s *SQLiteLocalStore) Delete(ctx context.Context, namespace, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.retry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE namespace = ? AND key = ?`, namespace, key)
		return err
	})
	if err != nil {
		return fmt.Errorf("删除键值失败: %w", err)
	}
	return nil
}

// Keys 按键名排序返回命名空间下的所有键。
func (s *SQLiteLocalStore) Keys(ctx context.Context, namespace string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	err := s.retry(ctx, func() error {
		var err error
		keys, err = s.queryKeys(ctx, namespace)
		return err
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *SQLiteLocalStore) queryKeys(ctx context.Context, namespace string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM kv WHERE namespace = ? ORDER BY key`, namespace)
	if err != nil {
		return nil, fmt.Errorf("查询键列表失败: %w", err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("读取键失败: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Close 关闭底层连接。
func (s *SQLiteLocalStore) Close() error {
	return s.db.Close()
}
