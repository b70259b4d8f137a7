package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// 支持的驱动名称。
const (
	DriverSQLite  = "sqlite"  // modernc.org/sqlite，纯 Go
	DriverSQLite3 = "sqlite3" // github.com/mattn/go-sqlite3，需要 cgo
)

const schema = `
	CREATE TABLE IF NOT EXISTS kv (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		namespace TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(namespace, key)
	);
	CREATE INDEX IF NOT EXISTS idx_kv_namespace ON kv(namespace);
`

// dsn 两个驱动的 pragma 参数写法不同。
func dsn(driver, path string) (string, error) {
	switch driver {
	case DriverSQLite:
		return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", nil
	case DriverSQLite3:
		return path + "?_journal_mode=WAL&_busy_timeout=5000", nil
	default:
		return "", fmt.Errorf("unsupported sqlite driver: %q", driver)
	}
}

// OpenDB 打开数据库并建表。
func OpenDB(driver, path string) (*sql.DB, error) {
	source, err := dsn(driver, path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}
	// SQLite 单写者，单连接避免 database is locked
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("创建表失败: %w", err)
	}
	return db, nil
}

// Open 打开数据库并返回 LocalStore。
func Open(driver, path string) (*SQLiteLocalStore, error) {
	db, err := OpenDB(driver, path)
	if err != nil {
		return nil, err
	}
	return NewSQLiteLocalStore(db), nil
}
