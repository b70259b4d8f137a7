package store

import (
	"strings"
	"time"
)

// timeLayout 写入 updated_at 时使用的格式。
const timeLayout = "2006-01-02 15:04:05.000-07:00"

// parseSQLiteDateTime 兼容带/不带时区、带/不带毫秒的 SQLite 时间文本。
func parseSQLiteDateTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}

	layouts := []string{
		timeLayout,
		"2006-01-02 15:04:05-07:00",
		"2006-01-02 15:04:05.000",
		"2006-01-02 15:04:05",
		time.RFC3339Nano,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
