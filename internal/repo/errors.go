package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isDupKey TranslateError 开启时走 gorm.ErrDuplicatedKey，否则按驱动报错文本兜底
func isDupKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
