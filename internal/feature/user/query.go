package user

import (
	"strings"

	"gorm.io/gorm"
)

// EmailLike 管理端按邮箱模糊搜
func EmailLike(q string) func(*gorm.DB) *gorm.DB {
	q = strings.TrimSpace(q)
	return func(db *gorm.DB) *gorm.DB {
		if q == "" {
			return db
		}
		return db.Where("LOWER(email) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
}

func ByEmail(email string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB { return db.Where("email = ?", email) }
}

func Newest(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }
