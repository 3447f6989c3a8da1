package contact

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// 各仓储操作的过滤条件，全部以 gorm scope 形式组合

func OwnedBy(ownerID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB { return db.Where("user_id = ?", ownerID) }
}

func ByID(id uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB { return db.Where("id = ?", id) }
}

// Matching 名、姓、邮箱任一包含 q（忽略大小写）；q 为空不加条件
func Matching(q string) func(*gorm.DB) *gorm.DB {
	q = strings.TrimSpace(q)
	return func(db *gorm.DB) *gorm.DB {
		if q == "" {
			return db
		}
		like := "%" + escapeLike(strings.ToLower(q)) + "%"
		return db.Where("(LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?)", like, like, like)
	}
}

// BirthdayWithin 只比较月日，跨年窗口（12-28 → 01-04）也成立。
// EXTRACT 在 postgres 和 mysql 下都可用。
func BirthdayWithin(today time.Time, days int) func(*gorm.DB) *gorm.DB {
	window := BirthdayWindow(today, days)
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("(EXTRACT(MONTH FROM birthday) * 100 + EXTRACT(DAY FROM birthday)) IN ?", window)
	}
}

func Page(skip, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if skip > 0 {
			db = db.Offset(skip)
		}
		if limit > 0 {
			db = db.Limit(limit)
		}
		return db
	}
}

// Ordered 插入顺序
func Ordered(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
