package contact

import (
	"time"

	"go-gin-contacts/internal/domain"
)

// UpcomingDays 生日窗口：今天 .. 今天+7（含两端）
const UpcomingDays = 7

// monthDay 编码为 month*100 + day，如 12-28 → 1228
func monthDay(m time.Month, d int) int { return int(m)*100 + d }

func isLeap(y int) bool { return y%4 == 0 && (y%100 != 0 || y%400 == 0) }

// BirthdayWindow 返回 today..today+days 内每天的 month*100+day。
// 非闰年的 3 月 1 日同时匹配 2 月 29 日出生的联系人。
func BirthdayWindow(today time.Time, days int) []int {
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	out := make([]int, 0, days+2)
	for i := 0; i <= days; i++ {
		d := start.AddDate(0, 0, i)
		out = append(out, monthDay(d.Month(), d.Day()))
		if d.Month() == time.March && d.Day() == 1 && !isLeap(d.Year()) {
			out = append(out, monthDay(time.February, 29))
		}
	}
	return out
}

// InWindow 与 BirthdayWithin 生成的 SQL 谓词语义一致
func InWindow(birthday domain.Date, today time.Time, days int) bool {
	md := monthDay(birthday.Month(), birthday.Day())
	for _, v := range BirthdayWindow(today, days) {
		if v == md {
			return true
		}
	}
	return false
}
