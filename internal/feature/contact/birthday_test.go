package contact

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go-gin-contacts/internal/domain"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 10, 30, 0, 0, time.UTC) }

func TestBirthdayWindow_Plain(t *testing.T) {
	got := BirthdayWindow(day(2026, time.June, 10), UpcomingDays)
	assert.Equal(t, []int{610, 611, 612, 613, 614, 615, 616, 617}, got)
}

func TestBirthdayWindow_WrapsYear(t *testing.T) {
	got := BirthdayWindow(day(2026, time.December, 28), UpcomingDays)
	assert.Equal(t, []int{1228, 1229, 1230, 1231, 101, 102, 103, 104}, got)
}

func TestBirthdayWindow_LeapDay(t *testing.T) {
	// 2027 非闰年：3 月 1 日窗口包含 2 月 29 日
	assert.Contains(t, BirthdayWindow(day(2027, time.February, 25), UpcomingDays), 229)
	// 2028 闰年：2 月 29 日本身在窗口内，3 月 1 日不再重复
	got := BirthdayWindow(day(2028, time.February, 25), UpcomingDays)
	assert.Equal(t, []int{225, 226, 227, 228, 229, 301, 302, 303}, got)
}

func TestInWindow(t *testing.T) {
	today := day(2026, time.December, 28)
	cases := []struct {
		name     string
		birthday domain.Date
		want     bool
	}{
		{"today, different year", domain.NewDate(1990, time.December, 28), true},
		{"across new year", domain.NewDate(2001, time.January, 2), true},
		{"last day inclusive", domain.NewDate(1970, time.January, 4), true},
		{"one day past", domain.NewDate(1970, time.January, 5), false},
		{"yesterday", domain.NewDate(1985, time.December, 27), false},
		{"future birth year", domain.NewDate(2030, time.December, 30), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, InWindow(tc.birthday, today, UpcomingDays))
		})
	}
}
