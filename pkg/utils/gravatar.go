package utils

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// GravatarURL 按 gravatar 规则：邮箱去空格转小写后取 md5
func GravatarURL(email string) string {
	h := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(h[:]) + "?d=identicon"
}
