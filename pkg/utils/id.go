package utils

import "github.com/google/uuid"

// NewID 随机 uuid（无横线）
func NewID() string {
	u := uuid.New()
	const hex = "0123456789abcdef"
	out := make([]byte, 32)
	for i, b := range u {
		out[i*2] = hex[b>>4]
		out[i*2+1] = hex[b&0x0f]
	}
	return string(out)
}
