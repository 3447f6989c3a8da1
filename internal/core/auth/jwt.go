package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// token 用途
const (
	ScopeAccess  = "access_token"
	ScopeRefresh = "refresh_token"
	ScopeEmail   = "email_token"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UID   string `json:"uid,omitempty"`
	Role  string `json:"role,omitempty"` // "user" or "admin"
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// UserID uid 为十进制字符串
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.UID, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

type JWTer struct {
	Secret     []byte
	Issuer     string
	TTL        time.Duration // access
	RefreshTTL time.Duration
	EmailTTL   time.Duration
	Now        func() time.Time
}

func (j *JWTer) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

func (j *JWTer) sign(claims Claims, ttl time.Duration) (string, error) {
	now := j.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.RegisteredClaims.Subject,
		Issuer:    j.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

// Issue 签发 access token
func (j *JWTer) Issue(uid uint, role string) (string, error) {
	return j.sign(Claims{UID: strconv.FormatUint(uint64(uid), 10), Role: role, Scope: ScopeAccess}, j.TTL)
}

func (j *JWTer) IssueRefresh(uid uint, role string) (string, error) {
	return j.sign(Claims{UID: strconv.FormatUint(uint64(uid), 10), Role: role, Scope: ScopeRefresh}, j.RefreshTTL)
}

// IssueEmail 邮箱确认链接里的 token，subject 为邮箱
func (j *JWTer) IssueEmail(email string) (string, error) {
	c := Claims{Scope: ScopeEmail}
	c.Subject = email
	return j.sign(c, j.EmailTTL)
}

func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg %v", token.Header["alg"])
		}
		return j.Secret, nil
	}, jwt.WithIssuer(j.Issuer), jwt.WithLeeway(60*time.Second), jwt.WithTimeFunc(j.now))

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid {
		return c, nil
	}
	return nil, ErrInvalidToken
}

// ParseScope 解析并校验用途，防止 refresh token 当 access token 用
func (j *JWTer) ParseScope(tokenStr, scope string) (*Claims, error) {
	c, err := j.Parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if c.Scope != scope {
		return nil, fmt.Errorf("%w: scope %q", ErrInvalidToken, c.Scope)
	}
	return c, nil
}
