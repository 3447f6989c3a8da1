package domain

import (
	"context"
	"errors"
	"time"
)

type Contact struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	FirstName      string    `gorm:"size:100;not null" json:"first_name"`
	LastName       string    `gorm:"size:100;not null" json:"last_name"`
	Email          string    `gorm:"uniqueIndex;size:250;not null" json:"email"`
	PhoneNumber    string    `gorm:"size:32;not null" json:"phone_number"`
	Birthday       Date      `gorm:"not null" json:"birthday"`
	AdditionalInfo *string   `gorm:"size:500" json:"additional_info"`
	UserID         uint      `gorm:"index;not null" json:"user_id"`
	User           *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}

func (Contact) TableName() string { return "contacts" }

// ContactInput 创建入参；不含 owner，owner 只能来自鉴权身份
type ContactInput struct {
	FirstName      string  `json:"first_name"      binding:"required,max=100"`
	LastName       string  `json:"last_name"       binding:"required,max=100"`
	Email          string  `json:"email"           binding:"required,email,max=250"`
	PhoneNumber    string  `json:"phone_number"    binding:"required,max=32"`
	Birthday       Date    `json:"birthday"`
	AdditionalInfo *string `json:"additional_info" binding:"omitempty,max=500"`
}

var ErrBirthdayRequired = errors.New("birthday is required")

// Validate 补充 binding 标签覆盖不到的校验
func (in ContactInput) Validate() error {
	if in.Birthday.IsZero() {
		return ErrBirthdayRequired
	}
	return nil
}

func (in ContactInput) NewContact(ownerID uint) Contact {
	return Contact{
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		PhoneNumber:    in.PhoneNumber,
		Birthday:       in.Birthday,
		AdditionalInfo: in.AdditionalInfo,
		UserID:         ownerID,
	}
}

// Patch PUT 整体替换：所有字段都写入，additional_info 缺省或为 null 时清空
func (in ContactInput) Patch() ContactPatch {
	b := in.Birthday
	return ContactPatch{
		FirstName:      &in.FirstName,
		LastName:       &in.LastName,
		Email:          &in.Email,
		PhoneNumber:    &in.PhoneNumber,
		Birthday:       &b,
		AdditionalInfo: in.AdditionalInfo,
		ClearInfo:      in.AdditionalInfo == nil,
	}
}

// ContactPatch 局部更新：nil 表示未提供，保持原值
type ContactPatch struct {
	FirstName      *string `json:"first_name"      binding:"omitnil,min=1,max=100"`
	LastName       *string `json:"last_name"       binding:"omitnil,min=1,max=100"`
	Email          *string `json:"email"           binding:"omitempty,email,max=250"`
	PhoneNumber    *string `json:"phone_number"    binding:"omitnil,min=1,max=32"`
	Birthday       *Date   `json:"birthday"`
	AdditionalInfo *string `json:"additional_info" binding:"omitempty,max=500"`
	// ClearInfo 把 additional_info 置为 NULL（PUT 未提供时），优先于 AdditionalInfo
	ClearInfo bool `json:"-"`
}

func (p ContactPatch) Empty() bool { return len(p.Columns()) == 0 }

// Columns 已提供字段的 列名 → 值
func (p ContactPatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.FirstName != nil {
		cols["first_name"] = *p.FirstName
	}
	if p.LastName != nil {
		cols["last_name"] = *p.LastName
	}
	if p.Email != nil {
		cols["email"] = *p.Email
	}
	if p.PhoneNumber != nil {
		cols["phone_number"] = *p.PhoneNumber
	}
	if p.Birthday != nil {
		cols["birthday"] = *p.Birthday
	}
	switch {
	case p.ClearInfo:
		cols["additional_info"] = nil
	case p.AdditionalInfo != nil:
		cols["additional_info"] = *p.AdditionalInfo
	}
	return cols
}

// Apply 逐字段合并到 c
func (p ContactPatch) Apply(c *Contact) {
	if p.FirstName != nil {
		c.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		c.LastName = *p.LastName
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.PhoneNumber != nil {
		c.PhoneNumber = *p.PhoneNumber
	}
	if p.Birthday != nil {
		c.Birthday = *p.Birthday
	}
	switch {
	case p.ClearInfo:
		c.AdditionalInfo = nil
	case p.AdditionalInfo != nil:
		v := *p.AdditionalInfo
		c.AdditionalInfo = &v
	}
}

// ContactRepository 所有方法按 ownerID 过滤；不属于 owner 的记录与不存在一致，返回 (nil, nil)
type ContactRepository interface {
	List(ctx context.Context, ownerID uint, skip, limit int) ([]Contact, error)
	Get(ctx context.Context, ownerID, id uint) (*Contact, error)
	Create(ctx context.Context, ownerID uint, in ContactInput) (*Contact, error)
	Update(ctx context.Context, ownerID, id uint, patch ContactPatch) (*Contact, error)
	Delete(ctx context.Context, ownerID, id uint) (*Contact, error)
	Search(ctx context.Context, ownerID uint, query string) ([]Contact, error)
	UpcomingBirthdays(ctx context.Context, ownerID uint) ([]Contact, error)
	CountByOwner(ctx context.Context, ownerID uint) (int64, error)
}
