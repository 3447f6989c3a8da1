package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"go-gin-contacts/internal/domain"
	"go-gin-contacts/internal/feature/contact"
)

// ContactRepo 按 owner 过滤的联系人仓储。
// 同一联系人的并发更新不加锁，按数据库默认隔离级别 last-write-wins。
type ContactRepo struct {
	db  *gorm.DB
	now func() time.Time
}

func NewContactRepo(db *gorm.DB) *ContactRepo {
	return &ContactRepo{db: db, now: time.Now}
}

// WithClock 替换生日窗口使用的"今天"
func (r *ContactRepo) WithClock(now func() time.Time) *ContactRepo {
	return &ContactRepo{db: r.db, now: now}
}

func (r *ContactRepo) owned(ctx context.Context, ownerID uint) *gorm.DB {
	return r.db.WithContext(ctx).Model(&domain.Contact{}).Scopes(contact.OwnedBy(ownerID))
}

func (r *ContactRepo) List(ctx context.Context, ownerID uint, skip, limit int) ([]domain.Contact, error) {
	out := []domain.Contact{}
	if limit == 0 {
		return out, nil
	}
	err := r.owned(ctx, ownerID).Scopes(contact.Ordered, contact.Page(skip, limit)).Find(&out).Error
	return out, err
}

func (r *ContactRepo) Get(ctx context.Context, ownerID, id uint) (*domain.Contact, error) {
	var c domain.Contact
	err := r.owned(ctx, ownerID).Scopes(contact.ByID(id)).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContactRepo) Create(ctx context.Context, ownerID uint, in domain.ContactInput) (*domain.Contact, error) {
	c := in.NewContact(ownerID)
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		if isDupKey(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, err
	}
	return &c, nil
}

func (r *ContactRepo) Update(ctx context.Context, ownerID, id uint, patch domain.ContactPatch) (*domain.Contact, error) {
	c, err := r.Get(ctx, ownerID, id)
	if err != nil || c == nil {
		return nil, err
	}
	if patch.Empty() {
		return c, nil
	}
	res := r.owned(ctx, ownerID).Scopes(contact.ByID(id)).Updates(patch.Columns())
	if res.Error != nil {
		if isDupKey(res.Error) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// 查询与更新之间已被删除
		return nil, nil
	}
	patch.Apply(c)
	return c, nil
}

func (r *ContactRepo) Delete(ctx context.Context, ownerID, id uint) (*domain.Contact, error) {
	c, err := r.Get(ctx, ownerID, id)
	if err != nil || c == nil {
		return nil, err
	}
	res := r.db.WithContext(ctx).Scopes(contact.OwnedBy(ownerID), contact.ByID(id)).Delete(&domain.Contact{})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return c, nil
}

// Search 空 query 返回该用户全部联系人
func (r *ContactRepo) Search(ctx context.Context, ownerID uint, query string) ([]domain.Contact, error) {
	out := []domain.Contact{}
	err := r.owned(ctx, ownerID).Scopes(contact.Matching(query), contact.Ordered).Find(&out).Error
	return out, err
}

func (r *ContactRepo) UpcomingBirthdays(ctx context.Context, ownerID uint) ([]domain.Contact, error) {
	out := []domain.Contact{}
	err := r.owned(ctx, ownerID).
		Scopes(contact.BirthdayWithin(r.now(), contact.UpcomingDays), contact.Ordered).
		Find(&out).Error
	return out, err
}

func (r *ContactRepo) CountByOwner(ctx context.Context, ownerID uint) (int64, error) {
	var n int64
	err := r.owned(ctx, ownerID).Count(&n).Error
	return n, err
}
