package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-gin-contacts/internal/domain"
	"go-gin-contacts/internal/feature/user"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if isDupKey(err) {
		return domain.ErrUserExists
	}
	return err
}

func (r *UserRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Scopes(user.ByEmail(email)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context, offset, limit int, q string) ([]domain.User, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&domain.User{}).Scopes(user.EmailLike(q))
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []domain.User
	if err := base().Scopes(user.Newest).Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepo) UpdateToken(ctx context.Context, id uint, token *string) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).Update("refresh_token", token).Error
}

func (r *UserRepo) ConfirmEmail(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).
		Scopes(user.ByEmail(email)).Update("confirmed", true).Error
}

func (r *UserRepo) UpdateAvatar(ctx context.Context, email, url string) (*domain.User, error) {
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Scopes(user.ByEmail(email)).Update("avatar", url)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByEmail(ctx, email)
}
