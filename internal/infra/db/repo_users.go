package db

import (
	"context"
	"errors"
	"time"

	"giftstore/internal/domain"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// withRole eager-loads the role and its authorities.
func (r *UserRepository) withRole(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Role.Authorities")
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	if r.db == nil {
		return domain.User{}, errDBUnavailable
	}
	var model UserModel
	err := r.withRole(ctx).Where("username = ?", username).Take(&model).Error
	return r.found(model, err)
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (domain.User, error) {
	if r.db == nil {
		return domain.User{}, errDBUnavailable
	}
	var model UserModel
	err := r.withRole(ctx).Where("id = ?", id).Take(&model).Error
	return r.found(model, err)
}

func (r *UserRepository) found(model UserModel, err error) (domain.User, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, err
	}
	return userFromModel(model), nil
}

func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]domain.User, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []UserModel
	err := r.withRole(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(models))
	for _, m := range models {
		out = append(out, userFromModel(m))
	}
	return out, nil
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	if r.db == nil {
		return domain.User{}, errDBUnavailable
	}
	roleID := user.Role.ID
	if roleID == 0 {
		role, err := NewRoleRepository(r.db).FindByPermission(ctx, user.Role.Permission)
		if err != nil {
			return domain.User{}, err
		}
		roleID = role.ID
	}
	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	model := UserModel{
		Username:  user.Username,
		Email:     user.Email,
		Password:  user.PasswordHash,
		RoleID:    roleID,
		CreatedAt: createdAt,
	}
	if err := r.db.WithContext(ctx).Omit("Role").Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.User{}, domain.ErrUserExists
		}
		return domain.User{}, err
	}
	return r.FindByID(ctx, model.ID)
}

// BumpTokenVersion increments the version in a single statement so
// concurrent revocations never lose an increment.
func (r *UserRepository) BumpTokenVersion(ctx context.Context, userID int64) (int64, error) {
	if r.db == nil {
		return 0, errDBUnavailable
	}
	var version int64
	res := r.db.WithContext(ctx).
		Raw("UPDATE users SET token_version = token_version + 1 WHERE id = ? RETURNING token_version", userID).
		Scan(&version)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, domain.ErrUserNotFound
	}
	return version, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	res := r.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("id = ?", userID).
		Update("password", passwordHash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
