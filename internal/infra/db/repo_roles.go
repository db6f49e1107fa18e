package db

import (
	"context"
	"errors"

	"giftstore/internal/domain"

	"gorm.io/gorm"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) FindByPermission(ctx context.Context, permission domain.RoleType) (domain.Role, error) {
	if r.db == nil {
		return domain.Role{}, errDBUnavailable
	}
	var model RoleModel
	err := r.db.WithContext(ctx).
		Preload("Authorities").
		Where("permission = ?", string(permission)).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Role{}, domain.ErrRoleNotFound
		}
		return domain.Role{}, err
	}
	return roleFromModel(model), nil
}
