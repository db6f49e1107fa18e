package db

import (
	"context"
	"errors"
	"fmt"

	"giftstore/internal/domain"

	"gorm.io/gorm"
)

type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Save(ctx context.Context, token domain.Token) (domain.Token, error) {
	if r.db == nil {
		return domain.Token{}, errDBUnavailable
	}
	if token.Value == "" {
		return domain.Token{}, fmt.Errorf("token value is required: %w", domain.ErrInvalidArgument)
	}
	model := tokenToModel(token)
	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Token{}, fmt.Errorf("token value already stored: %w", domain.ErrInvalidArgument)
		}
		return domain.Token{}, err
	}
	return tokenFromModel(model), nil
}

func (r *TokenRepository) FindByValue(ctx context.Context, value string) (domain.Token, error) {
	if r.db == nil {
		return domain.Token{}, errDBUnavailable
	}
	var model TokenModel
	err := r.db.WithContext(ctx).Where("access_token = ?", value).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Token{}, domain.ErrTokenNotFound
		}
		return domain.Token{}, err
	}
	return tokenFromModel(model), nil
}

func (r *TokenRepository) FindActiveForUser(ctx context.Context, userID int64) ([]domain.Token, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []TokenModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND revoked = ? AND expired = ?", userID, false, false).
		Order("issued_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Token, 0, len(models))
	for _, m := range models {
		out = append(out, tokenFromModel(m))
	}
	return out, nil
}

// Revoke sets revoked and expired on exactly one row.
func (r *TokenRepository) Revoke(ctx context.Context, value string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	res := r.db.WithContext(ctx).
		Model(&TokenModel{}).
		Where("access_token = ?", value).
		Updates(map[string]any{"revoked": true, "expired": true})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrTokenNotFound
	}
	return nil
}

func (r *TokenRepository) RevokeAllForUser(ctx context.Context, userID int64) (int, error) {
	if r.db == nil {
		return 0, errDBUnavailable
	}
	res := r.db.WithContext(ctx).
		Model(&TokenModel{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Updates(map[string]any{"revoked": true, "expired": true})
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

func (r *TokenRepository) MarkExpired(ctx context.Context, value string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	res := r.db.WithContext(ctx).
		Model(&TokenModel{}).
		Where("access_token = ?", value).
		Update("expired", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrTokenNotFound
	}
	return nil
}
