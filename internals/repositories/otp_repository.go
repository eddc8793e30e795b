package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jangir-rishbh/clothing-shop-sub000/internals/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormOTPRepository struct {
	db *gorm.DB
}

func NewGormOTPRepository(db *gorm.DB) *GormOTPRepository {
	return &GormOTPRepository{db: db}
}

func (r *GormOTPRepository) Upsert(ctx context.Context, record *models.OTPRecord) error {
	row := *record
	row.ExpiresAt = row.ExpiresAt.UTC()
	row.CreatedAt = row.CreatedAt.UTC()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "identifier"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "purpose", "attempts", "expires_at", "created_at"}),
	}).Create(&row).Error
}

func (r *GormOTPRepository) Get(ctx context.Context, identifier string) (*models.OTPRecord, error) {
	var record models.OTPRecord
	if err := r.db.WithContext(ctx).Where("identifier = ?", identifier).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *GormOTPRepository) Delete(ctx context.Context, identifier string) error {
	return r.db.WithContext(ctx).Where("identifier = ?", identifier).Delete(&models.OTPRecord{}).Error
}

func (r *GormOTPRepository) Consume(ctx context.Context, identifier, code string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("identifier = ? AND code = ?", identifier, code).
		Delete(&models.OTPRecord{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormOTPRepository) AddFailedAttempt(ctx context.Context, identifier, code string) (int, error) {
	var record models.OTPRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.OTPRecord{}).
			Where("identifier = ? AND code = ?", identifier, code).
			UpdateColumn("attempts", gorm.Expr("attempts + ?", 1))
		if result.Error != nil || result.RowsAffected == 0 {
			return result.Error
		}
		return tx.Where("identifier = ?", identifier).First(&record).Error
	})
	if err != nil {
		return 0, err
	}
	return record.Attempts, nil
}

func (r *GormOTPRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at < ?", before.UTC()).Delete(&models.OTPRecord{})
	return result.RowsAffected, result.Error
}
