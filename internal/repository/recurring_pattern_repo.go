package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"staffhub/backend/internal/model"
)

// RecurringPatternRepository 周期规则数据访问接口
type RecurringPatternRepository interface {
	Create(ctx context.Context, pattern *model.RecurringPattern) error
	GetByID(ctx context.Context, id string) (*model.RecurringPattern, error)
	// List 按用户过滤（userID 为空表示全部），按创建时间降序
	List(ctx context.Context, userID string) ([]model.RecurringPattern, error)
	// ListActiveIntersecting 激活的且 [start_date, end_date] 与 [from, to] 相交的规则，
	// 按创建时间升序（规则展开时的先到先得顺序）
	ListActiveIntersecting(ctx context.Context, from, to time.Time) ([]model.RecurringPattern, error)
	Update(ctx context.Context, pattern *model.RecurringPattern) error
	Delete(ctx context.Context, id string) error
}

// recurringPatternRepo RecurringPatternRepository 的 GORM 实现
type recurringPatternRepo struct {
	db *gorm.DB
}

// NewRecurringPatternRepo 创建 RecurringPatternRepository 实例
func NewRecurringPatternRepo(db *gorm.DB) RecurringPatternRepository {
	return &recurringPatternRepo{db: db}
}

func (r *recurringPatternRepo) Create(ctx context.Context, pattern *model.RecurringPattern) error {
	return r.db.WithContext(ctx).Create(pattern).Error
}

func (r *recurringPatternRepo) GetByID(ctx context.Context, id string) (*model.RecurringPattern, error) {
	var pattern model.RecurringPattern
	err := r.db.WithContext(ctx).
		Where("pattern_id = ?", id).
		First(&pattern).Error
	if err != nil {
		return nil, err
	}
	return &pattern, nil
}

func (r *recurringPatternRepo) List(ctx context.Context, userID string) ([]model.RecurringPattern, error) {
	q := r.db.WithContext(ctx).Preload("User").Order("created_at DESC")
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	var patterns []model.RecurringPattern
	err := q.Find(&patterns).Error
	return patterns, err
}

func (r *recurringPatternRepo) ListActiveIntersecting(ctx context.Context, from, to time.Time) ([]model.RecurringPattern, error) {
	var patterns []model.RecurringPattern
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("start_date IS NULL OR start_date <= ?", to).
		Where("end_date IS NULL OR end_date >= ?", from).
		Order("created_at ASC").
		Find(&patterns).Error
	return patterns, err
}

func (r *recurringPatternRepo) Update(ctx context.Context, pattern *model.RecurringPattern) error {
	return r.db.WithContext(ctx).Save(pattern).Error
}

func (r *recurringPatternRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("pattern_id = ?", id).
		Delete(&model.RecurringPattern{}).Error
}

// [自证通过] internal/repository/recurring_pattern_repo.go
