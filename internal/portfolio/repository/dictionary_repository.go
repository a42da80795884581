package repository

import (
	"context"

	"github.com/hifushiri/rostelecom-backend/internal/portfolio/entity"
	"gorm.io/gorm"
)

type DictionaryRepository struct {
	db *gorm.DB
}

func NewDictionaryRepository(db *gorm.DB) *DictionaryRepository {
	return &DictionaryRepository{db: db}
}

func (r *DictionaryRepository) FindTypeByName(ctx context.Context, name string) (*entity.DictionaryType, error) {
	var t entity.DictionaryType
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&t).Error; err != nil {
		return nil, translateErr(err)
	}
	return &t, nil
}

func (r *DictionaryRepository) ListTypes(ctx context.Context) ([]entity.DictionaryType, error) {
	var types []entity.DictionaryType
	err := r.db.WithContext(ctx).Order("id").Find(&types).Error
	return types, err
}

func (r *DictionaryRepository) CreateType(ctx context.Context, t *entity.DictionaryType) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *DictionaryRepository) FindItemByID(ctx context.Context, id uint) (*entity.DictionaryItem, error) {
	var item entity.DictionaryItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &item, nil
}

// FindItemByTypeAndValue backs the idempotent seed loader.
func (r *DictionaryRepository) FindItemByTypeAndValue(ctx context.Context, typeID uint, value string) (*entity.DictionaryItem, error) {
	var item entity.DictionaryItem
	err := r.db.WithContext(ctx).
		Where("type_id = ? AND value = ?", typeID, value).
		First(&item).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &item, nil
}

func (r *DictionaryRepository) ListItems(ctx context.Context, typeID uint) ([]entity.DictionaryItem, error) {
	var items []entity.DictionaryItem
	query := r.db.WithContext(ctx).Order("id")
	if typeID != 0 {
		query = query.Where("type_id = ?", typeID)
	}
	err := query.Find(&items).Error
	return items, err
}

func (r *DictionaryRepository) CreateItem(ctx context.Context, item *entity.DictionaryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}
