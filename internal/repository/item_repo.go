package repository

import (
	"context"
	"strings"
	"time"

	"supplydesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ItemRepository interface {
	Create(ctx context.Context, item *model.Item) error
	Update(ctx context.Context, item *model.Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Item, error)
	FindFirstByNameContains(ctx context.Context, fragment string) (*model.Item, error)
	List(ctx context.Context, search string) ([]model.Item, error)
	ListLowStock(ctx context.Context, threshold, limit int) ([]model.Item, error)
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (int, error)
}

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(ctx context.Context, item *model.Item) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *itemRepository) Update(ctx context.Context, item *model.Item) error {
	return GetDB(ctx, r.db).Save(item).Error
}

// Delete soft-deletes the item; matching and listing no longer see it.
func (r *itemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Item{}).Error
}

func (r *itemRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	var item model.Item
	if err := GetDB(ctx, r.db).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	var item model.Item
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindFirstByNameContains returns the oldest item whose name contains fragment,
// compared case-insensitively. Both sides are folded with the database's LOWER.
// Returns gorm.ErrRecordNotFound when nothing matches.
func (r *itemRepository) FindFirstByNameContains(ctx context.Context, fragment string) (*model.Item, error) {
	var item model.Item
	pattern := "%" + escapeLike(fragment) + "%"
	if err := GetDB(ctx, r.db).
		Where(`LOWER(name) LIKE LOWER(?) ESCAPE '\'`, pattern).
		Order("created_at ASC, id ASC").
		Take(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns items newest first, optionally filtered by a name or category fragment.
func (r *itemRepository) List(ctx context.Context, search string) ([]model.Item, error) {
	items := []model.Item{}

	db := GetDB(ctx, r.db).Model(&model.Item{})
	if search != "" {
		pattern := "%" + escapeLike(search) + "%"
		db = db.Where(`(LOWER(name) LIKE LOWER(?) ESCAPE '\' OR LOWER(category) LIKE LOWER(?) ESCAPE '\')`, pattern, pattern)
	}

	if err := db.Order("created_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *itemRepository) ListLowStock(ctx context.Context, threshold, limit int) ([]model.Item, error) {
	items := []model.Item{}
	if err := GetDB(ctx, r.db).
		Where("stock < ?", threshold).
		Order("stock ASC, name ASC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// DecrementStock subtracts quantity from the item's stock in a single conditional
// UPDATE, flooring at zero, and returns the resulting stock.
func (r *itemRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (int, error) {
	db := GetDB(ctx, r.db)

	res := db.Model(&model.Item{}).Where("id = ?", id).Updates(map[string]interface{}{
		"stock":      gorm.Expr("CASE WHEN stock > ? THEN stock - ? ELSE 0 END", quantity, quantity),
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	var item model.Item
	if err := db.Select("stock").Where("id = ?", id).Take(&item).Error; err != nil {
		return 0, err
	}
	return item.Stock, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
