package repository

import (
	"context"
	"time"

	"hotelcore/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// CategoryFilter selects visible, non-deleted categories.
type CategoryFilter struct {
	Name          string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	MinBeds       int
	IncludeHidden bool
	// OnlyIDs restricts the result when non-nil; an empty slice matches nothing.
	OnlyIDs []int64
	SortBy  string
	Desc    bool
	Page    int
	PerPage int
}

var categorySortColumns = map[string]string{
	"":       "id",
	"id":     "id",
	"name":   "name",
	"price":  "price",
	"square": "square",
	"beds":   "beds",
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error)
}

func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Save(c).Error)
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	var c domain.Category
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Preload("Photos", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&c).Error
	if err != nil {
		return nil, notFound(err, "category", id)
	}
	return &c, nil
}

// GetForUpdate loads the category with a row lock held until the transaction ends.
func (r *CategoryRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Category, error) {
	var c domain.Category
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&c).Error
	if err != nil {
		return nil, notFound(err, "category", id)
	}
	return &c, nil
}

func (r *CategoryRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.Category{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", at)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "category", id)
	}
	return nil
}

// Discounts lists the non-deleted discounts attached to the category.
func (r *CategoryRepository) Discounts(ctx context.Context, categoryID int64) ([]domain.Discount, error) {
	var out []domain.Discount
	err := r.db.WithContext(ctx).
		Joins("JOIN category_discounts cd ON cd.discount_id = discounts.id").
		Where("cd.category_id = ? AND discounts.deleted_at IS NULL", categoryID).
		Order("discounts.id").
		Find(&out).Error
	return out, translateError(err)
}

func (r *CategoryRepository) AttachDiscount(ctx context.Context, categoryID, discountID int64) error {
	return r.link(ctx, "category_discounts", "discount_id", categoryID, discountID)
}

func (r *CategoryRepository) DetachDiscount(ctx context.Context, categoryID, discountID int64) error {
	return translateError(r.db.WithContext(ctx).
		Exec("DELETE FROM category_discounts WHERE category_id = ? AND discount_id = ?", categoryID, discountID).Error)
}

func (r *CategoryRepository) AttachTag(ctx context.Context, categoryID, tagID int64) error {
	return r.link(ctx, "category_tags", "tag_id", categoryID, tagID)
}

func (r *CategoryRepository) DetachTag(ctx context.Context, categoryID, tagID int64) error {
	return translateError(r.db.WithContext(ctx).
		Exec("DELETE FROM category_tags WHERE category_id = ? AND tag_id = ?", categoryID, tagID).Error)
}

func (r *CategoryRepository) link(ctx context.Context, table, column string, categoryID, otherID int64) error {
	row := map[string]any{"category_id": categoryID, column: otherID}
	return translateError(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Table(table).
		Create(row).Error)
}

func (r *CategoryRepository) filtered(ctx context.Context, f CategoryFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.Category{}).Where("deleted_at IS NULL")
	if !f.IncludeHidden {
		q = q.Where("is_hidden = ?", false)
	}
	if f.Name != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+lower(f.Name)+"%")
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.MinBeds > 0 {
		q = q.Where("beds >= ?", f.MinBeds)
	}
	if f.OnlyIDs != nil {
		if len(f.OnlyIDs) == 0 {
			q = q.Where("1 = 0")
		} else {
			q = q.Where("id IN ?", f.OnlyIDs)
		}
	}
	return q
}

func (r *CategoryRepository) orderClause(f CategoryFilter) string {
	col, ok := categorySortColumns[f.SortBy]
	if !ok {
		col = "id"
	}
	if f.Desc {
		return col + " DESC, id DESC"
	}
	return col + " ASC, id ASC"
}

// MatchingIDs returns the ids of every category matching f, in sort order, without paging.
func (r *CategoryRepository) MatchingIDs(ctx context.Context, f CategoryFilter) ([]int64, error) {
	var ids []int64
	err := r.filtered(ctx, f).Order(r.orderClause(f)).Pluck("id", &ids).Error
	return ids, translateError(err)
}

// Search returns one page of matching categories and the total match count.
func (r *CategoryRepository) Search(ctx context.Context, f CategoryFilter) ([]domain.Category, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	var out []domain.Category
	q := r.filtered(ctx, f).Order(r.orderClause(f)).Preload("Tags")
	if f.PerPage > 0 {
		q = q.Limit(f.PerPage).Offset((max(f.Page, 1) - 1) * f.PerPage)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, translateError(err)
	}
	return out, total, nil
}

// Familiar returns visible categories sharing the most tags with categoryID.
func (r *CategoryRepository) Familiar(ctx context.Context, categoryID int64, limit int) ([]domain.Category, error) {
	type scored struct {
		ID     int64
		Shared int64
	}
	var rows []scored
	err := r.db.WithContext(ctx).
		Table("category_tags AS ct").
		Select("ct.category_id AS id, COUNT(*) AS shared").
		Joins("JOIN categories c ON c.id = ct.category_id").
		Where("ct.tag_id IN (?)", r.db.Table("category_tags").Select("tag_id").Where("category_id = ?", categoryID)).
		Where("ct.category_id <> ? AND c.deleted_at IS NULL AND c.is_hidden = ?", categoryID, false).
		Group("ct.category_id").
		Order("shared DESC, ct.category_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	var cats []domain.Category
	if err := r.db.WithContext(ctx).Preload("Tags").Where("id IN ?", ids).Find(&cats).Error; err != nil {
		return nil, translateError(err)
	}

	byID := make(map[int64]domain.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}
	out := make([]domain.Category, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}
