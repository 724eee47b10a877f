package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/dineqr/dineqr/internal/models"
	"github.com/dineqr/dineqr/pkg/errors"
)

// CategoryService manages the two-level menu hierarchy of a restaurant.
// Hierarchy rules: a parent must be a top-level category of the same
// restaurant, and a category that has children cannot itself become a child.
type CategoryService struct {
	db          *gorm.DB
	restaurants *RestaurantService
}

// NewCategoryService constructs a category service.
func NewCategoryService(db *gorm.DB, restaurants *RestaurantService) (*CategoryService, error) {
	if db == nil {
		return nil, fmt.Errorf("category service: db is required")
	}
	if restaurants == nil {
		return nil, fmt.Errorf("category service: restaurant service is required")
	}
	return &CategoryService{db: db, restaurants: restaurants}, nil
}

// CategoryInput carries the writable fields of a category.
type CategoryInput struct {
	Name     string
	ParentID *string
}

// CategoryUpdateInput carries the writable fields of a category update.
// The parent is tri-state: when ParentSet is false the current parent is
// kept, when true a nil ParentID detaches the category to the top level.
type CategoryUpdateInput struct {
	Name      string
	ParentID  *string
	ParentSet bool
}

// Create adds a category to one of the user's restaurants.
func (s *CategoryService) Create(ctx context.Context, userID, restaurantID string, input CategoryInput) (*models.Category, error) {
	ctx = ensuredContext(ctx)

	if _, err := s.restaurants.Get(ctx, userID, restaurantID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewBadRequest("Category name is required")
	}

	if input.ParentID != nil {
		if err := s.validateParent(ctx, restaurantID, *input.ParentID, ""); err != nil {
			return nil, err
		}
	}

	category := &models.Category{
		RestaurantID: restaurantID,
		Name:         name,
		ParentID:     input.ParentID,
	}
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, fmt.Errorf("category service: create: %w", err)
	}
	return category, nil
}

// List returns the restaurant's categories with children nested under their
// parents and per-category dish counts filled in.
func (s *CategoryService) List(ctx context.Context, userID, restaurantID string) ([]models.Category, error) {
	ctx = ensuredContext(ctx)

	if _, err := s.restaurants.Get(ctx, userID, restaurantID); err != nil {
		return nil, err
	}
	return s.tree(ctx, restaurantID)
}

// Get loads one category of the user's restaurant.
func (s *CategoryService) Get(ctx context.Context, userID, restaurantID, categoryID string) (*models.Category, error) {
	ctx = ensuredContext(ctx)

	if _, err := s.restaurants.Get(ctx, userID, restaurantID); err != nil {
		return nil, err
	}

	var category models.Category
	err := s.db.WithContext(ctx).
		Where("id = ? AND restaurant_id = ?", categoryID, restaurantID).
		First(&category).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFound("Category not found")
		}
		return nil, fmt.Errorf("category service: get: %w", err)
	}
	return &category, nil
}

// Update renames and/or re-parents a category. An update that does not
// mention the parent keeps the current one.
func (s *CategoryService) Update(ctx context.Context, userID, restaurantID, categoryID string, input CategoryUpdateInput) (*models.Category, error) {
	ctx = ensuredContext(ctx)

	category, err := s.Get(ctx, userID, restaurantID, categoryID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewBadRequest("Category name is required")
	}

	updates := map[string]any{"name": name}
	if input.ParentSet {
		if input.ParentID != nil {
			if *input.ParentID == category.ID {
				return nil, errors.NewBadRequest("A category cannot be its own parent")
			}
			if err := s.validateParent(ctx, restaurantID, *input.ParentID, category.ID); err != nil {
				return nil, err
			}
		}
		updates["parent_id"] = input.ParentID
	}

	if err := s.db.WithContext(ctx).Model(category).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("category service: update: %w", err)
	}
	category.Name = name
	if input.ParentSet {
		category.ParentID = input.ParentID
	}
	return category, nil
}

// Delete removes a category, its children, and all dish links pointing at any
// of them. Dishes themselves survive and stay in their other categories.
func (s *CategoryService) Delete(ctx context.Context, userID, restaurantID, categoryID string) error {
	ctx = ensuredContext(ctx)

	category, err := s.Get(ctx, userID, restaurantID, categoryID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := []string{category.ID}
		var children []models.Category
		if err := tx.Where("parent_id = ?", category.ID).Find(&children).Error; err != nil {
			return fmt.Errorf("category service: load children: %w", err)
		}
		for _, child := range children {
			ids = append(ids, child.ID)
		}

		if err := tx.Where("category_id IN ?", ids).Delete(&models.DishCategory{}).Error; err != nil {
			return fmt.Errorf("category service: delete dish links: %w", err)
		}
		if err := tx.Where("id IN ?", ids).Delete(&models.Category{}).Error; err != nil {
			return fmt.Errorf("category service: delete: %w", err)
		}
		return nil
	})
}

// validateParent enforces the two-level hierarchy for a prospective child.
// childID is empty on create; on update it identifies the category being moved
// so its own children can veto the move.
func (s *CategoryService) validateParent(ctx context.Context, restaurantID, parentID, childID string) error {
	var parent models.Category
	err := s.db.WithContext(ctx).
		Where("id = ? AND restaurant_id = ?", parentID, restaurantID).
		First(&parent).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.NewNotFound("Parent category not found")
		}
		return fmt.Errorf("category service: load parent: %w", err)
	}

	if parent.ParentID != nil {
		return errors.NewBadRequest("Categories can only be nested one level deep")
	}

	if childID != "" {
		var childCount int64
		if err := s.db.WithContext(ctx).Model(&models.Category{}).
			Where("parent_id = ?", childID).Count(&childCount).Error; err != nil {
			return fmt.Errorf("category service: count children: %w", err)
		}
		if childCount > 0 {
			return errors.NewBadRequest("A category with subcategories cannot become a subcategory")
		}
	}

	return nil
}

// tree assembles the nested category response for a restaurant.
func (s *CategoryService) tree(ctx context.Context, restaurantID string) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("created_at ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("category service: list: %w", err)
	}

	counts, err := s.dishCounts(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	byParent := make(map[string][]models.Category)
	var roots []models.Category
	for _, category := range categories {
		category.DishCount = counts[category.ID]
		if category.ParentID == nil {
			roots = append(roots, category)
			continue
		}
		byParent[*category.ParentID] = append(byParent[*category.ParentID], category)
	}
	for i := range roots {
		roots[i].Children = byParent[roots[i].ID]
	}
	if roots == nil {
		roots = []models.Category{}
	}
	return roots, nil
}

func (s *CategoryService) dishCounts(ctx context.Context, restaurantID string) (map[string]int64, error) {
	type row struct {
		CategoryID string
		Count      int64
	}

	var rows []row
	err := s.db.WithContext(ctx).
		Model(&models.DishCategory{}).
		Select("dish_categories.category_id AS category_id, COUNT(*) AS count").
		Joins("JOIN categories ON categories.id = dish_categories.category_id").
		Where("categories.restaurant_id = ?", restaurantID).
		Group("dish_categories.category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("category service: dish counts: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.CategoryID] = r.Count
	}
	return counts, nil
}
