package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dineqr/dineqr/internal/models"
	"github.com/dineqr/dineqr/pkg/errors"
)

// DishService manages menu items and their category assignments. Category
// assignment is whole-set replacement: every write carries the full list of
// category IDs and the join rows are rebuilt to match.
type DishService struct {
	db          *gorm.DB
	restaurants *RestaurantService
}

// NewDishService constructs a dish service.
func NewDishService(db *gorm.DB, restaurants *RestaurantService) (*DishService, error) {
	if db == nil {
		return nil, fmt.Errorf("dish service: db is required")
	}
	if restaurants == nil {
		return nil, fmt.Errorf("dish service: restaurant service is required")
	}
	return &DishService{db: db, restaurants: restaurants}, nil
}

// DishInput carries the writable fields of a dish.
type DishInput struct {
	Name        string
	Description string
	Image       string
	SpiceLevel  *int
	DietaryType string
	Price       *float64
	Tags        datatypes.JSON
	CategoryIDs []string
}

func (input *DishInput) validate() error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return errors.NewBadRequest("Dish name is required")
	}

	switch input.DietaryType {
	case "":
		input.DietaryType = models.DietaryVegetarian
	case models.DietaryVegetarian, models.DietaryNonVegetarian:
	default:
		return errors.NewBadRequest("Dietary type must be vegetarian or non-vegetarian")
	}

	if input.SpiceLevel != nil && (*input.SpiceLevel < 0 || *input.SpiceLevel > 3) {
		return errors.NewBadRequest("Spice level must be between 0 and 3")
	}
	if input.Price != nil && *input.Price < 0 {
		return errors.NewBadRequest("Price cannot be negative")
	}
	return nil
}

// Create adds a dish to one of the user's restaurants and links it to the
// given categories.
func (s *DishService) Create(ctx context.Context, userID, restaurantID string, input DishInput) (*models.Dish, error) {
	ctx = ensuredContext(ctx)

	if _, err := s.restaurants.Get(ctx, userID, restaurantID); err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	if err := s.ensureCategories(ctx, restaurantID, input.CategoryIDs); err != nil {
		return nil, err
	}

	dish := &models.Dish{
		RestaurantID: restaurantID,
		Name:         input.Name,
		Description:  strings.TrimSpace(input.Description),
		Image:        input.Image,
		SpiceLevel:   input.SpiceLevel,
		DietaryType:  input.DietaryType,
		Price:        input.Price,
		Tags:         input.Tags,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(dish).Error; err != nil {
			return fmt.Errorf("create: %w", err)
		}
		return replaceDishCategories(tx, dish.ID, input.CategoryIDs)
	})
	if err != nil {
		return nil, fmt.Errorf("dish service: %w", err)
	}

	return s.Get(ctx, userID, restaurantID, dish.ID)
}

// List returns the restaurant's dishes with their categories preloaded.
// A non-empty categoryID restricts the list to dishes linked to it.
func (s *DishService) List(ctx context.Context, userID, restaurantID, categoryID string) ([]models.Dish, error) {
	ctx = ensuredContext(ctx)

	if _, err := s.restaurants.Get(ctx, userID, restaurantID); err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Preload("Categories").
		Where("dishes.restaurant_id = ?", restaurantID).
		Order("dishes.created_at DESC")
	if categoryID != "" {
		query = query.
			Joins("JOIN dish_categories ON dish_categories.dish_id = dishes.id").
			Where("dish_categories.category_id = ?", categoryID)
	}

	var dishes []models.Dish
	if err := query.Find(&dishes).Error; err != nil {
		return nil, fmt.Errorf("dish service: list: %w", err)
	}
	if dishes == nil {
		dishes = []models.Dish{}
	}
	return dishes, nil
}

// Get loads one dish of the user's restaurant with categories preloaded.
func (s *DishService) Get(ctx context.Context, userID, restaurantID, dishID string) (*models.Dish, error) {
	ctx = ensuredContext(ctx)

	if _, err := s.restaurants.Get(ctx, userID, restaurantID); err != nil {
		return nil, err
	}

	var dish models.Dish
	err := s.db.WithContext(ctx).
		Preload("Categories").
		Where("id = ? AND restaurant_id = ?", dishID, restaurantID).
		First(&dish).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFound("Dish not found")
		}
		return nil, fmt.Errorf("dish service: get: %w", err)
	}
	return &dish, nil
}

// Update rewrites a dish and replaces its category set.
func (s *DishService) Update(ctx context.Context, userID, restaurantID, dishID string, input DishInput) (*models.Dish, error) {
	ctx = ensuredContext(ctx)

	dish, err := s.Get(ctx, userID, restaurantID, dishID)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	if err := s.ensureCategories(ctx, restaurantID, input.CategoryIDs); err != nil {
		return nil, err
	}

	updates := map[string]any{
		"name":         input.Name,
		"description":  strings.TrimSpace(input.Description),
		"spice_level":  input.SpiceLevel,
		"dietary_type": input.DietaryType,
		"price":        input.Price,
	}
	if input.Image != "" {
		updates["image"] = input.Image
	}
	if input.Tags != nil {
		updates["tags"] = input.Tags
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(dish).Updates(updates).Error; err != nil {
			return fmt.Errorf("update: %w", err)
		}
		if err := tx.Where("dish_id = ?", dish.ID).Delete(&models.DishCategory{}).Error; err != nil {
			return fmt.Errorf("clear categories: %w", err)
		}
		return replaceDishCategories(tx, dish.ID, input.CategoryIDs)
	})
	if err != nil {
		return nil, fmt.Errorf("dish service: %w", err)
	}

	return s.Get(ctx, userID, restaurantID, dishID)
}

// Delete removes a dish and its category links.
func (s *DishService) Delete(ctx context.Context, userID, restaurantID, dishID string) error {
	ctx = ensuredContext(ctx)

	dish, err := s.Get(ctx, userID, restaurantID, dishID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("dish_id = ?", dish.ID).Delete(&models.DishCategory{}).Error; err != nil {
			return fmt.Errorf("dish service: delete links: %w", err)
		}
		if err := tx.Delete(&models.Dish{}, "id = ?", dish.ID).Error; err != nil {
			return fmt.Errorf("dish service: delete: %w", err)
		}
		return nil
	})
}

// ensureCategories verifies every referenced category belongs to the
// restaurant. A category from elsewhere reads as missing.
func (s *DishService) ensureCategories(ctx context.Context, restaurantID string, categoryIDs []string) error {
	if len(categoryIDs) == 0 {
		return nil
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&models.Category{}).
		Where("restaurant_id = ? AND id IN ?", restaurantID, categoryIDs).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("dish service: check categories: %w", err)
	}
	if count != int64(len(uniqueStrings(categoryIDs))) {
		return errors.NewNotFound("Category not found")
	}
	return nil
}

func replaceDishCategories(tx *gorm.DB, dishID string, categoryIDs []string) error {
	for _, categoryID := range uniqueStrings(categoryIDs) {
		link := models.DishCategory{DishID: dishID, CategoryID: categoryID}
		if err := tx.Create(&link).Error; err != nil {
			return fmt.Errorf("link category: %w", err)
		}
	}
	return nil
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
