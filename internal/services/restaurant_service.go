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

// RestaurantService manages an owner's restaurants. Every lookup is scoped to
// the owning user; a restaurant belonging to someone else is reported as
// missing rather than forbidden, so the API never confirms that an ID exists.
type RestaurantService struct {
	db *gorm.DB
}

// NewRestaurantService constructs a restaurant service.
func NewRestaurantService(db *gorm.DB) (*RestaurantService, error) {
	if db == nil {
		return nil, fmt.Errorf("restaurant service: db is required")
	}
	return &RestaurantService{db: db}, nil
}

// RestaurantInput carries the writable fields of a restaurant.
type RestaurantInput struct {
	Name        string
	Description string
	Address     string
	Settings    datatypes.JSON
}

// Create adds a restaurant for the user.
func (s *RestaurantService) Create(ctx context.Context, userID string, input RestaurantInput) (*models.Restaurant, error) {
	ctx = ensuredContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewBadRequest("Restaurant name is required")
	}

	restaurant := &models.Restaurant{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Address:     strings.TrimSpace(input.Address),
		Settings:    input.Settings,
	}

	if err := s.db.WithContext(ctx).Create(restaurant).Error; err != nil {
		return nil, fmt.Errorf("restaurant service: create: %w", err)
	}
	return restaurant, nil
}

// List returns the user's restaurants, newest first.
func (s *RestaurantService) List(ctx context.Context, userID string) ([]models.Restaurant, error) {
	ctx = ensuredContext(ctx)

	var restaurants []models.Restaurant
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&restaurants).Error
	if err != nil {
		return nil, fmt.Errorf("restaurant service: list: %w", err)
	}
	return restaurants, nil
}

// Get loads one of the user's restaurants by ID.
func (s *RestaurantService) Get(ctx context.Context, userID, restaurantID string) (*models.Restaurant, error) {
	ctx = ensuredContext(ctx)

	var restaurant models.Restaurant
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", restaurantID, userID).
		First(&restaurant).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFound("Restaurant not found")
		}
		return nil, fmt.Errorf("restaurant service: get: %w", err)
	}
	return &restaurant, nil
}

// Update applies changes to one of the user's restaurants.
func (s *RestaurantService) Update(ctx context.Context, userID, restaurantID string, input RestaurantInput) (*models.Restaurant, error) {
	ctx = ensuredContext(ctx)

	restaurant, err := s.Get(ctx, userID, restaurantID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewBadRequest("Restaurant name is required")
	}

	updates := map[string]any{
		"name":        name,
		"description": strings.TrimSpace(input.Description),
		"address":     strings.TrimSpace(input.Address),
	}
	if input.Settings != nil {
		updates["settings"] = input.Settings
	}

	if err := s.db.WithContext(ctx).Model(restaurant).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("restaurant service: update: %w", err)
	}
	return restaurant, nil
}

// Delete removes one of the user's restaurants and everything reachable from
// it. The dish/category rows cascade at the database level; the join rows are
// cleared inside the same transaction for drivers without FK enforcement.
func (s *RestaurantService) Delete(ctx context.Context, userID, restaurantID string) error {
	ctx = ensuredContext(ctx)

	restaurant, err := s.Get(ctx, userID, restaurantID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("dish_id IN (?)",
			tx.Model(&models.Dish{}).Select("id").Where("restaurant_id = ?", restaurant.ID),
		).Delete(&models.DishCategory{}).Error; err != nil {
			return fmt.Errorf("restaurant service: delete dish links: %w", err)
		}
		if err := tx.Where("restaurant_id = ?", restaurant.ID).Delete(&models.Dish{}).Error; err != nil {
			return fmt.Errorf("restaurant service: delete dishes: %w", err)
		}
		if err := tx.Where("restaurant_id = ?", restaurant.ID).Delete(&models.Category{}).Error; err != nil {
			return fmt.Errorf("restaurant service: delete categories: %w", err)
		}
		if err := tx.Delete(restaurant).Error; err != nil {
			return fmt.Errorf("restaurant service: delete: %w", err)
		}
		return nil
	})
}
