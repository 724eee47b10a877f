package services

import (
	"context"
	stderrors "errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dineqr/dineqr/internal/models"
	"github.com/dineqr/dineqr/pkg/errors"
	"github.com/dineqr/dineqr/pkg/metrics"
)

// MenuService assembles the public, unauthenticated menu view that QR codes
// link to. It is read-only and never exposes owner data.
type MenuService struct {
	db *gorm.DB
}

// NewMenuService constructs a menu service.
func NewMenuService(db *gorm.DB) (*MenuService, error) {
	if db == nil {
		return nil, fmt.Errorf("menu service: db is required")
	}
	return &MenuService{db: db}, nil
}

// Menu is the public menu document.
type Menu struct {
	Restaurant MenuRestaurant `json:"restaurant"`
	Categories []MenuCategory `json:"categories"`

	// Uncategorized lists dishes not linked to any category so nothing an
	// owner created silently disappears from the page.
	Uncategorized []models.Dish `json:"uncategorized,omitempty"`
}

// MenuRestaurant is the public projection of a restaurant.
type MenuRestaurant struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Address     string         `json:"address,omitempty"`
	Settings    datatypes.JSON `json:"settings,omitempty"`
}

// MenuCategory is a category with its dishes and nested subcategories.
type MenuCategory struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Dishes   []models.Dish  `json:"dishes"`
	Children []MenuCategory `json:"children,omitempty"`
}

// GetMenu builds the full menu for a restaurant. Anyone may call it; only the
// restaurant ID is required.
func (s *MenuService) GetMenu(ctx context.Context, restaurantID string) (*Menu, error) {
	ctx = ensuredContext(ctx)

	var restaurant models.Restaurant
	err := s.db.WithContext(ctx).Where("id = ?", restaurantID).First(&restaurant).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFound("Restaurant not found")
		}
		return nil, fmt.Errorf("menu service: load restaurant: %w", err)
	}

	var categories []models.Category
	err = s.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("created_at ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("menu service: load categories: %w", err)
	}

	var dishes []models.Dish
	err = s.db.WithContext(ctx).
		Preload("Categories").
		Where("restaurant_id = ?", restaurantID).
		Order("created_at ASC").
		Find(&dishes).Error
	if err != nil {
		return nil, fmt.Errorf("menu service: load dishes: %w", err)
	}

	menu := &Menu{
		Restaurant: MenuRestaurant{
			ID:          restaurant.ID,
			Name:        restaurant.Name,
			Description: restaurant.Description,
			Address:     restaurant.Address,
			Settings:    restaurant.Settings,
		},
		Categories: buildMenuTree(categories, dishes),
	}
	for _, dish := range dishes {
		if len(dish.Categories) == 0 {
			dish.Categories = nil
			menu.Uncategorized = append(menu.Uncategorized, dish)
		}
	}

	metrics.MenuViews.Inc()
	return menu, nil
}

func buildMenuTree(categories []models.Category, dishes []models.Dish) []MenuCategory {
	dishesByCategory := make(map[string][]models.Dish)
	for _, dish := range dishes {
		for _, category := range dish.Categories {
			flat := dish
			flat.Categories = nil
			dishesByCategory[category.ID] = append(dishesByCategory[category.ID], flat)
		}
	}

	node := func(category models.Category) MenuCategory {
		entry := MenuCategory{
			ID:     category.ID,
			Name:   category.Name,
			Dishes: dishesByCategory[category.ID],
		}
		if entry.Dishes == nil {
			entry.Dishes = []models.Dish{}
		}
		return entry
	}

	childrenByParent := make(map[string][]MenuCategory)
	for _, category := range categories {
		if category.ParentID != nil {
			childrenByParent[*category.ParentID] = append(childrenByParent[*category.ParentID], node(category))
		}
	}

	roots := make([]MenuCategory, 0, len(categories))
	for _, category := range categories {
		if category.ParentID != nil {
			continue
		}
		entry := node(category)
		entry.Children = childrenByParent[category.ID]
		roots = append(roots, entry)
	}
	return roots
}
