package models

import (
	"time"

	"gorm.io/datatypes"
)

// Dietary type values accepted for a dish.
const (
	DietaryVegetarian    = "vegetarian"
	DietaryNonVegetarian = "non-vegetarian"
)

// Dish is a single menu item. A dish belongs to one restaurant and may appear
// in any number of that restaurant's categories.
type Dish struct {
	BaseModel

	RestaurantID string `gorm:"type:uuid;not null;index" json:"restaurant_id"`
	Name         string `gorm:"not null" json:"name"`
	Image        string `json:"image,omitempty"`
	Description  string `json:"description,omitempty"`

	// SpiceLevel ranges 0..3; nil means unspecified.
	SpiceLevel  *int     `json:"spice_level"`
	DietaryType string   `gorm:"not null;default:vegetarian" json:"dietary_type"`
	Price       *float64 `json:"price"`

	// Tags holds free-form labels (allergens, chef picks) rendered by the menu page.
	Tags datatypes.JSON `json:"tags,omitempty"`

	Categories []Category `gorm:"many2many:dish_categories;" json:"categories,omitempty"`
}

// DishCategory is the explicit join row between dishes and categories.
// Updates replace the full set for a dish rather than mutating rows.
type DishCategory struct {
	DishID     string    `gorm:"primaryKey;type:uuid" json:"dish_id"`
	CategoryID string    `gorm:"primaryKey;type:uuid" json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
}
