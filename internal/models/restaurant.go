package models

import "gorm.io/datatypes"

// Restaurant groups the categories and dishes one owner publishes as a menu.
type Restaurant struct {
	BaseModel

	UserID      string `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`

	// Settings holds presentation options (theme, currency symbol, ...) that
	// the menu page interprets client-side.
	Settings datatypes.JSON `json:"settings,omitempty"`

	Categories []Category `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE" json:"categories,omitempty"`
	Dishes     []Dish     `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE" json:"dishes,omitempty"`
}
