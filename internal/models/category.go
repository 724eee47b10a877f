package models

// Category is a node in the two-level menu hierarchy. Top-level categories
// have a nil ParentID; children always point at a top-level parent within the
// same restaurant.
type Category struct {
	BaseModel

	RestaurantID string  `gorm:"type:uuid;not null;index" json:"restaurant_id"`
	Name         string  `gorm:"not null" json:"name"`
	ParentID     *string `gorm:"type:uuid;index" json:"parent_id"`

	Parent   *Category  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children []Category `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"children,omitempty"`

	Dishes []Dish `gorm:"many2many:dish_categories;" json:"dishes,omitempty"`

	// DishCount is populated by list queries; it is not a column.
	DishCount int64 `gorm:"-" json:"dish_count"`
}
