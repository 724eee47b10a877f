package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dineqr/dineqr/internal/database/testutil"
	"github.com/dineqr/dineqr/internal/models"
	"github.com/dineqr/dineqr/pkg/errors"
)

func newCategoryFixture(t *testing.T) (*gorm.DB, *CategoryService, *models.User, *models.Restaurant) {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")

	restaurants, err := NewRestaurantService(db)
	require.NoError(t, err)
	restaurant, err := restaurants.Create(context.Background(), owner.ID, RestaurantInput{Name: "Chez Ada"})
	require.NoError(t, err)

	service, err := NewCategoryService(db, restaurants)
	require.NoError(t, err)
	return db, service, owner, restaurant
}

func TestCategoryServiceCreateTopLevelAndChild(t *testing.T) {
	_, service, owner, restaurant := newCategoryFixture(t)

	parent, err := service.Create(context.Background(), owner.ID, restaurant.ID, CategoryInput{Name: "Mains"})
	require.NoError(t, err)
	require.Nil(t, parent.ParentID)

	child, err := service.Create(context.Background(), owner.ID, restaurant.ID, CategoryInput{
		Name:     "Pasta",
		ParentID: &parent.ID,
	})
	require.NoError(t, err)
	require.Equal(t, parent.ID, *child.ParentID)
}

func TestCategoryServiceRejectsThirdLevel(t *testing.T) {
	_, service, owner, restaurant := newCategoryFixture(t)

	parent, err := service.Create(context.Background(), owner.ID, restaurant.ID, CategoryInput{Name: "Mains"})
	require.NoError(t, err)
	child, err := service.Create(context.Background(), owner.ID, restaurant.ID, CategoryInput{
		Name: "Pasta", ParentID: &parent.ID,
	})
	require.NoError(t, err)

	_, err = service.Create(context.Background(), owner.ID, restaurant.ID, CategoryInput{
		Name: "Ravioli", ParentID: &child.ID,
	})
	require.Error(t, err)
	require.Equal(t, errors.ErrBadRequest.Code, errors.FromError(err).Code)
}

func TestCategoryServiceRejectsForeignParent(t *testing.T) {
	db, service, owner, restaurant := newCategoryFixture(t)

	otherOwner := createTestUser(t, db, "other@example.com")
	restaurants, err := NewRestaurantService(db)
	require.NoError(t, err)
	otherRestaurant, err := restaurants.Create(context.Background(), otherOwner.ID, RestaurantInput{Name: "Elsewhere"})
	require.NoError(t, err)
	foreign, err := service.Create(context.Background(), otherOwner.ID, otherRestaurant.ID, CategoryInput{Name: "Mains"})
	require.NoError(t, err)

	_, err = service.Create(context.Background(), owner.ID, restaurant.ID, CategoryInput{
		Name: "Pasta", ParentID: &foreign.ID,
	})
	require.Error(t, err)
	require.Equal(t, errors.ErrNotFound.Code, errors.FromError(err).Code)
}

func TestCategoryServiceUpdateRules(t *testing.T) {
	_, service, owner, restaurant := newCategoryFixture(t)

	parent, err := service.Create(context.Background(), owner.ID, restaurant.ID, CategoryInput{Name: "Mains"})
	require.NoError(t, err)
	_, err = service.Create(context.Background(), owner.ID, restaurant.ID, CategoryInput{
		Name: "Pasta", ParentID: &parent.ID,
	})
	require.NoError(t, err)
	other, err := service.Create(context.Background(), owner.ID, restaurant.ID, CategoryInput{Name: "Drinks"})
	require.NoError(t, err)

	// A category with children cannot itself become a child.
	_, err = service.Update(context.Background(), owner.ID, restaurant.ID, parent.ID, CategoryUpdateInput{
		Name: "Mains", ParentID: &other.ID, ParentSet: true,
	})
	require.Error(t, err)
	require.Equal(t, errors.ErrBadRequest.Code, errors.FromError(err).Code)

	// Self-parenting is rejected.
	_, err = service.Update(context.Background(), owner.ID, restaurant.ID, other.ID, CategoryUpdateInput{
		Name: "Drinks", ParentID: &other.ID, ParentSet: true,
	})
	require.Error(t, err)

	// A childless top-level category can move under another.
	moved, err := service.Update(context.Background(), owner.ID, restaurant.ID, other.ID, CategoryUpdateInput{
		Name: "Drinks", ParentID: &parent.ID, ParentSet: true,
	})
	require.NoError(t, err)
	require.Equal(t, parent.ID, *moved.ParentID)

	// A rename that does not mention the parent keeps it.
	renamed, err := service.Update(context.Background(), owner.ID, restaurant.ID, other.ID, CategoryUpdateInput{Name: "Beverages"})
	require.NoError(t, err)
	require.Equal(t, "Beverages", renamed.Name)
	require.NotNil(t, renamed.ParentID)
	require.Equal(t, parent.ID, *renamed.ParentID)

	// An explicit nil parent detaches back to top level.
	root, err := service.Update(context.Background(), owner.ID, restaurant.ID, other.ID, CategoryUpdateInput{
		Name: "Drinks", ParentSet: true,
	})
	require.NoError(t, err)
	require.Nil(t, root.ParentID)

	reloaded, err := service.Get(context.Background(), owner.ID, restaurant.ID, other.ID)
	require.NoError(t, err)
	require.Nil(t, reloaded.ParentID)
}

func TestCategoryServiceListTreeWithDishCounts(t *testing.T) {
	db, service, owner, restaurant := newCategoryFixture(t)

	parent, err := service.Create(context.Background(), owner.ID, restaurant.ID, CategoryInput{Name: "Mains"})
	require.NoError(t, err)
	child, err := service.Create(context.Background(), owner.ID, restaurant.ID, CategoryInput{
		Name: "Pasta", ParentID: &parent.ID,
	})
	require.NoError(t, err)

	dish := &models.Dish{RestaurantID: restaurant.ID, Name: "Carbonara", DietaryType: models.DietaryNonVegetarian}
	require.NoError(t, db.Create(dish).Error)
	require.NoError(t, db.Create(&models.DishCategory{DishID: dish.ID, CategoryID: child.ID}).Error)

	tree, err := service.List(context.Background(), owner.ID, restaurant.ID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Equal(t, "Mains", tree[0].Name)
	require.Len(t, tree[0].Children, 1)
	require.Equal(t, "Pasta", tree[0].Children[0].Name)
	require.EqualValues(t, 1, tree[0].Children[0].DishCount)
	require.Zero(t, tree[0].DishCount)
}

func TestCategoryServiceDeleteCascadesChildrenAndLinks(t *testing.T) {
	db, service, owner, restaurant := newCategoryFixture(t)

	parent, err := service.Create(context.Background(), owner.ID, restaurant.ID, CategoryInput{Name: "Mains"})
	require.NoError(t, err)
	child, err := service.Create(context.Background(), owner.ID, restaurant.ID, CategoryInput{
		Name: "Pasta", ParentID: &parent.ID,
	})
	require.NoError(t, err)

	dish := &models.Dish{RestaurantID: restaurant.ID, Name: "Carbonara", DietaryType: models.DietaryNonVegetarian}
	require.NoError(t, db.Create(dish).Error)
	require.NoError(t, db.Create(&models.DishCategory{DishID: dish.ID, CategoryID: child.ID}).Error)

	require.NoError(t, service.Delete(context.Background(), owner.ID, restaurant.ID, parent.ID))

	var categoryCount, linkCount, dishCount int64
	require.NoError(t, db.Model(&models.Category{}).Count(&categoryCount).Error)
	require.NoError(t, db.Model(&models.DishCategory{}).Count(&linkCount).Error)
	require.NoError(t, db.Model(&models.Dish{}).Count(&dishCount).Error)
	require.Zero(t, categoryCount)
	require.Zero(t, linkCount)
	// Dishes survive category deletion.
	require.EqualValues(t, 1, dishCount)
}
