package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/dineqr/dineqr/internal/database/testutil"
	"github.com/dineqr/dineqr/internal/models"
	"github.com/dineqr/dineqr/internal/services"
	"github.com/dineqr/dineqr/pkg/response"
)

func TestMenuHandlerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.MustOpenTestDB(t)

	owner := &models.User{Email: "owner@example.com", FullName: "Ada", CountryName: "France"}
	require.NoError(t, db.Create(owner).Error)
	restaurant := &models.Restaurant{UserID: owner.ID, Name: "Chez Ada"}
	require.NoError(t, db.Create(restaurant).Error)
	category := &models.Category{RestaurantID: restaurant.ID, Name: "Mains"}
	require.NoError(t, db.Create(category).Error)
	dish := &models.Dish{RestaurantID: restaurant.ID, Name: "Soup", DietaryType: models.DietaryVegetarian}
	require.NoError(t, db.Create(dish).Error)
	require.NoError(t, db.Create(&models.DishCategory{DishID: dish.ID, CategoryID: category.ID}).Error)

	menus, err := services.NewMenuService(db)
	require.NoError(t, err)
	handler := NewMenuHandler(menus)

	r := gin.New()
	r.GET("/api/menu/:restaurantId", handler.Get)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/menu/"+restaurant.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var payload response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	data := payload.Data.(map[string]any)
	require.Equal(t, "Chez Ada", data["restaurant"].(map[string]any)["name"])
	categories := data["categories"].([]any)
	require.Len(t, categories, 1)
	dishes := categories[0].(map[string]any)["dishes"].([]any)
	require.Len(t, dishes, 1)

	// Unknown restaurant yields 404.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/menu/missing-id", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestQRHandlerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.MustOpenTestDB(t)

	owner := &models.User{Email: "owner@example.com", FullName: "Ada", CountryName: "France"}
	require.NoError(t, db.Create(owner).Error)
	restaurant := &models.Restaurant{UserID: owner.ID, Name: "Chez Ada"}
	require.NoError(t, db.Create(restaurant).Error)

	menus, err := services.NewMenuService(db)
	require.NoError(t, err)
	handler := NewQRHandler(menus, "https://menus.example.com")

	r := gin.New()
	r.GET("/api/qr/:restaurantId", handler.Get)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/qr/"+restaurant.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "image/png", w.Header().Get("Content-Type"))
	require.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))
	require.NotEmpty(t, w.Body.Bytes())

	// PNG magic bytes.
	require.Equal(t, []byte{0x89, 'P', 'N', 'G'}, w.Body.Bytes()[:4])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/qr/unknown", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}
