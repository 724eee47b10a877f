package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/dineqr/dineqr/internal/services"
	"github.com/dineqr/dineqr/pkg/response"
)

// RestaurantHandler exposes CRUD for the authenticated owner's restaurants.
type RestaurantHandler struct {
	restaurants *services.RestaurantService
}

func NewRestaurantHandler(restaurants *services.RestaurantService) *RestaurantHandler {
	return &RestaurantHandler{restaurants: restaurants}
}

type restaurantRequest struct {
	Name        string         `json:"name" validate:"required,min=1,max=200"`
	Description string         `json:"description" validate:"max=2000"`
	Address     string         `json:"address" validate:"max=500"`
	Settings    datatypes.JSON `json:"settings"`
}

func (r restaurantRequest) toInput() services.RestaurantInput {
	return services.RestaurantInput{
		Name:        r.Name,
		Description: r.Description,
		Address:     r.Address,
		Settings:    r.Settings,
	}
}

// POST /api/restaurants
func (h *RestaurantHandler) Create(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	var req restaurantRequest
	if !bindAndValidate(c, &req) {
		return
	}

	restaurant, err := h.restaurants.Create(requestContext(c), user.ID, req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, restaurant)
}

// GET /api/restaurants
func (h *RestaurantHandler) List(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	restaurants, err := h.restaurants.List(requestContext(c), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, restaurants)
}

// GET /api/restaurants/:id
func (h *RestaurantHandler) Get(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	restaurant, err := h.restaurants.Get(requestContext(c), user.ID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, restaurant)
}

// PUT /api/restaurants/:id
func (h *RestaurantHandler) Update(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	var req restaurantRequest
	if !bindAndValidate(c, &req) {
		return
	}

	restaurant, err := h.restaurants.Update(requestContext(c), user.ID, c.Param("id"), req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, restaurant)
}

// DELETE /api/restaurants/:id
func (h *RestaurantHandler) Delete(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	if err := h.restaurants.Delete(requestContext(c), user.ID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
