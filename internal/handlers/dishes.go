package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/dineqr/dineqr/internal/services"
	"github.com/dineqr/dineqr/pkg/response"
)

// DishHandler exposes CRUD for a restaurant's dishes. Category assignments are
// replaced wholesale on every write.
type DishHandler struct {
	dishes *services.DishService
}

func NewDishHandler(dishes *services.DishService) *DishHandler {
	return &DishHandler{dishes: dishes}
}

type dishRequest struct {
	Name        string         `json:"name" validate:"required,min=1,max=200"`
	Description string         `json:"description" validate:"max=2000"`
	Image       string         `json:"image" validate:"max=500"`
	SpiceLevel  *int           `json:"spice_level" validate:"omitempty,min=0,max=3"`
	DietaryType string         `json:"dietary_type" validate:"omitempty,oneof=vegetarian non-vegetarian"`
	Price       *float64       `json:"price" validate:"omitempty,min=0"`
	Tags        datatypes.JSON `json:"tags"`
	CategoryIDs []string       `json:"category_ids" validate:"dive,uuid4"`
}

func (r dishRequest) toInput() services.DishInput {
	return services.DishInput{
		Name:        r.Name,
		Description: r.Description,
		Image:       r.Image,
		SpiceLevel:  r.SpiceLevel,
		DietaryType: r.DietaryType,
		Price:       r.Price,
		Tags:        r.Tags,
		CategoryIDs: r.CategoryIDs,
	}
}

// POST /api/restaurants/:id/dishes
func (h *DishHandler) Create(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	var req dishRequest
	if !bindAndValidate(c, &req) {
		return
	}

	dish, err := h.dishes.Create(requestContext(c), user.ID, c.Param("id"), req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, dish)
}

// GET /api/restaurants/:id/dishes?category=<uuid>
func (h *DishHandler) List(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	dishes, err := h.dishes.List(requestContext(c), user.ID, c.Param("id"), c.Query("category"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, dishes)
}

// GET /api/restaurants/:id/dishes/:dishId
func (h *DishHandler) Get(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	dish, err := h.dishes.Get(requestContext(c), user.ID, c.Param("id"), c.Param("dishId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, dish)
}

// PUT /api/restaurants/:id/dishes/:dishId
func (h *DishHandler) Update(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	var req dishRequest
	if !bindAndValidate(c, &req) {
		return
	}

	dish, err := h.dishes.Update(requestContext(c), user.ID, c.Param("id"), c.Param("dishId"), req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, dish)
}

// DELETE /api/restaurants/:id/dishes/:dishId
func (h *DishHandler) Delete(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	if err := h.dishes.Delete(requestContext(c), user.ID, c.Param("id"), c.Param("dishId")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
