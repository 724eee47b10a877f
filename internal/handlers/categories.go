package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dineqr/dineqr/internal/services"
	"github.com/dineqr/dineqr/pkg/response"
)

// CategoryHandler exposes CRUD for a restaurant's category tree. Routes are
// nested under /api/restaurants/:id so ownership is checked on every call.
type CategoryHandler struct {
	categories *services.CategoryService
}

func NewCategoryHandler(categories *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

type categoryRequest struct {
	Name     string  `json:"name" validate:"required,min=1,max=200"`
	ParentID *string `json:"parent_id" validate:"omitempty,uuid4"`
}

// categoryUpdateRequest distinguishes an omitted parent_id (keep the current
// parent) from an explicit null (detach to top level) via the double pointer.
type categoryUpdateRequest struct {
	Name     string   `json:"name" validate:"required,min=1,max=200"`
	ParentID **string `json:"parent_id" validate:"omitempty,uuid4"`
}

// POST /api/restaurants/:id/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	var req categoryRequest
	if !bindAndValidate(c, &req) {
		return
	}

	category, err := h.categories.Create(requestContext(c), user.ID, c.Param("id"), services.CategoryInput{
		Name:     req.Name,
		ParentID: req.ParentID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, category)
}

// GET /api/restaurants/:id/categories
func (h *CategoryHandler) List(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	tree, err := h.categories.List(requestContext(c), user.ID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, tree)
}

// PUT /api/restaurants/:id/categories/:categoryId
func (h *CategoryHandler) Update(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	var req categoryUpdateRequest
	if !bindAndValidate(c, &req) {
		return
	}

	input := services.CategoryUpdateInput{Name: req.Name}
	if req.ParentID != nil {
		input.ParentSet = true
		input.ParentID = *req.ParentID
	}

	category, err := h.categories.Update(requestContext(c), user.ID, c.Param("id"), c.Param("categoryId"), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, category)
}

// DELETE /api/restaurants/:id/categories/:categoryId
func (h *CategoryHandler) Delete(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	if err := h.categories.Delete(requestContext(c), user.ID, c.Param("id"), c.Param("categoryId")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
