package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dineqr/dineqr/internal/services"
	"github.com/dineqr/dineqr/pkg/response"
)

// MenuHandler serves the public menu that QR codes point at. No auth.
type MenuHandler struct {
	menus *services.MenuService
}

func NewMenuHandler(menus *services.MenuService) *MenuHandler {
	return &MenuHandler{menus: menus}
}

// GET /api/menu/:restaurantId
func (h *MenuHandler) Get(c *gin.Context) {
	menu, err := h.menus.GetMenu(requestContext(c), c.Param("restaurantId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, menu)
}
