package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/dineqr/dineqr/internal/services"
	"github.com/dineqr/dineqr/pkg/errors"
	"github.com/dineqr/dineqr/pkg/metrics"
	"github.com/dineqr/dineqr/pkg/response"
)

const qrImageSize = 512

// QRHandler renders the printable QR code that links a table card to the
// restaurant's public menu page.
type QRHandler struct {
	menus *services.MenuService

	// baseURL overrides the menu link origin. When empty the origin is
	// derived from the incoming request.
	baseURL string
}

func NewQRHandler(menus *services.MenuService, baseURL string) *QRHandler {
	return &QRHandler{menus: menus, baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
}

// GET /api/qr/:restaurantId
func (h *QRHandler) Get(c *gin.Context) {
	restaurantID := c.Param("restaurantId")

	// Only existing restaurants get a QR code.
	if _, err := h.menus.GetMenu(requestContext(c), restaurantID); err != nil {
		response.Error(c, err)
		return
	}

	link := fmt.Sprintf("%s/menu/%s", h.origin(c), restaurantID)
	png, err := qrcode.Encode(link, qrcode.Medium, qrImageSize)
	if err != nil {
		response.Error(c, errors.Wrap(err, "Failed to render QR code"))
		return
	}

	metrics.QRRendered.Inc()
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}

// origin picks the configured base URL, falling back to the request's host
// and forwarded proto so QR codes work behind a reverse proxy.
func (h *QRHandler) origin(c *gin.Context) string {
	if h.baseURL != "" {
		return h.baseURL
	}

	scheme := c.GetHeader("X-Forwarded-Proto")
	if scheme == "" {
		scheme = "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
	}
	return scheme + "://" + c.Request.Host
}
