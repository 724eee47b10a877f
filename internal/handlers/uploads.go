package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dineqr/dineqr/internal/storage"
	"github.com/dineqr/dineqr/pkg/errors"
	"github.com/dineqr/dineqr/pkg/response"
)

// UploadHandler accepts dish image uploads and hands back the public path the
// image is served from.
type UploadHandler struct {
	store storage.ImageStore
}

func NewUploadHandler(store storage.ImageStore) *UploadHandler {
	return &UploadHandler{store: store}
}

// POST /api/uploads
func (h *UploadHandler) Upload(c *gin.Context) {
	if _, ok := mustCurrentUser(c); !ok {
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		response.Error(c, errors.NewBadRequest("An image file is required in the 'image' field"))
		return
	}
	if header.Size > storage.MaxImageSize {
		response.Error(c, errors.NewBadRequest("Image exceeds the 5 MB size limit"))
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, errors.Wrap(err, "Failed to read uploaded image"))
		return
	}
	defer file.Close()

	path, err := h.store.Save(requestContext(c), file, header.Header.Get("Content-Type"), header.Size)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"path": path})
}
