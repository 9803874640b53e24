package payment

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"imovelhub/internal/domain/request"
	"imovelhub/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ResultCallback receives the billing provider's server-to-server
// confirmation. The provider expects a plain "OK<InvId>" body on success.
func (h *Handler) ResultCallback(c *gin.Context) {
	outSum := c.PostForm("OutSum")
	signature := c.PostForm("SignatureValue")
	invID, err := strconv.ParseInt(c.PostForm("InvId"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_CALLBACK", "Invalid InvId")
		return
	}

	shp := map[string]string{}
	if err := c.Request.ParseForm(); err == nil {
		for k, v := range c.Request.PostForm {
			if strings.HasPrefix(k, "Shp_") && len(v) > 0 {
				shp[strings.TrimPrefix(k, "Shp_")] = v[0]
			}
		}
	}

	ack, err := h.service.HandleResultCallback(c.Request.Context(), outSum, invID, signature, shp)
	switch {
	case errors.Is(err, ErrInvalidSignature):
		response.Error(c, http.StatusBadRequest, "INVALID_SIGNATURE", "Signature verification failed")
	case errors.Is(err, ErrMissingRequestRef):
		response.Error(c, http.StatusBadRequest, "INVALID_CALLBACK", "Missing request reference")
	case errors.Is(err, request.ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Unknown request reference")
	case err != nil:
		response.Error(c, http.StatusInternalServerError, "CALLBACK_FAILED", "Failed to process payment callback")
	default:
		c.String(http.StatusOK, ack)
	}
}
