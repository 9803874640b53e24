package grant

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"imovelhub/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListMine returns everything granted to the authenticated user
func (h *Handler) ListMine(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Sessão inválida. Inicie sessão novamente.")
		return
	}

	grants, err := h.service.ListByGrantee(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusServiceUnavailable, "TRANSPORT_ERROR", "Serviço temporariamente indisponível. Tente novamente.")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"grants": grants})
}
