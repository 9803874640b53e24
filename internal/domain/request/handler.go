package request

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"imovelhub/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create submits a new access request
func (h *Handler) Create(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Sessão inválida. Inicie sessão novamente.")
		return
	}

	var dto CreateRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Pedido inválido.")
		return
	}

	req, err := h.service.Create(c.Request.Context(), userID, CreateInput{
		Kind:            dto.Kind,
		ResponderID:     dto.ResponderID,
		PropertyID:      dto.PropertyID,
		VaultDocumentID: dto.VaultDocumentID,
		PropertyTitle:   dto.PropertyTitle,
		Message:         dto.Message,
		AuditIP:         c.ClientIP(),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, ToResponse(req, time.Now()))
}

// Accept applies the accept decision
func (h *Handler) Accept(c *gin.Context) {
	h.decide(c, OutcomeAccepted)
}

// Reject applies the reject decision with an optional reason
func (h *Handler) Reject(c *gin.Context) {
	h.decide(c, OutcomeRejected)
}

func (h *Handler) decide(c *gin.Context, outcome Outcome) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Sessão inválida. Inicie sessão novamente.")
		return
	}

	var dto DecideRequestDTO
	if outcome == OutcomeRejected {
		// Body is optional for rejections without a reason
		_ = c.ShouldBindJSON(&dto)
	}

	id := c.Param("id")
	req, err := h.service.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, fmt.Errorf("load request: %w", err))
		return
	}
	if req == nil {
		h.writeError(c, ErrNotFound)
		return
	}
	if req.ResponderID != userID {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Este pedido não lhe está destinado.")
		return
	}

	if err := h.service.Decide(c.Request.Context(), id, outcome, dto.Reason); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "outcome": outcome})
}

// ListOutgoing returns the authenticated user's own requests
func (h *Handler) ListOutgoing(c *gin.Context) {
	h.list(c, h.service.ListOutgoing)
}

// ListIncoming returns the requests awaiting the authenticated responder
func (h *Handler) ListIncoming(c *gin.Context) {
	h.list(c, h.service.ListIncoming)
}

func (h *Handler) list(c *gin.Context, fetch func(ctx context.Context, userID int64) ([]*AccessRequest, error)) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Sessão inválida. Inicie sessão novamente.")
		return
	}

	reqs, err := fetch(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	now := time.Now()
	items := make([]*RequestResponse, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, ToResponse(r, now))
	}
	response.Success(c, http.StatusOK, gin.H{"requests": items})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var dup *DuplicateRequestError
	var cooldown *CooldownActiveError

	switch {
	case errors.Is(err, ErrUnauthenticated):
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Sessão inválida. Inicie sessão novamente.")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Pedido não encontrado.")
	case errors.Is(err, ErrAlreadyDecided):
		response.Error(c, http.StatusConflict, "ALREADY_DECIDED", "Este pedido já foi tratado.")
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Pedido inválido.")
	case errors.As(err, &dup):
		response.ErrorWithDetails(c, http.StatusConflict, "DUPLICATE_REQUEST",
			"Já existe um pedido ativo para este recurso.",
			gin.H{"current_status": dup.Status})
	case errors.As(err, &cooldown):
		response.ErrorWithDetails(c, http.StatusTooManyRequests, "COOLDOWN_ACTIVE",
			fmt.Sprintf("Tem de aguardar %d horas antes de voltar a pedir.", cooldown.HoursRemaining),
			gin.H{"hours_remaining": cooldown.HoursRemaining})
	default:
		response.Error(c, http.StatusServiceUnavailable, "TRANSPORT_ERROR", "Serviço temporariamente indisponível. Tente novamente.")
	}
}
