package handlers

import (
	"net/http"

	"github.com/Dosada05/ff-arena/middleware"
	"github.com/Dosada05/ff-arena/models"
	"github.com/Dosada05/ff-arena/repositories"
	"github.com/Dosada05/ff-arena/services"
)

type DepositHandler struct {
	depositService services.DepositService
}

func NewDepositHandler(depositService services.DepositService) *DepositHandler {
	return &DepositHandler{depositService: depositService}
}

func parseRequestStatusFilter(r *http.Request) repositories.ListRequestsFilter {
	filter := repositories.ListRequestsFilter{
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.RequestStatus(raw)
		filter.Status = &status
	}
	return filter
}

// Create - заявка на пополнение с ручной модерацией.
func (h *DepositHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input services.CreateDepositInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	req, err := h.depositService.CreateRequest(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"deposit": req}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// InitiateOrder выдаёт ссылку заказа для быстрого пути пополнения.
func (h *DepositHandler) InitiateOrder(w http.ResponseWriter, r *http.Request) {
	orderRef := h.depositService.InitiateGatewayOrder()

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"order_ref": orderRef}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Verify - быстрый путь: подтверждение платежа через шлюз без модерации.
func (h *DepositHandler) Verify(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input struct {
		OrderRef string `json:"order_ref"`
		Amount   int    `json:"amount,omitempty"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	req, err := h.depositService.VerifyGatewayPayment(r.Context(), userID, input.OrderRef, input.Amount)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"deposit": req}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DepositHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	deposits, err := h.depositService.ListByUser(r.Context(), userID, parseRequestStatusFilter(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"deposits": deposits}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DepositHandler) List(w http.ResponseWriter, r *http.Request) {
	deposits, err := h.depositService.List(r.Context(), parseRequestStatusFilter(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"deposits": deposits}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DepositHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.process(w, r, true)
}

func (h *DepositHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.process(w, r, false)
}

func (h *DepositHandler) process(w http.ResponseWriter, r *http.Request, approve bool) {
	adminID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	requestID, err := idParam(r, "requestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Notes *string `json:"notes,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	var req *models.DepositRequest
	if approve {
		req, err = h.depositService.Approve(r.Context(), adminID, requestID, input.Notes)
	} else {
		req, err = h.depositService.Reject(r.Context(), adminID, requestID, input.Notes)
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"deposit": req}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
