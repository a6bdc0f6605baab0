package handlers

import (
	"net/http"

	"github.com/Dosada05/ff-arena/middleware"
	"github.com/Dosada05/ff-arena/models"
	"github.com/Dosada05/ff-arena/services"
)

type WithdrawalHandler struct {
	withdrawalService services.WithdrawalService
}

func NewWithdrawalHandler(withdrawalService services.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawalService: withdrawalService}
}

func (h *WithdrawalHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input struct {
		Amount int `json:"amount"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	req, err := h.withdrawalService.CreateRequest(r.Context(), userID, input.Amount)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"withdrawal": req}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *WithdrawalHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	withdrawals, err := h.withdrawalService.ListByUser(r.Context(), userID, parseRequestStatusFilter(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"withdrawals": withdrawals}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *WithdrawalHandler) List(w http.ResponseWriter, r *http.Request) {
	withdrawals, err := h.withdrawalService.List(r.Context(), parseRequestStatusFilter(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"withdrawals": withdrawals}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *WithdrawalHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.process(w, r, true)
}

func (h *WithdrawalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.process(w, r, false)
}

func (h *WithdrawalHandler) process(w http.ResponseWriter, r *http.Request, approve bool) {
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

	var req *models.WithdrawalRequest
	if approve {
		req, err = h.withdrawalService.Approve(r.Context(), adminID, requestID, input.Notes)
	} else {
		req, err = h.withdrawalService.Reject(r.Context(), adminID, requestID, input.Notes)
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"withdrawal": req}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
