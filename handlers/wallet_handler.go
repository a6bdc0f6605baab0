package handlers

import (
	"net/http"

	"github.com/Dosada05/ff-arena/middleware"
	"github.com/Dosada05/ff-arena/models"
	"github.com/Dosada05/ff-arena/repositories"
	"github.com/Dosada05/ff-arena/services"
)

type WalletHandler struct {
	walletService services.WalletService
}

func NewWalletHandler(walletService services.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	balance, err := h.walletService.Balance(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"balance": balance}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func parseTransactionsFilter(r *http.Request) repositories.ListTransactionsFilter {
	filter := repositories.ListTransactionsFilter{
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
	}
	if raw := r.URL.Query().Get("type"); raw != "" {
		txnType := models.TransactionType(raw)
		filter.Type = &txnType
	}
	return filter
}

func (h *WalletHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	transactions, err := h.walletService.ListTransactions(r.Context(), userID, parseTransactionsFilter(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"transactions": transactions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListUserTransactions - журнал кошелька произвольного пользователя (только админ).
func (h *WalletHandler) ListUserTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	transactions, err := h.walletService.ListTransactions(r.Context(), userID, parseTransactionsFilter(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"transactions": transactions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Adjust - ручная корректировка баланса (только админ).
func (h *WalletHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	adminID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input services.AdjustBalanceInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	txn, err := h.walletService.Adjust(r.Context(), adminID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"transaction": txn}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Reconcile сверяет журнал кошелька пользователя с его балансом (только админ).
func (h *WalletHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.walletService.Reconcile(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"reconciliation": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
