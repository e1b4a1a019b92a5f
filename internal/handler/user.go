package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pawlurking/greencop/internal/model"
	"github.com/pawlurking/greencop/internal/service"
	"github.com/pawlurking/greencop/internal/store"
)

type UserHandler struct {
	userStore *store.UserStore
	ledger    *service.LedgerService
	logger    *slog.Logger
}

func NewUserHandler(us *store.UserStore, ledger *service.LedgerService, logger *slog.Logger) *UserHandler {
	return &UserHandler{userStore: us, ledger: ledger, logger: logger}
}

type createUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Create registers a user by email and display name. The identity provider
// has already authenticated them; this just persists the account.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "valid email is required")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if existing, err := h.userStore.GetByEmail(req.Email); err == nil && existing != nil {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}

	user, err := h.userStore.Create(req.Email, req.Name)
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// GetByEmail looks a user up by the email query parameter.
func (h *UserHandler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		writeError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	user, err := h.userStore.GetByEmail(email)
	if err != nil {
		h.logger.Error("get user by email", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Balance returns the log-derived point balance and the cached karma score.
func (h *UserHandler) Balance(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	balance, err := h.ledger.Balance(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	karma, err := h.ledger.KarmaScore(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":     id,
		"balance":     balance,
		"karma_score": karma,
	})
}

// Transactions returns the user's most recent ledger entries.
func (h *UserHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	txs, err := h.ledger.RecentTransactions(r.Context(), id, parseLimit(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if txs == nil {
		txs = []model.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}
