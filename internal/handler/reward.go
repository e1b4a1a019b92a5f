package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pawlurking/greencop/internal/model"
	"github.com/pawlurking/greencop/internal/service"
	"github.com/pawlurking/greencop/internal/websocket"
)

type RewardHandler struct {
	rewards *service.RewardService
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewRewardHandler(rs *service.RewardService, hub *websocket.Hub, logger *slog.Logger) *RewardHandler {
	return &RewardHandler{rewards: rs, hub: hub, logger: logger}
}

func (h *RewardHandler) broadcast(evt websocket.Event) {
	if h.hub != nil {
		h.hub.Broadcast(evt)
	}
}

// ListAvailable returns the user's balance entry followed by the redeemable
// catalog.
func (h *RewardHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	rewards, err := h.rewards.ListAvailable(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rewards)
}

type redeemRequest struct {
	RewardID int64 `json:"reward_id"`
}

// Redeem converts points into a reward. 422 on insufficient balance.
func (h *RewardHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	tx, err := h.rewards.Redeem(r.Context(), id, req.RewardID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.broadcast(websocket.NewEvent("reward", "redeemed", req.RewardID, map[string]any{
		"user_id": id,
		"points":  tx.Amount,
	}))

	writeJSON(w, http.StatusCreated, tx)
}

type rewardRequest struct {
	Name        string `json:"reward_name"`
	Description string `json:"reward_description"`
	ClaimInfo   string `json:"reward_claim_info"`
	PointCost   int    `json:"point_cost"`
	IsAvailable bool   `json:"is_available"`
}

// CreateCatalog adds a reward to the shared catalog.
func (h *RewardHandler) CreateCatalog(w http.ResponseWriter, r *http.Request) {
	var req rewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	reward, err := h.rewards.CreateReward(r.Context(), req.Name, req.Description, req.ClaimInfo, req.PointCost, req.IsAvailable)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.broadcast(websocket.NewEvent("reward", "created", reward.ID, nil))

	writeJSON(w, http.StatusCreated, reward)
}

// ListCatalog returns the full catalog including unavailable entries.
func (h *RewardHandler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.rewards.ListCatalog(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if rewards == nil {
		rewards = []model.Reward{}
	}
	writeJSON(w, http.StatusOK, rewards)
}

// UpdateCatalog edits a catalog entry.
func (h *RewardHandler) UpdateCatalog(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req rewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	reward, err := h.rewards.UpdateReward(r.Context(), id, req.Name, req.Description, req.ClaimInfo, req.PointCost, req.IsAvailable)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.broadcast(websocket.NewEvent("reward", "updated", reward.ID, nil))

	writeJSON(w, http.StatusOK, reward)
}
