package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pawlurking/greencop/internal/handler"
	"github.com/pawlurking/greencop/internal/metrics"
	"github.com/pawlurking/greencop/internal/middleware"
	"github.com/pawlurking/greencop/internal/service"
	"github.com/pawlurking/greencop/internal/store"
	ws "github.com/pawlurking/greencop/internal/websocket"
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	userH         *handler.UserHandler
	notificationH *handler.NotificationHandler
	reportH       *handler.ReportHandler
	rewardH       *handler.RewardHandler
	logger        *slog.Logger
}

// Config carries the game rules into the services.
type Config struct {
	ReportPoints  int
	CollectPoints int
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	notificationStore := store.NewNotificationStore(db)

	ledgerSvc := service.NewLedgerService(db, logger.With("component", "ledger"))
	rewardSvc := service.NewRewardService(db, logger.With("component", "rewards"))
	reportSvc := service.NewReportService(db, logger.With("component", "reports"), cfg.ReportPoints, cfg.CollectPoints)

	return &Server{
		db:            db,
		hub:           hub,
		userH:         handler.NewUserHandler(userStore, ledgerSvc, logger.With("component", "user")),
		notificationH: handler.NewNotificationHandler(notificationStore, logger.With("component", "notification")),
		reportH:       handler.NewReportHandler(reportSvc, hub, logger.With("component", "report")),
		rewardH:       handler.NewRewardHandler(rewardSvc, hub, logger.With("component", "reward")),
		logger:        logger,
	}
}

// Hub exposes the WebSocket hub, mainly for tests.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Users and the ledger view
	mux.HandleFunc("POST /api/users", s.userH.Create)
	mux.HandleFunc("GET /api/users", s.userH.GetByEmail)
	mux.HandleFunc("GET /api/users/{id}/balance", s.userH.Balance)
	mux.HandleFunc("GET /api/users/{id}/transactions", s.userH.Transactions)

	// Notifications
	mux.HandleFunc("GET /api/users/{id}/notifications", s.notificationH.ListUnread)
	mux.HandleFunc("POST /api/notifications/{id}/read", s.notificationH.MarkRead)

	// Reports and collection tasks
	mux.HandleFunc("POST /api/reports", s.reportH.Create)
	mux.HandleFunc("GET /api/reports", s.reportH.ListRecent)
	mux.HandleFunc("GET /api/tasks", s.reportH.ListTasks)
	mux.HandleFunc("POST /api/tasks/{id}/status", s.reportH.UpdateStatus)
	mux.HandleFunc("POST /api/tasks/{id}/collect", s.reportH.Collect)

	// Rewards
	mux.HandleFunc("GET /api/users/{id}/rewards", s.rewardH.ListAvailable)
	mux.HandleFunc("POST /api/users/{id}/redeem", s.rewardH.Redeem)
	mux.HandleFunc("POST /api/rewards", s.rewardH.CreateCatalog)
	mux.HandleFunc("GET /api/rewards", s.rewardH.ListCatalog)
	mux.HandleFunc("PUT /api/rewards/{id}", s.rewardH.UpdateCatalog)

	// Live events, health, metrics
	mux.HandleFunc("GET /ws", ws.Handle(s.hub, s.logger.With("component", "websocket")))
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /metrics", metrics.Handler())

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
