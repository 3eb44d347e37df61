package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/plotscout/plotscout-cli/internal/division"
	"github.com/plotscout/plotscout-cli/internal/pipeline"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and WebSocket search API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env),
		}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// newRouter builds the API surface: chat, locations, map-selection search,
// and the WebSocket chat endpoint.
func newRouter(env *pipelineEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/chat", handleChat(env))
	r.Get("/api/locations", handleLocations)
	r.Post("/api/search-by-location", handleSearchByLocation(env))
	r.Get("/api/ws/chat/{session}", handleChatWS(env))

	return r
}

func handleChat(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Message   string `json:"message"`
			UserID    string `json:"user_id"`
			SessionID string `json:"session_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if req.Message == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
			return
		}
		if req.SessionID == "" {
			req.SessionID = uuid.New().String()
		}

		resp := env.Pipeline.Run(r.Context(), pipeline.Request{
			Query:     req.Message,
			UserID:    req.UserID,
			SessionID: req.SessionID,
		})

		writeJSON(w, http.StatusOK, resp)
	}
}

// handleLocations serves the fixed division map extents and locality names.
func handleLocations(w http.ResponseWriter, _ *http.Request) {
	type regionOut struct {
		Division    string              `json:"division"`
		Name        string              `json:"name"`
		Description string              `json:"description"`
		Bounds      division.BoundsJSON `json:"bounds"`
	}

	out := struct {
		Regions []regionOut `json:"regions"`
		Areas   []string    `json:"areas"`
	}{Areas: division.Areas()}

	for _, d := range division.All {
		reg, ok := division.Region(d)
		if !ok {
			continue
		}
		out.Regions = append(out.Regions, regionOut{
			Division:    string(d),
			Name:        reg.Name,
			Description: reg.Description,
			Bounds:      reg.JSONBounds(),
		})
	}

	writeJSON(w, http.StatusOK, out)
}

// handleSearchByLocation runs a canned query for a map-selected locality.
func handleSearchByLocation(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Location  string `json:"location"`
			SessionID string `json:"session_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if req.Location == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "location is required"})
			return
		}

		resp := env.Pipeline.Run(r.Context(), pipeline.Request{
			Query:     fmt.Sprintf("Show me available plots in %s", req.Location),
			UserID:    "map_selection",
			SessionID: req.SessionID,
		})

		writeJSON(w, http.StatusOK, resp)
	}
}

var chatWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// handleChatWS serves a persistent chat session: each inbound message runs
// the full pipeline and the rendered response goes back on the socket.
func handleChatWS(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := chi.URLParam(r, "session")
		if session == "" {
			http.Error(w, "session is required", http.StatusBadRequest)
			return
		}

		conn, err := chatWSUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		zap.L().Info("ws session opened", zap.String("session", session))

		for {
			var in struct {
				Message string `json:"message"`
				UserID  string `json:"user_id"`
			}
			if err := conn.ReadJSON(&in); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					zap.L().Warn("ws read failed", zap.String("session", session), zap.Error(err))
				}
				return
			}
			if in.Message == "" {
				if err := conn.WriteJSON(map[string]string{"error": "message is required"}); err != nil {
					return
				}
				continue
			}

			resp := env.Pipeline.Run(r.Context(), pipeline.Request{
				Query:     in.Message,
				UserID:    in.UserID,
				SessionID: session,
			})

			if err := conn.WriteJSON(resp); err != nil {
				zap.L().Warn("ws write failed", zap.String("session", session), zap.Error(err))
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write response failed", zap.Error(err))
	}
}
