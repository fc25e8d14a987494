// routes/api_routes.go
package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rachita-nanda/social-media-performance-analytics/models"
	"github.com/rachita-nanda/social-media-performance-analytics/rfm"
	"github.com/rachita-nanda/social-media-performance-analytics/ws"
)

// ScoreReader is the slice of the score repository the API needs.
type ScoreReader interface {
	GetLatestScores() ([]rfm.RFMRow, error)
	GetSegmentDistribution() (map[rfm.Segment]int, error)
}

// RunReader is the slice of the run journal the API needs.
type RunReader interface {
	GetRecentRuns(limit int) ([]models.RunLog, error)
	GetLastSuccessfulRun() (*models.RunLog, error)
}

// SetupRoutes wires the read-only results API and the websocket endpoint.
func SetupRoutes(router *mux.Router, scores ScoreReader, runs RunReader, hub *ws.Hub) {
	router.Use(corsMiddleware)

	// Run notifications
	router.HandleFunc("/ws", hub.HandleConnections)

	// Scored RFM table from the latest run
	router.HandleFunc("/api/rfm", GetScoresHandler(scores)).Methods("GET", "OPTIONS")

	// Entity counts per segment
	router.HandleFunc("/api/rfm/segments", GetSegmentsHandler(scores)).Methods("GET", "OPTIONS")

	// Pipeline run journal
	router.HandleFunc("/api/runs", GetRunsHandler(runs)).Methods("GET", "OPTIONS")

	// Most recent successful run
	router.HandleFunc("/api/runs/last", GetLastRunHandler(runs)).Methods("GET", "OPTIONS")
}

// corsMiddleware mirrors the permissive CORS setup of the wider platform;
// tighten it at the reverse proxy if the API is exposed.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
