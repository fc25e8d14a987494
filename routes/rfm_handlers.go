// routes/rfm_handlers.go
package routes

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/rachita-nanda/social-media-performance-analytics/models"
)

// ScoreRow is the JSON shape of one scored entity.
type ScoreRow struct {
	EntityID  string  `json:"entityId"`
	Recency   int     `json:"recency"`
	Frequency int     `json:"frequency"`
	Monetary  float64 `json:"monetary"`
	RScore    int     `json:"rScore"`
	FScore    int     `json:"fScore"`
	MScore    int     `json:"mScore"`
	RFMScore  string  `json:"rfmScore"`
	Segment   string  `json:"segment"`
}

// ScoresResponse is the API response for the scored table.
type ScoresResponse struct {
	Scores []ScoreRow `json:"scores"`
}

// SegmentsResponse is the API response for the segment distribution.
type SegmentsResponse struct {
	Segments map[string]int `json:"segments"`
}

// RunsResponse is the API response for the run journal.
type RunsResponse struct {
	Runs []models.RunLog `json:"runs"`
}

// LastRunResponse is the API response for the most recent successful run.
type LastRunResponse struct {
	Run *models.RunLog `json:"run"`
}

// GetScoresHandler serves the scored table from the latest pipeline run.
func GetScoresHandler(scores ScoreReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := scores.GetLatestScores()
		if err != nil {
			log.Printf("Error reading scores: %v", err)
			http.Error(w, "Could not read RFM scores", http.StatusInternalServerError)
			return
		}

		response := ScoresResponse{Scores: make([]ScoreRow, 0, len(rows))}
		for _, row := range rows {
			response.Scores = append(response.Scores, ScoreRow{
				EntityID:  row.EntityID,
				Recency:   row.Recency,
				Frequency: row.Frequency,
				Monetary:  row.Monetary,
				RScore:    row.RScore,
				FScore:    row.FScore,
				MScore:    row.MScore,
				RFMScore:  row.RFMScore,
				Segment:   string(row.Segment),
			})
		}

		writeJSON(w, response)
	}
}

// GetSegmentsHandler serves the entity counts per segment.
func GetSegmentsHandler(scores ScoreReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		distribution, err := scores.GetSegmentDistribution()
		if err != nil {
			log.Printf("Error reading segment distribution: %v", err)
			http.Error(w, "Could not read segment distribution", http.StatusInternalServerError)
			return
		}

		response := SegmentsResponse{Segments: make(map[string]int, len(distribution))}
		for segment, count := range distribution {
			response.Segments[string(segment)] = count
		}

		writeJSON(w, response)
	}
}

// maxRunsLimit bounds how many journal entries one request may ask for.
const maxRunsLimit = 1000

// GetRunsHandler serves the pipeline run journal, newest first. The limit
// query parameter caps the number of entries (default 20, capped at
// maxRunsLimit).
func GetRunsHandler(runs RunReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				http.Error(w, "Invalid limit parameter", http.StatusBadRequest)
				return
			}
			if parsed > maxRunsLimit {
				parsed = maxRunsLimit
			}
			limit = parsed
		}

		entries, err := runs.GetRecentRuns(limit)
		if err != nil {
			log.Printf("Error reading run journal: %v", err)
			http.Error(w, "Could not read run journal", http.StatusInternalServerError)
			return
		}

		writeJSON(w, RunsResponse{Runs: entries})
	}
}

// GetLastRunHandler serves the most recent successful pipeline run, or 404
// if no run has succeeded yet.
func GetLastRunHandler(runs RunReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := runs.GetLastSuccessfulRun()
		if err != nil {
			log.Printf("Error reading last successful run: %v", err)
			http.Error(w, "Could not read run journal", http.StatusInternalServerError)
			return
		}
		if run == nil {
			http.Error(w, "No successful runs yet", http.StatusNotFound)
			return
		}

		writeJSON(w, LastRunResponse{Run: run})
	}
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
