package runs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"dealdesk/config"
	"dealdesk/database"
	"dealdesk/render"
)

func respondJSONError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// ListRunsHandler returns all persisted runs, newest first.
func ListRunsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runs, err := database.ListRuns(db)
		if err != nil {
			respondJSONError(w, "Failed to list runs: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(runs)
	}
}

// GetRunPropertiesHandler returns one run's property rows.
func GetRunPropertiesHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := r.URL.Query().Get("run_id")
		if runID == "" {
			respondJSONError(w, "run_id parameter is required", http.StatusBadRequest)
			return
		}
		run, err := database.GetRun(db, runID)
		if err != nil {
			respondJSONError(w, "Failed to get run: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if run == nil {
			respondJSONError(w, "Run not found: "+runID, http.StatusNotFound)
			return
		}
		props, err := database.GetRunProperties(db, runID)
		if err != nil {
			respondJSONError(w, "Failed to get run properties: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"run": run, "properties": props})
	}
}

func quoteAll(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func numCell(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}

// ExportRunCSVHandler streams one run's results as a CSV download.
func ExportRunCSVHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := r.URL.Query().Get("run_id")
		if runID == "" {
			http.Error(w, "run_id parameter is required", http.StatusBadRequest)
			return
		}
		run, err := database.GetRun(db, runID)
		if err != nil {
			http.Error(w, "Failed to get run: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if run == nil {
			http.Error(w, "Run not found", http.StatusNotFound)
			return
		}
		props, err := database.GetRunProperties(db, runID)
		if err != nil {
			http.Error(w, "Failed to get run properties: "+err.Error(), http.StatusInternalServerError)
			return
		}

		var buf bytes.Buffer
		buf.Write([]byte{0xEF, 0xBB, 0xBF}) // UTF-8 BOM

		header := []string{
			"Address", "City", "State", "Zip", "Listing Price", "Living Square Feet",
			"Condition Estimate", "ARV", "Offer Price", "High Potential",
			"Comps Count", "Avg Comp $/Sqft", "LOI Sent", "LOI File",
		}
		buf.WriteString(strings.Join(header, ",") + "\r\n")

		for _, p := range props {
			record := []string{
				quoteAll(p.Address),
				quoteAll(p.City),
				quoteAll(p.State),
				quoteAll(p.Zip),
				quoteAll(numCell(p.ListingPrice)),
				quoteAll(numCell(p.LivingSqft)),
				quoteAll(p.ConditionEstimate),
				quoteAll(numCell(p.ARV)),
				quoteAll(numCell(p.OfferPrice)),
				quoteAll(fmt.Sprintf("%t", p.HighPotential)),
				quoteAll(fmt.Sprintf("%d", run.CompsCount)),
				quoteAll(fmt.Sprintf("%.2f", run.AvgPricePerSqft)),
				quoteAll(fmt.Sprintf("%t", p.LOISent)),
				quoteAll(p.LOIFile),
			}
			buf.WriteString(strings.Join(record, ",") + "\r\n")
		}

		filename := fmt.Sprintf("valuation_run_%s.csv", runID)
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
		w.Write(buf.Bytes())
	}
}

// RenderRunTableHandler returns the dashboard's HTML table fragment.
func RenderRunTableHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := r.URL.Query().Get("run_id")
		if runID == "" {
			http.Error(w, "run_id parameter is required", http.StatusBadRequest)
			return
		}
		props, err := database.GetRunProperties(db, runID)
		if err != nil {
			http.Error(w, "Failed to get run properties: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(render.RenderResultsTableHTML(props)))
	}
}

type markSentPayload struct {
	RunID string `json:"runId"`
	Seq   int    `json:"seq"`
	Sent  bool   `json:"sent"`
}

// MarkLOISentHandler flips the LOI-sent flag on one property row. This is
// caller-owned mutable state layered on top of the immutable run result.
func MarkLOISentHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respondJSONError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		var payload markSentPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			respondJSONError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := database.MarkLOISent(db, payload.RunID, payload.Seq, payload.Sent); err != nil {
			respondJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "updated"})
	}
}

// DownloadLOIHandler serves a generated LOI by filename.
func DownloadLOIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/api/loi/download/")
		if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
			http.Error(w, "Invalid file name", http.StatusBadRequest)
			return
		}

		cfg := config.GetConfig()
		path := filepath.Join(cfg.GeneratedFolderPath, name)
		if _, err := os.Stat(path); err != nil {
			log.Warn().Str("file", name).Msg("LOI download requested for missing file")
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(name))
		http.ServeFile(w, r, path)
	}
}
