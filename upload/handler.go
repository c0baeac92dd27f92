package upload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"dealdesk/columns"
	"dealdesk/config"
	"dealdesk/database"
	"dealdesk/docgen"
	"dealdesk/model"
	"dealdesk/parsers"
	"dealdesk/pipeline"
)

// Response is the upload endpoint's payload: the run id, the comp aggregate
// and one flat record per subject property.
type Response struct {
	RunID           string           `json:"runId"`
	AvgPricePerSqft float64          `json:"avgPricePerSqft"`
	CompsCount      int              `json:"compsCount"`
	Records         []map[string]any `json:"records"`
	Fields          []string         `json:"fields"`
}

func respondJSONError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// ProcessUploadHandler receives the property and comps CSVs plus the
// caller's identity, runs the valuation pipeline, generates one LOI per
// property and persists the run.
func ProcessUploadHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info().Msg("Received valuation upload request...")

		if err := r.ParseMultipartForm(32 << 20); err != nil {
			respondJSONError(w, "File upload error: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer r.MultipartForm.RemoveAll()

		cfg := config.GetConfig()
		id := pipeline.Identity{
			BusinessName: formValue(r, "businessName", cfg.BusinessName),
			UserName:     formValue(r, "userName", cfg.UserName),
			UserEmail:    formValue(r, "userEmail", cfg.UserEmail),
		}

		props, propName, err := readTable(r, "propertyFile", cfg.UploadFolderPath)
		if err != nil {
			respondJSONError(w, "Property file: "+err.Error(), http.StatusBadRequest)
			return
		}
		comps, compName, err := readTable(r, "compsFile", cfg.UploadFolderPath)
		if err != nil {
			respondJSONError(w, "Comps file: "+err.Error(), http.StatusBadRequest)
			return
		}

		gen := &docgen.Generator{
			TemplatePath: cfg.TemplatePath,
			OutputDir:    cfg.GeneratedFolderPath,
			RenderPDF:    cfg.RenderPDF,
		}

		result, err := pipeline.Run(props, comps, cfg.Policy(), id, gen)
		if err != nil {
			var unresolved *columns.UnresolvedError
			var noComps *pipeline.NoValidCompsError
			if errors.As(err, &unresolved) || errors.As(err, &noComps) {
				respondJSONError(w, err.Error(), http.StatusBadRequest)
				return
			}
			log.Error().Err(err).Msg("pipeline run failed")
			respondJSONError(w, "Processing failed: "+err.Error(), http.StatusInternalServerError)
			return
		}

		runID := uuid.NewString()
		rows := make([]database.RunProperty, 0, len(result.Properties))
		for i, rec := range result.Properties {
			row, err := database.PropertyFromRecord(runID, i+1, rec)
			if err != nil {
				respondJSONError(w, "Failed to store results: "+err.Error(), http.StatusInternalServerError)
				return
			}
			rows = append(rows, row)
		}

		run := database.Run{
			RunID:           runID,
			BusinessName:    id.BusinessName,
			UserName:        id.UserName,
			UserEmail:       id.UserEmail,
			PropertyFile:    propName,
			CompsFile:       compName,
			AvgPricePerSqft: result.Stats.AvgPricePerSqft,
			CompsCount:      result.Stats.SampleCount,
		}
		if err := database.SaveRun(db, run, rows); err != nil {
			log.Error().Err(err).Msg("failed to persist run")
			respondJSONError(w, "Failed to persist run: "+err.Error(), http.StatusInternalServerError)
			return
		}

		log.Info().
			Str("runId", runID).
			Int("properties", len(result.Properties)).
			Int("comps", result.Stats.SampleCount).
			Msg("run complete")

		resp := Response{
			RunID:           runID,
			AvgPricePerSqft: result.Stats.AvgPricePerSqft,
			CompsCount:      result.Stats.SampleCount,
			Records:         make([]map[string]any, 0, len(result.Properties)),
		}
		if len(result.Properties) > 0 {
			resp.Fields = result.Properties[0].Fields
		}
		for _, rec := range result.Properties {
			resp.Records = append(resp.Records, rec.Values)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func formValue(r *http.Request, key, fallback string) string {
	if v := r.FormValue(key); v != "" {
		return v
	}
	return fallback
}

// readTable opens one uploaded file, archives a copy under the upload
// folder and parses it into a table.
func readTable(r *http.Request, field, uploadDir string) (model.Table, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return model.Table{}, "", fmt.Errorf("missing upload %q: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return model.Table{}, "", fmt.Errorf("failed to read upload: %w", err)
	}

	archiveUpload(uploadDir, header, data)

	table, err := parsers.ParseTable(bytes.NewReader(data))
	if err != nil {
		return model.Table{}, "", err
	}
	return table, header.Filename, nil
}

func archiveUpload(uploadDir string, header *multipart.FileHeader, data []byte) {
	if uploadDir == "" {
		return
	}
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		log.Warn().Err(err).Msg("failed to create upload folder")
		return
	}
	name := fmt.Sprintf("%s_%s", time.Now().Format("20060102_150405"), docgen.SafeFileName(header.Filename))
	if err := os.WriteFile(filepath.Join(uploadDir, name), data, 0644); err != nil {
		log.Warn().Err(err).Str("file", name).Msg("failed to archive upload")
	}
}
