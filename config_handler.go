package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"

	"dealdesk/config"
)

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// GetConfigHandler returns the active configuration.
func GetConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := config.GetConfig()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(cfg)
	}
}

// SaveConfigHandler validates and persists a new configuration.
func SaveConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var newCfg config.Config
		if err := json.NewDecoder(r.Body).Decode(&newCfg); err != nil {
			writeJSONError(w, "Invalid request body.", http.StatusBadRequest)
			return
		}

		if newCfg.TemplatePath != "" {
			if _, err := os.Stat(newCfg.TemplatePath); err != nil {
				writeJSONError(w, "LOI template not found: "+newCfg.TemplatePath, http.StatusBadRequest)
				return
			}
		}
		if err := validateRatio(newCfg.FlatDiscountRate); err != nil {
			writeJSONError(w, "Discount rate: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := validateRatio(newCfg.HighPotentialRatio); err != nil {
			writeJSONError(w, "High-potential ratio: "+err.Error(), http.StatusBadRequest)
			return
		}

		if err := config.SaveConfig(newCfg); err != nil {
			log.Error().Err(err).Msg("failed to save config")
			writeJSONError(w, "Failed to save configuration.", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Configuration saved."})
	}
}

// validateRatio accepts the zero value (replaced by the default) or a
// fraction of 1.
func validateRatio(v float64) error {
	if v < 0 || v > 1 {
		return errors.New("must be between 0 and 1")
	}
	return nil
}
