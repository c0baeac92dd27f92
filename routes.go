package main

import (
	"net/http"

	"github.com/jmoiron/sqlx"

	"dealdesk/runs"
	"dealdesk/upload"
)

func SetupRoutes(mux *http.ServeMux, dbConn *sqlx.DB) {
	mux.HandleFunc("/api/upload", upload.ProcessUploadHandler(dbConn))

	mux.HandleFunc("/api/runs", runs.ListRunsHandler(dbConn))
	mux.HandleFunc("/api/runs/properties", runs.GetRunPropertiesHandler(dbConn))
	mux.HandleFunc("/api/runs/export_csv", runs.ExportRunCSVHandler(dbConn))
	mux.HandleFunc("/api/runs/table", runs.RenderRunTableHandler(dbConn))
	mux.HandleFunc("/api/runs/mark_sent", runs.MarkLOISentHandler(dbConn))

	mux.HandleFunc("/api/loi/download/", runs.DownloadLOIHandler())

	mux.HandleFunc("/api/config", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			GetConfigHandler()(w, r)
		case http.MethodPost:
			SaveConfigHandler()(w, r)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	})
}
