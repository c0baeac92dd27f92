package main

import (
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"dealdesk/config"
	"dealdesk/database"
)

var (
	appTemplate *template.Template
	viewsFS     fs.FS
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	_ = godotenv.Load()

	dbPath := os.Getenv("DEALDESK_DB")
	if dbPath == "" {
		dbPath = "./dealdesk.db"
	}

	log.Info().Msg("Connecting to database...")
	dbConn, err := sqlx.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		log.Fatal().Err(err).Msg("db open error")
	}
	defer dbConn.Close()
	log.Info().Msg("Database connection successful.")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load config file. Using defaults.")
	}

	if err := database.InitDatabase(dbConn); err != nil {
		log.Fatal().Err(err).Msg("Database initialization failed")
	}
	log.Info().Msg("Database initialization complete.")

	for _, dir := range []string{cfg.UploadFolderPath, cfg.GeneratedFolderPath} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("failed to create working folder")
		}
	}

	staticFS := os.DirFS("static")
	viewsFS, err = fs.Sub(staticFS, "views")
	if err != nil {
		log.Warn().Err(err).Msg("'static/views' directory not found. Will only load index.html.")
	}

	appTemplate, err = template.ParseFS(staticFS, "index.html")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse index.html")
	}
	if viewsFS != nil {
		appTemplate, err = appTemplate.ParseFS(viewsFS, "*.html")
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to parse views/*.html")
		}
	}
	log.Info().Msg("HTML templates loaded and parsed.")

	mux := http.NewServeMux()

	mux.Handle("/static/", http.StripPrefix("/static/",
		http.FileServer(http.Dir("./static"))))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		viewFiles := []string{}
		if viewsFS != nil {
			files, err := fs.Glob(viewsFS, "*.html")
			if err != nil {
				log.Error().Err(err).Msg("Error globbing view files")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			viewFiles = files
		}

		viewMap := make(map[string]template.HTML)
		for _, file := range viewFiles {
			key := strings.TrimSuffix(file, filepath.Ext(file))

			var viewContent strings.Builder
			if err := appTemplate.ExecuteTemplate(&viewContent, file, nil); err != nil {
				log.Error().Err(err).Str("view", file).Msg("Error executing view template")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			viewMap[key] = template.HTML(viewContent.String())
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err = appTemplate.ExecuteTemplate(w, "index.html", struct {
			Views map[string]template.HTML
		}{
			Views: viewMap,
		})
		if err != nil {
			log.Error().Err(err).Msg("Error executing main template")
		}
	})

	SetupRoutes(mux, dbConn)

	addr := os.Getenv("DEALDESK_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	log.Info().Msgf("Starting server on http://localhost%s", addr)

	openBrowser("http://localhost" + addr)

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal().Err(err).Msg("server start error")
	}
}

func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = exec.Command("xdg-open", url).Start()
	}
	if err != nil {
		log.Warn().Err(err).Msg("failed to open browser")
	}
}
