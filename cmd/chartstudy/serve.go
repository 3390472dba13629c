package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/fahadakmal/chartstudy/src/loader"
	"github.com/fahadakmal/chartstudy/src/logging"
	"github.com/fahadakmal/chartstudy/src/pipeline"
	"github.com/fahadakmal/chartstudy/src/render"
	"github.com/fahadakmal/chartstudy/src/study"
	"github.com/fahadakmal/chartstudy/src/tabular"
)

func serveCmd(cfgPath *string) *cobra.Command {
	var listen string
	var noFixtures bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP instrument API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}
			if noFixtures {
				cfg.Fixtures = false
			}
			return runServe(cfg)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (overrides config)")
	cmd.Flags().BoolVar(&noFixtures, "no-fixtures", false, "Skip preloading the predefined datasets")
	return cmd
}

// server holds the instrument's working set. HTTP handlers serialize through
// mu; the pipeline itself recomputes from scratch per request.
type server struct {
	mu    sync.Mutex
	files []*tabular.File
	mode  pipeline.Mode
	opts  render.Options
	store *study.Store
}

func runServe(cfg Config) error {
	store, err := study.Open(cfg.StoreDir)
	if err != nil {
		return err
	}
	defer store.Close()

	s := &server{
		mode:  pipeline.ParseMode(cfg.DefaultMode),
		opts:  render.DefaultOptions(),
		store: store,
	}
	if cfg.ChartWidth > 0 {
		s.opts.Width = cfg.ChartWidth
	}
	if cfg.ChartHeight > 0 {
		s.opts.Height = cfg.ChartHeight
	}

	// Restore the cached working set; fall back to the predefined datasets
	// so the instrument starts with renderable charts.
	cached, err := store.ListFiles(context.Background())
	if err != nil {
		return err
	}
	if len(cached) > 0 {
		s.files = cached
		logging.Infof("restored %d cached file(s) from %s", len(cached), store.Path())
	} else if cfg.Fixtures {
		fixtures, err := loader.Fixtures()
		if err != nil {
			return err
		}
		s.files = fixtures
		logging.Infof("loaded %d predefined dataset(s)", len(fixtures))
	}

	if cfg.DataDir != "" {
		stop, err := s.watchDataDir(cfg.DataDir)
		if err != nil {
			logging.Warnf("data dir watch disabled: %v", err)
		} else {
			defer stop()
		}
	}

	logging.Infof("chartstudy listening on %s", cfg.Listen)
	return http.ListenAndServe(cfg.Listen, s.routes())
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/files", s.handleListFiles)
	mux.HandleFunc("POST /api/files", s.handleUploadFile)
	mux.HandleFunc("DELETE /api/files/{id}", s.handleDeleteFile)
	mux.HandleFunc("PUT /api/files/{id}/axes", s.handleSetAxes)
	mux.HandleFunc("PUT /api/files/{id}/style", s.handleSetStyle)
	mux.HandleFunc("POST /api/files/{id}/rename", s.handleRenameColumn)
	mux.HandleFunc("GET /api/mode", s.handleGetMode)
	mux.HandleFunc("PUT /api/mode", s.handleSetMode)
	mux.HandleFunc("GET /api/series", s.handleSeries)
	mux.HandleFunc("GET /api/charts/{index}", s.handleChartPNG)
	mux.HandleFunc("POST /api/sessions", s.handlePostSession)
	mux.HandleFunc("GET /api/sessions", s.handleListSessions)
	mux.HandleFunc("GET /api/export", s.handleExport)
	return mux
}

// watchDataDir reloads datasets dropped into the data directory.
func (s *server) watchDataDir(dir string) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}
	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
					continue
				}
				switch strings.ToLower(filepath.Ext(ev.Name)) {
				case ".csv", ".xlsx", ".xlsm":
				default:
					continue
				}
				f, err := loader.Load(ev.Name)
				if err != nil {
					logging.Warnf("load %s: %v", ev.Name, err)
					continue
				}
				s.mu.Lock()
				s.replaceByName(f)
				s.mu.Unlock()
				logging.Infof("loaded %s (%d rows) from data dir", f.Name, len(f.Rows))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Warnf("data dir watcher: %v", err)
			}
		}
	}()
	logging.Infof("watching %s for datasets", dir)
	return func() { watcher.Close() }, nil
}

// replaceByName swaps a reloaded file in place of the previous load of the
// same source, keeping the working-set order stable. Caller holds mu.
func (s *server) replaceByName(f *tabular.File) {
	for i, old := range s.files {
		if old.Name == f.Name {
			f.ID = old.ID
			f.Axes = old.Axes
			f.Styles = old.Styles
			s.files[i] = f
			return
		}
	}
	s.files = append(s.files, f)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// fileSummary is the list view of a loaded file: metadata without rows.
type fileSummary struct {
	ID      string                         `json:"id"`
	Name    string                         `json:"name"`
	Columns []string                       `json:"columns"`
	Rows    int                            `json:"rows"`
	Axes    tabular.AxisSelection          `json:"axes"`
	Styles  map[string]tabular.ColumnStyle `json:"styles"`
}

func (s *server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]fileSummary, 0, len(s.files))
	for _, f := range s.files {
		out = append(out, fileSummary{
			ID: f.ID, Name: f.Name, Columns: f.Columns, Rows: len(f.Rows),
			Axes: f.Axes, Styles: f.Styles,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	part, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	defer part.Close()
	var f *tabular.File
	switch strings.ToLower(filepath.Ext(hdr.Filename)) {
	case ".xlsx", ".xlsm":
		f, err = loader.XLSXReader(hdr.Filename, part)
	default:
		f, err = loader.CSV(hdr.Filename, part)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.mu.Lock()
	s.files = append(s.files, f)
	s.mu.Unlock()
	if err := s.store.PutFile(r.Context(), f); err != nil {
		logging.Warnf("cache file %s: %v", f.ID, err)
	}
	writeJSON(w, http.StatusCreated, fileSummary{
		ID: f.ID, Name: f.Name, Columns: f.Columns, Rows: len(f.Rows),
		Axes: f.Axes, Styles: f.Styles,
	})
}

// withFile runs fn on the identified file under lock and re-caches it.
func (s *server) withFile(w http.ResponseWriter, r *http.Request, fn func(f *tabular.File) error) {
	id := r.PathValue("id")
	s.mu.Lock()
	var target *tabular.File
	for _, f := range s.files {
		if f.ID == id {
			target = f
			break
		}
	}
	if target == nil {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, fmt.Errorf("no file %s", id))
		return
	}
	err := fn(target)
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.store.PutFile(r.Context(), target); err != nil {
		logging.Warnf("cache file %s: %v", target.ID, err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	found := false
	for i, f := range s.files {
		if f.ID == id {
			s.files = append(s.files[:i], s.files[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		writeError(w, http.StatusNotFound, fmt.Errorf("no file %s", id))
		return
	}
	if err := s.store.DeleteFile(r.Context(), id); err != nil && !errors.Is(err, study.ErrNotFound) {
		logging.Warnf("uncache file %s: %v", id, err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleSetAxes(w http.ResponseWriter, r *http.Request) {
	var req tabular.AxisSelection
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.withFile(w, r, func(f *tabular.File) error {
		if req.X != "" && !f.HasColumn(req.X) {
			return fmt.Errorf("no column %q", req.X)
		}
		for _, y := range req.Y {
			if !f.HasColumn(y) {
				return fmt.Errorf("no column %q", y)
			}
		}
		f.SetXAxis(req.X)
		f.SetYAxes(req.Y)
		return nil
	})
}

func (s *server) handleSetStyle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Column string              `json:"column"`
		Style  tabular.ColumnStyle `json:"style"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.withFile(w, r, func(f *tabular.File) error {
		if !f.HasColumn(req.Column) {
			return fmt.Errorf("no column %q", req.Column)
		}
		f.SetStyle(req.Column, req.Style)
		return nil
	})
}

func (s *server) handleRenameColumn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.withFile(w, r, func(f *tabular.File) error {
		return f.RenameColumn(req.From, req.To)
	})
}

func (s *server) handleGetMode(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	mode := s.mode
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"mode": string(mode)})
}

func (s *server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	mode := pipeline.ParseMode(req.Mode)
	s.mu.Lock()
	s.mode = mode
	compatible := pipeline.SingleChartCompatible(s.files)
	s.mu.Unlock()
	// Incompatible single mode is allowed but flagged; the participant UI
	// decides whether to warn before combining.
	writeJSON(w, http.StatusOK, map[string]any{"mode": string(mode), "singleChartCompatible": compatible})
}

// seriesResponse is the composed pipeline output plus the explicit no-data
// signal the renderer needs to show an empty state instead of a blank chart.
type seriesResponse struct {
	Mode                  string           `json:"mode"`
	NoData                bool             `json:"noData"`
	SingleChartCompatible bool             `json:"singleChartCompatible"`
	Charts                []pipeline.Chart `json:"charts"`
}

func (s *server) handleSeries(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	mode := s.mode
	if m := r.URL.Query().Get("mode"); m != "" {
		mode = pipeline.ParseMode(m)
	}
	col, err := pipeline.Compute(s.files, mode)
	compatible := pipeline.SingleChartCompatible(s.files)
	s.mu.Unlock()
	if err != nil && !errors.Is(err, pipeline.ErrNoData) {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, seriesResponse{
		Mode:                  string(mode),
		NoData:                errors.Is(err, pipeline.ErrNoData),
		SingleChartCompatible: compatible,
		Charts:                col.Charts,
	})
}

func (s *server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(strings.TrimSuffix(r.PathValue("index"), ".png"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("bad chart index: %w", err))
		return
	}
	s.mu.Lock()
	mode := s.mode
	if m := r.URL.Query().Get("mode"); m != "" {
		mode = pipeline.ParseMode(m)
	}
	col, cerr := pipeline.Compute(s.files, mode)
	opts := s.opts
	s.mu.Unlock()
	if cerr != nil && !errors.Is(cerr, pipeline.ErrNoData) {
		writeError(w, http.StatusInternalServerError, cerr)
		return
	}
	if idx < 0 || idx >= len(col.Charts) {
		writeError(w, http.StatusNotFound, fmt.Errorf("no chart %d", idx))
		return
	}
	png, err := render.ChartPNG(col.Charts[idx], opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (s *server) handlePostSession(w http.ResponseWriter, r *http.Request) {
	var sess study.Session
	if err := json.NewDecoder(r.Body).Decode(&sess); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if err := s.store.PutSession(r.Context(), &sess); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": sess.ID})
}

func (s *server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.ListSessions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *server) handleExport(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.ListSessions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	switch r.URL.Query().Get("format") {
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="sessions.json"`)
		if err := study.WriteSessionsJSON(w, sessions); err != nil {
			logging.Errorf("export json: %v", err)
		}
	default:
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="sessions.csv"`)
		if err := study.WriteSessionsCSV(w, sessions); err != nil {
			logging.Errorf("export csv: %v", err)
		}
	}
}
