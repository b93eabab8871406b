package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"tagdock/internal/api"
	"tagdock/internal/config"
	"tagdock/internal/fingerprint"
	"tagdock/internal/intake"
	"tagdock/internal/logging"
	"tagdock/internal/services"
	"tagdock/internal/textutil"
)

// maxIntakeBody bounds a whole multipart intake request.
const maxIntakeBody = 256 << 20

type apiServer struct {
	bind   string
	cfg    *config.Config
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, errors.New("api bind address not configured")
	}

	srv := &apiServer{
		bind:   bind,
		cfg:    cfg,
		logger: logger,
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/stats", srv.handleStats)
	mux.HandleFunc("/api/intake", srv.handleIntake)
	mux.HandleFunc("/api/records/", srv.handleRecord)
	mux.HandleFunc("/api/replace", srv.handleReplace)
	mux.HandleFunc("/api/tags", srv.handleTags)

	srv.server = &http.Server{
		Handler:           withRequestID(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status()
	deps := make([]api.DependencyStatus, len(status.Dependencies))
	for i, dep := range status.Dependencies {
		deps[i] = api.DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Detail:      dep.Detail,
		}
	}
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		RecordsDB:    status.RecordsDBPath,
		LockFilePath: status.LockFilePath,
		Dependencies: deps,
	})
}

func (s *apiServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	summary, err := s.daemon.store.Stats(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromStats(summary))
}

// handleIntake stages the multipart parts into the incoming directory,
// then hands the batch to the coordinator. The batch limit is enforced
// while reading so an oversized request never reaches the pipeline.
func (s *apiServer) handleIntake(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxIntakeBody)

	reader, err := r.MultipartReader()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "expected multipart form data")
		return
	}

	files, err := s.stageParts(reader)
	defer removeStaged(files)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(files) == 0 {
		s.writeError(w, http.StatusBadRequest, "batch is empty")
		return
	}

	outcome, err := s.daemon.coordinator.Intake(r.Context(), files)
	if err != nil {
		s.writeError(w, services.HTTPStatus(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromBatchOutcome(outcome))
}

func (s *apiServer) stageParts(reader *multipart.Reader) ([]intake.File, error) {
	var files []intake.File
	limit := s.cfg.Intake.MaxBatchSize
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return files, nil
		}
		if err != nil {
			return files, fmt.Errorf("read multipart body: %w", err)
		}
		if part.FormName() != "files" {
			part.Close()
			continue
		}
		if len(files) >= limit {
			part.Close()
			return files, fmt.Errorf("batch exceeds limit of %d files", limit)
		}

		name := textutil.SanitizeFileName(filepath.Base(part.FileName()))
		if name == "" || name == "." {
			name = "upload"
		}
		staged := filepath.Join(s.cfg.Paths.IncomingDir, uuid.NewString()+"-"+name)
		dst, err := os.Create(staged)
		if err != nil {
			part.Close()
			return files, fmt.Errorf("stage upload: %w", err)
		}
		_, copyErr := io.Copy(dst, part)
		part.Close()
		if closeErr := dst.Close(); copyErr == nil {
			copyErr = closeErr
		}
		if copyErr != nil {
			os.Remove(staged)
			return files, fmt.Errorf("stage upload: %w", copyErr)
		}

		files = append(files, intake.File{
			Name:     name,
			Path:     staged,
			MimeType: part.Header.Get("Content-Type"),
		})
	}
}

func removeStaged(files []intake.File) {
	for _, f := range files {
		_ = os.Remove(f.Path)
	}
}

func (s *apiServer) handleRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	tagID := strings.TrimPrefix(r.URL.Path, "/api/records/")
	if tagID == "" || strings.Contains(tagID, "/") {
		s.writeError(w, http.StatusNotFound, "record not found")
		return
	}

	doc, err := s.daemon.store.GetByTag(r.Context(), tagID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if doc == nil {
		s.writeError(w, http.StatusNotFound, "record not found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromDocument(doc))
}

func (s *apiServer) handleReplace(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.ReplaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	location, err := s.daemon.coordinator.Replace(
		r.Context(),
		req.TagID,
		fingerprint.Normalize(req.OldFingerprint),
		req.NewContentURL,
	)
	if err != nil {
		s.writeError(w, services.HTTPStatus(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.ReplaceResponse{Location: location})
}

func (s *apiServer) handleTags(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.GenerateTagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ids, err := s.daemon.generator.Generate(r.Context(), req.Count)
	if err != nil {
		s.writeError(w, services.HTTPStatus(err), err.Error())
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, api.GenerateTagsResponse{TagIDs: ids})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

func (s *apiServer) log() *slog.Logger {
	return logging.NewComponentLogger(s.logger, "api-server")
}

// withRequestID tags each request context with a correlation identifier
// so log lines emitted while handling it can be tied to one API call.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := services.WithRequestID(r.Context(), uuid.NewString())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
