package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/tanya/internal/apperr"
	"github.com/hyperjump/tanya/internal/models"
	"github.com/hyperjump/tanya/internal/status"
	"github.com/hyperjump/tanya/internal/storage"
	"go.uber.org/zap"
)

// multipartMemory is how much of an upload is buffered in memory before spilling to temp files.
const multipartMemory = 8 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := status.Collect(r.Context(), s.deps.Storage, s.deps.Index, s.config)
	if err != nil {
		s.respondError(w, apperr.Wrap(apperr.KindInternal, "status", err))
		return
	}
	s.respondJSON(w, http.StatusOK, st)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var in models.UserInput
	if !s.decode(w, r, &in) {
		return
	}
	u, err := s.deps.Accounts.CreateUser(r.Context(), in)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, u)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.deps.Accounts.ListUsers(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, users)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	u, err := s.deps.Accounts.GetUser(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, u)
}

func (s *Server) handleUpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		RoleID int64 `json:"role_id"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	u, err := s.deps.Accounts.UpdateUserRole(r.Context(), id, req.RoleID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.logger.Debug("user role updated", zap.Int64("user_id", id), zap.Int64("role_id", req.RoleID))
	s.respondJSON(w, http.StatusOK, u)
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if _, err := s.deps.Accounts.GetUser(r.Context(), id); err != nil {
		s.respondError(w, err)
		return
	}
	msgs, err := s.deps.Storage.ListMessagesByUser(r.Context(), id)
	if err != nil {
		s.respondError(w, apperr.Wrap(apperr.KindInternal, "chat-history", err))
		return
	}
	s.respondJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleListUserFiles(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if _, err := s.deps.Accounts.GetUser(r.Context(), id); err != nil {
		s.respondError(w, err)
		return
	}
	files, err := s.deps.Storage.ListFilesByUser(r.Context(), id)
	if err != nil {
		s.respondError(w, apperr.Wrap(apperr.KindInternal, "files", err))
		return
	}
	if files == nil {
		files = []*models.File{}
	}
	s.respondJSON(w, http.StatusOK, files)
}

func (s *Server) handleListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := s.deps.Accounts.ListRoles(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, roles)
}

func (s *Server) handleCreateRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	role, err := s.deps.Accounts.CreateRole(r.Context(), req.Name)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, role)
}

func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	limit := s.config.Server.MaxUploadBytes
	if limit > 0 {
		// Leave room for the other form fields.
		r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, apperr.New(apperr.KindValidation, "upload", "file is too large"))
			return
		}
		s.respondError(w, apperr.New(apperr.KindValidation, "upload", "invalid multipart form"))
		return
	}
	userID, err := strconv.ParseInt(r.FormValue("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		s.respondError(w, apperr.New(apperr.KindValidation, "upload", "user_id is required"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, apperr.New(apperr.KindValidation, "upload", "file is required"))
		return
	}
	defer file.Close()

	ctx := r.Context()
	if _, err := s.deps.Accounts.GetUser(ctx, userID); err != nil {
		s.respondError(w, err)
		return
	}
	path, size, err := s.deps.Uploads.Save(file, header.Filename, limit)
	if err != nil {
		s.respondError(w, apperr.WrapMsg(apperr.KindValidation, "upload", "store file", err))
		return
	}
	rec := &models.File{
		UserID:       userID,
		Path:         path,
		OriginalName: header.Filename,
		Caption:      r.FormValue("file_caption"),
		ContentType:  header.Header.Get("Content-Type"),
		Size:         size,
	}
	if err := s.deps.Storage.CreateFile(ctx, rec); err != nil {
		_ = s.deps.Uploads.Remove(path)
		s.respondError(w, apperr.Wrap(apperr.KindInternal, "upload", err))
		return
	}
	s.logger.Info("file uploaded",
		zap.Int64("file_id", rec.ID),
		zap.Int64("user_id", userID),
		zap.String("name", rec.OriginalName),
		zap.Int64("size", size))
	s.respondJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	f, err := s.deps.Storage.GetFile(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, apperr.New(apperr.KindNotFound, "file", "File not found."))
			return
		}
		s.respondError(w, apperr.Wrap(apperr.KindInternal, "file", err))
		return
	}
	s.respondJSON(w, http.StatusOK, f)
}

type ingestResponse struct {
	Message string `json:"message"`
	Result  any    `json:"result"`
}

func (s *Server) handleIngestFile(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	res, err := s.deps.Ingestor.Ingest(r.Context(), id)
	if err != nil {
		kind := apperr.KindOf(err)
		s.logger.Error("ingestion failed", zap.Int64("file_id", id), zap.String("kind", string(kind)), zap.Error(err))
		s.respondJSON(w, apperr.HTTPStatus(kind), ingestResponse{
			Message: "Ingestion failed.",
			Result:  errorBody{Error: err.Error(), Kind: string(kind)},
		})
		return
	}
	s.respondJSON(w, http.StatusOK, ingestResponse{Message: "File ingested successfully.", Result: res})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.logger.Debug("query request", zap.Int64("user_id", req.UserID), zap.Int("query_len", len(req.Query)))
	ans, err := s.deps.RAG.Answer(r.Context(), req.UserID, req.Query)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, ans)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondError(w, apperr.New(apperr.KindValidation, "decode", "invalid request body"))
		return false
	}
	return true
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		s.respondError(w, apperr.New(apperr.KindValidation, "path", "invalid id"))
		return 0, false
	}
	return id, true
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("kind", string(kind)), zap.String("op", apperr.OpOf(err)), zap.Error(err))
	}
	msg := strings.TrimSpace(err.Error())
	s.respondJSON(w, status, errorBody{Error: msg, Kind: string(kind)})
}
