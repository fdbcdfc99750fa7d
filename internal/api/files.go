package api

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fileharbor/fileharbor/pkg/storage"
)

// maxUploadMemory is how much of a multipart upload is held in memory before
// spilling to temporary files. Individual file size policy is enforced by the
// storage engine, not here.
const maxUploadMemory = 32 << 20

func (rt *Router) handleList(w http.ResponseWriter, r *http.Request) {
	dir := r.URL.Query().Get("path")

	files, err := rt.storage.List(r.Context(), dir)
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"files": files,
		"path":  dir,
	})
}

func (rt *Router) handleStat(w http.ResponseWriter, r *http.Request) {
	info, err := rt.storage.Stat(r.URL.Query().Get("path"))
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, info)
}

func (rt *Router) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondErrorBody(w, http.StatusBadRequest, "bad_request", "invalid multipart request")
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			rt.log.WarnContext(r.Context(), "failed to clean up multipart spool", slog.Any("error", err))
		}
	}()

	parts := r.MultipartForm.File["file"]
	if len(parts) == 0 {
		respondErrorBody(w, http.StatusBadRequest, "bad_request", "no file parts in request")
		return
	}

	dir := r.FormValue("path")
	entries := make([]storage.BatchEntry, 0, len(parts))
	for _, part := range parts {
		entries = append(entries, storage.BatchEntry{
			RelPath: part.Filename,
			Open:    func() (io.ReadCloser, error) { return part.Open() },
		})
	}

	result := rt.storage.UploadBatch(r.Context(), dir, entries)
	respond(w, http.StatusOK, result)
}

type mkdirRequest struct {
	Path      string `json:"path"`
	Recursive bool   `json:"recursive"`
}

func (rt *Router) handleMkdir(w http.ResponseWriter, r *http.Request) {
	var req mkdirRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorBody(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	info, err := rt.storage.Mkdir(r.Context(), req.Path, req.Recursive)
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, info)
}

type renameRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (rt *Router) handleRename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorBody(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	info, err := rt.storage.Rename(r.Context(), req.From, req.To)
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, info)
}

type moveRequest struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

func (rt *Router) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorBody(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	if err := rt.storage.Move(r.Context(), req.Source, req.Destination); err != nil {
		rt.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{
		"message": "moved successfully",
		"path":    req.Destination,
	})
}

func (rt *Router) handleDelete(w http.ResponseWriter, r *http.Request) {
	target, ok := wildcardPath(w, r)
	if !ok {
		return
	}

	if err := rt.storage.Delete(r.Context(), target); err != nil {
		rt.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{
		"message": "deleted successfully",
		"path":    target,
	})
}

func (rt *Router) handleDownload(w http.ResponseWriter, r *http.Request) {
	target, ok := wildcardPath(w, r)
	if !ok {
		return
	}

	rc, info, err := rt.storage.Download(r.Context(), target)
	if err != nil {
		rt.respondError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(info.Path)}))
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}

	if _, err := io.Copy(w, rc); err != nil {
		// Headers are gone; the broken stream is all we can tell the client.
		rt.log.WarnContext(r.Context(), "download stream interrupted",
			slog.String("path", info.Path),
			slog.Any("error", err),
		)
	}
}

// wildcardPath extracts and unescapes the catch-all route segment.
func wildcardPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "*")
	target, err := url.PathUnescape(raw)
	if err != nil {
		respondErrorBody(w, http.StatusBadRequest, "invalid_path", "malformed path encoding")
		return "", false
	}
	return target, true
}
