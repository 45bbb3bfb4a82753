package handlers

import (
	"context"
	"io"
	"net/http"
	"path"

	"github.com/rohits-web03/formstore/internal/formstore"
	"github.com/rohits-web03/formstore/internal/utils"
	"go.uber.org/zap"
)

// ArtifactReader reads stored form artifacts by their storage-relative path.
type ArtifactReader interface {
	Exists(ctx context.Context, rel string) (bool, error)
	Open(ctx context.Context, rel string) (io.ReadCloser, error)
}

type FileHandler struct {
	store     *formstore.Store
	artifacts ArtifactReader
	log       *zap.Logger
}

func NewFileHandler(store *formstore.Store, artifacts ArtifactReader, log *zap.Logger) *FileHandler {
	return &FileHandler{store: store, artifacts: artifacts, log: log}
}

// GET /api/v1/forms/{id}/definition
// DownloadDefinition godoc
// @Summary Download a form definition
// @Description Streams the XForm definition file of a stored form from the configured artifact backend.
// @Tags Files
// @Security BearerAuth
// @Produce application/xml
// @Param id path int true "Form row id"
// @Success 200 {file} binary
// @Failure 404 {object} utils.Payload
// @Router /api/v1/forms/{id}/definition [get]
func (h *FileHandler) DownloadDefinition(w http.ResponseWriter, r *http.Request) {
	res, err := h.store.Query(r.Context(), formPath(r), formstore.Query{
		Fields: []string{"id", "form_file_path", "md5_hash"},
	})
	if err != nil {
		storeError(w, h.log, err)
		return
	}
	form := res.Forms[0]

	ok, err := h.artifacts.Exists(r.Context(), form.FormFilePath)
	if err == nil && !ok {
		utils.ErrorResponse(w, http.StatusNotFound, "Definition file is missing")
		return
	}
	var body io.ReadCloser
	if err == nil {
		body, err = h.artifacts.Open(r.Context(), form.FormFilePath)
	}
	if err != nil {
		h.log.Error("failed to open definition", zap.Int64("id", form.ID), zap.String("path", form.FormFilePath), zap.Error(err))
		utils.ErrorResponse(w, http.StatusInternalServerError, "Failed to read definition")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Content-Disposition", `attachment; filename="`+path.Base(form.FormFilePath)+`"`)
	if form.MD5Hash != "" {
		w.Header().Set("ETag", `"`+form.MD5Hash+`"`)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.log.Warn("definition download interrupted", zap.Int64("id", form.ID), zap.Error(err))
	}
}
