package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rohits-web03/formstore/internal/formstore"
	"github.com/rohits-web03/formstore/internal/models"
	"github.com/rohits-web03/formstore/internal/repositories"
	"github.com/rohits-web03/formstore/internal/utils"
	"go.uber.org/zap"
)

const maxBodySize = 1 << 20

type FormHandler struct {
	store *formstore.Store
	log   *zap.Logger
}

func NewFormHandler(store *formstore.Store, log *zap.Logger) *FormHandler {
	return &FormHandler{store: store, log: log}
}

// GET /api/v1/forms
// ListForms godoc
// @Summary List forms
// @Description Lists form rows. Filters combine with AND; sort is a comma separated list of column[:asc|desc].
// @Tags Forms
// @Security BearerAuth
// @Produce json
// @Param formId query string false "Logical form id"
// @Param version query string false "Form version"
// @Param deleted query bool false "Only soft-deleted (true) or live (false) forms"
// @Param sort query string false "Sort, e.g. date:desc"
// @Param fields query string false "Comma separated columns to return"
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Router /api/v1/forms [get]
func (h *FormHandler) ListForms(w http.ResponseWriter, r *http.Request) {
	h.query(w, r, formstore.CollectionPath)
}

// GET /api/v1/newest_forms_by_formid
// ListNewestForms godoc
// @Summary List the newest download of every form
// @Tags Forms
// @Security BearerAuth
// @Produce json
// @Param formId query string false "Logical form id"
// @Param sort query string false "Sort, e.g. display_name"
// @Success 200 {object} utils.Payload
// @Router /api/v1/newest_forms_by_formid [get]
func (h *FormHandler) ListNewestForms(w http.ResponseWriter, r *http.Request) {
	h.query(w, r, formstore.LatestPath)
}

// GET /api/v1/forms/{id}
// GetForm godoc
// @Summary Get one form
// @Tags Forms
// @Security BearerAuth
// @Produce json
// @Param id path int true "Form row id"
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/v1/forms/{id} [get]
func (h *FormHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	res, err := h.store.Query(r.Context(), formPath(r), formstore.Query{})
	if err != nil {
		h.fail(w, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Form retrieved successfully",
		Data:    res.Forms[0],
	})
}

// POST /api/v1/forms
// CreateForm godoc
// @Summary Register a downloaded form
// @Description Stores a form row. Paths may be absolute under the storage root; hash, cache and media paths are derived when missing.
// @Tags Forms
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body formstore.Values true "Fields to store"
// @Success 201 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Router /api/v1/forms [post]
func (h *FormHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	values, ok := h.decodeValues(w, r)
	if !ok {
		return
	}
	form, err := h.store.Insert(r.Context(), formstore.CollectionPath, values)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Location", "/api/v1"+formstore.FormRoute(form.ID).URI())
	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "Form created successfully",
		Data:    form,
	})
}

// PATCH /api/v1/forms
// UpdateForms godoc
// @Summary Merge fields into every matching form
// @Description At least one filter is required unless all=true.
// @Tags Forms
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param formId query string false "Logical form id"
// @Param version query string false "Form version"
// @Param all query bool false "Update every form"
// @Param body body formstore.Values true "Fields to store"
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Router /api/v1/forms [patch]
func (h *FormHandler) UpdateForms(w http.ResponseWriter, r *http.Request) {
	selection, ok := batchSelection(w, r, "update")
	if !ok {
		return
	}
	h.update(w, r, formstore.CollectionPath, selection)
}

// PATCH /api/v1/forms/{id}
// UpdateForm godoc
// @Summary Merge fields into one form
// @Tags Forms
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Form row id"
// @Param body body formstore.Values true "Fields to store"
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/v1/forms/{id} [patch]
func (h *FormHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, formPath(r), repositories.Selection{})
}

// DELETE /api/v1/forms
// DeleteForms godoc
// @Summary Delete every matching form with its files
// @Description At least one filter is required unless all=true.
// @Tags Forms
// @Security BearerAuth
// @Produce json
// @Param formId query string false "Logical form id"
// @Param all query bool false "Delete every form"
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Router /api/v1/forms [delete]
func (h *FormHandler) DeleteForms(w http.ResponseWriter, r *http.Request) {
	selection, ok := batchSelection(w, r, "delete")
	if !ok {
		return
	}
	h.delete(w, r, formstore.CollectionPath, selection)
}

// DELETE /api/v1/forms/{id}
// DeleteForm godoc
// @Summary Delete one form with its files
// @Tags Forms
// @Security BearerAuth
// @Produce json
// @Param id path int true "Form row id"
// @Success 200 {object} utils.Payload
// @Router /api/v1/forms/{id} [delete]
func (h *FormHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, formPath(r), repositories.Selection{})
}

func (h *FormHandler) query(w http.ResponseWriter, r *http.Request, uri string) {
	params := r.URL.Query()
	selection, err := SelectionFromQuery(params)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	sort, err := SortFromQuery(params.Get("sort"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	res, err := h.store.Query(r.Context(), uri, formstore.Query{
		Fields:    splitList(params.Get("fields")),
		Selection: selection,
		Sort:      sort,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	forms := res.Forms
	if forms == nil {
		forms = []models.Form{}
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Forms retrieved successfully",
		Data:    forms,
	})
}

func (h *FormHandler) update(w http.ResponseWriter, r *http.Request, uri string, selection repositories.Selection) {
	values, ok := h.decodeValues(w, r)
	if !ok {
		return
	}
	count, err := h.store.Update(r.Context(), uri, values, selection)
	if err != nil {
		h.fail(w, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Forms updated successfully",
		Data:    map[string]int{"count": count},
	})
}

func (h *FormHandler) delete(w http.ResponseWriter, r *http.Request, uri string, selection repositories.Selection) {
	count, err := h.store.Delete(r.Context(), uri, selection)
	if err != nil {
		h.fail(w, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Forms deleted successfully",
		Data:    map[string]int{"count": count},
	})
}

func (h *FormHandler) decodeValues(w http.ResponseWriter, r *http.Request) (formstore.Values, bool) {
	var values formstore.Values
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&values); err != nil {
		badRequest(w, "Invalid form payload")
		return values, false
	}
	return values, true
}

func (h *FormHandler) fail(w http.ResponseWriter, err error) {
	storeError(w, h.log, err)
}

// storeError maps store errors onto HTTP statuses.
func storeError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"
	switch {
	case errors.Is(err, formstore.ErrUnrecognizedAddress), errors.Is(err, formstore.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, formstore.ErrUnsupportedOperation):
		status, message = http.StatusMethodNotAllowed, err.Error()
	case errors.Is(err, formstore.ErrInvalidForm), errors.Is(err, formstore.ErrInvalidProjection):
		status, message = http.StatusBadRequest, err.Error()
	default:
		log.Error("form store operation failed", zap.Error(err))
	}
	utils.ErrorResponse(w, status, message)
}

// batchSelection parses the filters of a collection-wide write. Writing to
// every form needs an explicit all=true.
func batchSelection(w http.ResponseWriter, r *http.Request, op string) (repositories.Selection, bool) {
	selection, err := SelectionFromQuery(r.URL.Query())
	if err != nil {
		badRequest(w, err.Error())
		return selection, false
	}
	if selection.Where == "" && r.URL.Query().Get("all") != "true" {
		badRequest(w, "Refusing to "+op+" every form without all=true")
		return selection, false
	}
	return selection, true
}

func formPath(r *http.Request) string {
	return formstore.CollectionPath + "/" + r.PathValue("id")
}

// SelectionFromQuery turns the supported filter parameters into a where
// clause over known columns.
func SelectionFromQuery(params url.Values) (repositories.Selection, error) {
	var clauses []string
	var args []any
	if v := params.Get("formId"); v != "" {
		clauses = append(clauses, models.ColumnFormID+" = ?")
		args = append(args, v)
	}
	if v := params.Get("version"); v != "" {
		clauses = append(clauses, models.ColumnVersion+" = ?")
		args = append(args, v)
	}
	if v := params.Get("md5Hash"); v != "" {
		clauses = append(clauses, models.ColumnMD5Hash+" = ?")
		args = append(args, v)
	}
	if v := params.Get("displayName"); v != "" {
		clauses = append(clauses, models.ColumnDisplayName+" LIKE ?")
		args = append(args, "%"+v+"%")
	}
	switch params.Get("deleted") {
	case "":
	case "true":
		clauses = append(clauses, models.ColumnDeletedDate+" IS NOT NULL")
	case "false":
		clauses = append(clauses, models.ColumnDeletedDate+" IS NULL")
	default:
		return repositories.Selection{}, fmt.Errorf("deleted must be true or false")
	}
	return repositories.Selection{Where: strings.Join(clauses, " AND "), Args: args}, nil
}

// SortFromQuery validates "column[:asc|desc],..." against the form columns.
func SortFromQuery(raw string) (string, error) {
	var terms []string
	for _, item := range splitList(raw) {
		column, dir, _ := strings.Cut(item, ":")
		if !models.FormColumns[column] {
			return "", fmt.Errorf("cannot sort by %q", column)
		}
		switch strings.ToLower(dir) {
		case "", "asc":
			terms = append(terms, column+" ASC")
		case "desc":
			terms = append(terms, column+" DESC")
		default:
			return "", fmt.Errorf("invalid sort direction %q", dir)
		}
	}
	return strings.Join(terms, ", "), nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func badRequest(w http.ResponseWriter, message string) {
	utils.ErrorResponse(w, http.StatusBadRequest, message)
}
