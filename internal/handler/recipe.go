package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/recipebox/recipebox-go/internal/middleware"
	"github.com/recipebox/recipebox-go/internal/model"
	"github.com/recipebox/recipebox-go/internal/service"
)

// RecipeHandler handles HTTP requests for recipe operations. It expects the
// authorize and role gates to have run.
type RecipeHandler struct {
	service *service.RecipeService
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(svc *service.RecipeService) *RecipeHandler {
	return &RecipeHandler{service: svc}
}

// HandleList handles GET /api/recipes requests.
func (h *RecipeHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	recipes, err := h.service.List(r.Context(), user.ID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, recipes)
}

// HandleListByCategory handles GET /api/recipes/category/{category} requests.
func (h *RecipeHandler) HandleListByCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	recipes, err := h.service.ListByCategory(r.Context(), user.ID, pathParam(r, "category"))
	if err != nil {
		if errors.Is(err, service.ErrCategoryRequired) {
			writeFailure(w, http.StatusBadRequest, err.Error())
			return
		}
		h.internalError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, recipes)
}

// HandleGet handles GET /api/recipes/{id} requests.
func (h *RecipeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	recipe, err := h.service.Get(r.Context(), user.ID, pathParam(r, "id"))
	if err != nil {
		if errors.Is(err, service.ErrRecipeNotFound) {
			writeFailure(w, http.StatusNotFound, err.Error())
			return
		}
		h.internalError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, recipe)
}

// HandleCreate handles POST /api/recipes requests.
func (h *RecipeHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req model.RecipeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, bodyErrorStatus(err), err.Error())
		return
	}

	recipe, err := h.service.Create(r.Context(), user.ID, req)
	if err != nil {
		if isRecipeValidationError(err) {
			writeFailure(w, http.StatusBadRequest, err.Error())
			return
		}
		h.internalError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, recipe)
}

// HandleUpdate handles PUT /api/recipes/{id} requests.
func (h *RecipeHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req model.RecipeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, bodyErrorStatus(err), err.Error())
		return
	}

	recipe, err := h.service.Update(r.Context(), user.ID, pathParam(r, "id"), req)
	if err != nil {
		switch {
		case isRecipeValidationError(err):
			writeFailure(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrRecipeNotFound):
			writeFailure(w, http.StatusNotFound, err.Error())
		default:
			h.internalError(w, r, err)
		}
		return
	}

	writeSuccess(w, http.StatusOK, recipe)
}

// HandleDelete handles DELETE /api/recipes/{id} requests.
func (h *RecipeHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	err := h.service.Delete(r.Context(), user.ID, pathParam(r, "id"))
	if err != nil {
		if errors.Is(err, service.ErrRecipeNotFound) {
			writeFailure(w, http.StatusNotFound, err.Error())
			return
		}
		h.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "recipe deleted"})
}

func (h *RecipeHandler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "recipe request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeFailure(w, http.StatusInternalServerError, "internal server error")
}

// pathParam returns a decoded route parameter. chi matches against RawPath
// when the request carries escaped slashes, leaving parameters encoded.
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v
	}
	if decoded, err := url.PathUnescape(v); err == nil {
		return decoded
	}
	return v
}

func isRecipeValidationError(err error) bool {
	return errors.Is(err, service.ErrFieldsRequired) ||
		errors.Is(err, service.ErrCategoryTooLong)
}
