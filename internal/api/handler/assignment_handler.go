package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"codeprep_backend/internal/api/middleware"
	"codeprep_backend/internal/app/service"
	"codeprep_backend/internal/common"
	"codeprep_backend/internal/domain/model"
	"codeprep_backend/internal/domain/repository"

	"github.com/go-chi/chi/v5"
)

type AssignmentHandler struct {
	assignmentService *service.AssignmentService
}

func NewAssignmentHandler(as *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: as}
}

func (h *AssignmentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listAssignments)                 // GET /api/v1/assignments
	r.Get("/slug/{assignmentSlug}", h.getBySlug)  // GET /api/v1/assignments/slug/two-sum
	r.Get("/{assignmentID}", h.getByID)           // GET /api/v1/assignments/{id}

	r.Group(func(protected chi.Router) {
		protected.Use(middleware.Authenticator)
		protected.Post("/", h.createAssignment)
		protected.Put("/{assignmentID}", h.updateAssignment)
	})
}

func (h *AssignmentHandler) createAssignment(w http.ResponseWriter, r *http.Request) {
	var req service.CreateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	assignment, err := h.assignmentService.Create(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithData(w, http.StatusCreated, "Assignment created", assignment)
}

func (h *AssignmentHandler) updateAssignment(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	assignment, err := h.assignmentService.Update(r.Context(), chi.URLParam(r, "assignmentID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithData(w, http.StatusOK, "Assignment updated", assignment)
}

func (h *AssignmentHandler) listAssignments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page <= 0 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	filter := repository.AssignmentFilter{
		CategoryID:  q.Get("category"),
		Difficulty:  model.Difficulty(q.Get("difficulty")),
		ProblemType: model.ProblemType(q.Get("type")),
		ActiveOnly:  q.Get("all") == "",
		Page:        int64(page),
		PageSize:    int64(pageSize),
	}

	pageResult, err := h.assignmentService.List(r.Context(), filter)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithData(w, http.StatusOK, "Assignments retrieved", pageResult)
}

func (h *AssignmentHandler) getBySlug(w http.ResponseWriter, r *http.Request) {
	assignment, err := h.assignmentService.GetBySlug(r.Context(), chi.URLParam(r, "assignmentSlug"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithData(w, http.StatusOK, "Assignment retrieved", assignment)
}

func (h *AssignmentHandler) getByID(w http.ResponseWriter, r *http.Request) {
	assignment, err := h.assignmentService.GetByID(r.Context(), chi.URLParam(r, "assignmentID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithData(w, http.StatusOK, "Assignment retrieved", assignment)
}
