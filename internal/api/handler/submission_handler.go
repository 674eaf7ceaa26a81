package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"codeprep_backend/internal/api/middleware"
	"codeprep_backend/internal/app/service"
	"codeprep_backend/internal/common"

	"github.com/go-chi/chi/v5"
)

type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

func NewSubmissionHandler(ss *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: ss}
}

// All submission routes require a session.
func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Post("/", h.recordSubmission)                          // POST /api/v1/submissions
	r.Get("/mine", h.listMine)                               // GET /api/v1/submissions/mine
	r.Get("/assignment/{assignmentID}", h.listForAssignment) // GET /api/v1/submissions/assignment/{id}
	r.Get("/{submissionID}", h.getSubmission)                // GET /api/v1/submissions/{id}
}

func (h *SubmissionHandler) recordSubmission(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.RecordSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	req.UserID = userID
	req.IPAddress = clientIP(r)

	sub, err := h.submissionService.Record(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithData(w, http.StatusCreated, "Submission recorded", sub)
}

func (h *SubmissionHandler) getSubmission(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	sub, err := h.submissionService.GetByID(r.Context(), chi.URLParam(r, "submissionID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	if sub.UserID != userID {
		common.RespondWithError(w, http.StatusForbidden, "Submission belongs to another user")
		return
	}
	common.RespondWithData(w, http.StatusOK, "Submission retrieved", sub)
}

func (h *SubmissionHandler) listMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	subs, err := h.submissionService.ListByUser(r.Context(), userID, limitParam(r))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithData(w, http.StatusOK, "Submissions retrieved", subs)
}

func (h *SubmissionHandler) listForAssignment(w http.ResponseWriter, r *http.Request) {
	subs, err := h.submissionService.ListByAssignment(r.Context(), chi.URLParam(r, "assignmentID"), limitParam(r))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithData(w, http.StatusOK, "Submissions retrieved", subs)
}

func limitParam(r *http.Request) int64 {
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return limit
}
