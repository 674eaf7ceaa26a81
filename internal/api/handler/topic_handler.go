package handler

import (
	"encoding/json"
	"net/http"

	"codeprep_backend/internal/api/middleware"
	"codeprep_backend/internal/app/service"
	"codeprep_backend/internal/common"

	"github.com/go-chi/chi/v5"
)

type TopicHandler struct {
	topicService *service.TopicService
}

func NewTopicHandler(ts *service.TopicService) *TopicHandler {
	return &TopicHandler{topicService: ts}
}

func (h *TopicHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listTopics)                       // GET /api/v1/topics
	r.Get("/slug/{topicSlug}", h.getTopic)         // GET /api/v1/topics/slug/dynamic-programming
	r.Get("/{topicID}", h.getTopicByID)            // GET /api/v1/topics/{id}
	r.Get("/{topicID}/children", h.listChildren)   // GET /api/v1/topics/{id}/children

	r.Group(func(protected chi.Router) {
		protected.Use(middleware.Authenticator)
		protected.Post("/", h.createTopic)         // POST /api/v1/topics
		protected.Put("/{topicID}", h.updateTopic)        // PUT /api/v1/topics/{id}
		protected.Delete("/{topicID}", h.deactivateTopic) // DELETE /api/v1/topics/{id}
	})
}

func (h *TopicHandler) deactivateTopic(w http.ResponseWriter, r *http.Request) {
	topic, err := h.topicService.Deactivate(r.Context(), chi.URLParam(r, "topicID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithData(w, http.StatusOK, "Topic deactivated", topic)
}

func (h *TopicHandler) getTopicByID(w http.ResponseWriter, r *http.Request) {
	topic, err := h.topicService.GetByID(r.Context(), chi.URLParam(r, "topicID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithData(w, http.StatusOK, "Topic retrieved", topic)
}

func (h *TopicHandler) createTopic(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	topic, err := h.topicService.Create(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithData(w, http.StatusCreated, "Topic created", topic)
}

func (h *TopicHandler) updateTopic(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	topic, err := h.topicService.Update(r.Context(), chi.URLParam(r, "topicID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithData(w, http.StatusOK, "Topic updated", topic)
}

func (h *TopicHandler) listTopics(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") == ""

	topics, err := h.topicService.List(r.Context(), activeOnly)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithData(w, http.StatusOK, "Topics retrieved", topics)
}

func (h *TopicHandler) getTopic(w http.ResponseWriter, r *http.Request) {
	topic, err := h.topicService.GetBySlug(r.Context(), chi.URLParam(r, "topicSlug"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithData(w, http.StatusOK, "Topic retrieved", topic)
}

func (h *TopicHandler) listChildren(w http.ResponseWriter, r *http.Request) {
	children, err := h.topicService.ListChildren(r.Context(), chi.URLParam(r, "topicID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithData(w, http.StatusOK, "Subtopics retrieved", children)
}
