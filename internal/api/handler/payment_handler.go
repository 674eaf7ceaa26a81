package handler

import (
	"encoding/json"
	"net/http"

	"codeprep_backend/internal/api/middleware"
	"codeprep_backend/internal/app/service"
	"codeprep_backend/internal/common"

	"github.com/go-chi/chi/v5"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
}

func NewPaymentHandler(ps *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: ps}
}

func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Post("/orders", h.createOrder)   // POST /api/v1/payments/orders
	r.Post("/confirm", h.confirm)      // POST /api/v1/payments/confirm
	r.Post("/fail", h.fail)            // POST /api/v1/payments/fail
	r.Post("/refund", h.refund)        // POST /api/v1/payments/refund
	r.Get("/history", h.history)       // GET /api/v1/payments/history
}

func (h *PaymentHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	req.UserID = userID
	req.IPAddress = clientIP(r)

	payment, err := h.paymentService.CreateOrder(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithData(w, http.StatusCreated, "Order created", payment)
}

func (h *PaymentHandler) confirm(w http.ResponseWriter, r *http.Request) {
	var req service.ConfirmPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	payment, err := h.paymentService.Confirm(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithData(w, http.StatusOK, "Payment confirmed", payment)
}

func (h *PaymentHandler) fail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RazorpayOrderID string `json:"razorpay_order_id"`
		Reason          string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	payment, err := h.paymentService.Fail(r.Context(), req.RazorpayOrderID, req.Reason)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithData(w, http.StatusOK, "Payment failure recorded", payment)
}

func (h *PaymentHandler) refund(w http.ResponseWriter, r *http.Request) {
	var req service.RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	payment, err := h.paymentService.Refund(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithData(w, http.StatusOK, "Refund recorded", payment)
}

func (h *PaymentHandler) history(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	payments, err := h.paymentService.History(r.Context(), userID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithData(w, http.StatusOK, "Payments retrieved", payments)
}
