package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/segyhp/loan-tracker/internal/domain"
	customError "github.com/segyhp/loan-tracker/pkg/errors"
	"github.com/segyhp/loan-tracker/pkg/logger"
	"github.com/segyhp/loan-tracker/pkg/response"
)

// LoanService is what the HTTP layer needs from the loan service.
type LoanService interface {
	CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, error)
	UpdateLoanStatus(ctx context.Context, loanID uuid.UUID, status domain.LoanStatus) (*domain.Loan, error)
	ConfigureTerms(ctx context.Context, loanID uuid.UUID, request *domain.ConfigureTermsRequest) (*domain.Loan, error)
	ListLoans(ctx context.Context, configuredOnly bool) ([]*domain.Loan, error)
	ListApprovedUnconfigured(ctx context.Context) ([]*domain.Loan, error)
	ListUserLoans(ctx context.Context, userID uuid.UUID) ([]*domain.Loan, error)
	ListUserConfiguredLoans(ctx context.Context, userID uuid.UUID) ([]*domain.Loan, error)
	GetSchedule(ctx context.Context, loanID uuid.UUID, asOf *time.Time) (*domain.ScheduleResponse, error)
	GetUnpaidBalance(ctx context.Context, loanID uuid.UUID) (*domain.UnpaidBalanceResponse, error)
	RecordPayment(ctx context.Context, request *domain.RecordPaymentRequest) (*domain.RecordPaymentResponse, error)
	RecordGCashPayment(ctx context.Context, request *domain.RecordPaymentRequest) (*domain.RecordPaymentResponse, error)
	UpdatePaymentStatus(ctx context.Context, paymentID uuid.UUID, status domain.PaymentStatus) (*domain.Payment, error)
	ListLoanPayments(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error)
	ListUserPayments(ctx context.Context, userID uuid.UUID) ([]*domain.Payment, error)
}

type LoanHandler struct {
	service   LoanService
	validator *validator.Validate
	logger    logger.Logger
}

func NewLoanHandler(service LoanService, log logger.Logger) *LoanHandler {
	return &LoanHandler{
		service:   service,
		validator: NewValidator(),
		logger:    log,
	}
}

// RegisterRoutes mounts the loan and payment endpoints on an /api/v1 subrouter.
func (h *LoanHandler) RegisterRoutes(api *mux.Router) {
	api.HandleFunc("/loans", h.CreateLoan).Methods(http.MethodPost)
	api.HandleFunc("/loans", h.ListLoans).Methods(http.MethodGet)
	api.HandleFunc("/loans/approved", h.ListApprovedUnconfigured).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/status", h.UpdateLoanStatus).Methods(http.MethodPatch)
	api.HandleFunc("/loans/{id}/details", h.ConfigureTerms).Methods(http.MethodPut)
	api.HandleFunc("/loans/{id}/schedule", h.GetSchedule).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/unpaid-balance", h.GetUnpaidBalance).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/payments", h.ListLoanPayments).Methods(http.MethodGet)

	api.HandleFunc("/users/{userId}/loans", h.ListUserLoans).Methods(http.MethodGet)
	api.HandleFunc("/users/{userId}/loans/details", h.ListUserConfiguredLoans).Methods(http.MethodGet)
	api.HandleFunc("/users/{userId}/payments", h.ListUserPayments).Methods(http.MethodGet)

	api.HandleFunc("/payments/process", h.RecordPayment).Methods(http.MethodPost)
	api.HandleFunc("/payments/process-gcash", h.RecordGCashPayment).Methods(http.MethodPost)
	api.HandleFunc("/payments/{paymentId}/status", h.UpdatePaymentStatus).Methods(http.MethodPut)
}

func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLoanRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	loan, err := h.service.CreateLoan(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, loan)
}

// ListLoans returns every loan, or only configured ones with ?configured=true.
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	configuredOnly := r.URL.Query().Get("configured") == "true"

	loans, err := h.service.ListLoans(r.Context(), configuredOnly)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, loans)
}

func (h *LoanHandler) ListApprovedUnconfigured(w http.ResponseWriter, r *http.Request) {
	loans, err := h.service.ListApprovedUnconfigured(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, loans)
}

func (h *LoanHandler) UpdateLoanStatus(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req domain.UpdateLoanStatusRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	loan, err := h.service.UpdateLoanStatus(r.Context(), loanID, req.Status)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, loan)
}

func (h *LoanHandler) ConfigureTerms(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req domain.ConfigureTermsRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	loan, err := h.service.ConfigureTerms(r.Context(), loanID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, loan)
}

// GetSchedule accepts an optional as_of query parameter, either RFC 3339 or YYYY-MM-DD.
func (h *LoanHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	asOf, err := parseAsOf(r.URL.Query().Get("as_of"))
	if err != nil {
		response.BadRequest(w, "Invalid as_of parameter", err)
		return
	}

	schedule, err := h.service.GetSchedule(r.Context(), loanID, asOf)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, schedule)
}

func (h *LoanHandler) GetUnpaidBalance(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	balance, err := h.service.GetUnpaidBalance(r.Context(), loanID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, balance)
}

func (h *LoanHandler) ListLoanPayments(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	payments, err := h.service.ListLoanPayments(r.Context(), loanID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, payments)
}

func (h *LoanHandler) ListUserLoans(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "userId")
	if !ok {
		return
	}

	loans, err := h.service.ListUserLoans(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, loans)
}

func (h *LoanHandler) ListUserConfiguredLoans(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "userId")
	if !ok {
		return
	}

	loans, err := h.service.ListUserConfiguredLoans(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, loans)
}

func (h *LoanHandler) ListUserPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "userId")
	if !ok {
		return
	}

	payments, err := h.service.ListUserPayments(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, payments)
}

func (h *LoanHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req domain.RecordPaymentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.service.RecordPayment(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, result)
}

func (h *LoanHandler) RecordGCashPayment(w http.ResponseWriter, r *http.Request) {
	var req domain.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	req.PaymentMethod = domain.PaymentMethodGCash
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	result, err := h.service.RecordGCashPayment(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, result)
}

func (h *LoanHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := pathUUID(w, r, "paymentId")
	if !ok {
		return
	}

	var req domain.UpdatePaymentStatusRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	payment, err := h.service.UpdatePaymentStatus(r.Context(), paymentID, req.Status)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, payment)
}

func (h *LoanHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return false
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return false
	}

	return true
}

// writeError maps service errors to HTTP statuses.
func (h *LoanHandler) writeError(w http.ResponseWriter, err error) {
	message := "Request failed"
	var be *customError.BusinessError
	if errors.As(err, &be) {
		message = be.Message
	}

	switch {
	case errors.Is(err, customError.ErrInvalidInput):
		response.BadRequest(w, message, err)
	case errors.Is(err, customError.ErrLoanNotFound),
		errors.Is(err, customError.ErrPaymentNotFound),
		errors.Is(err, customError.ErrInstallmentNotFound):
		response.Error(w, http.StatusNotFound, message, err)
	case errors.Is(err, customError.ErrInstallmentAlreadyPaid),
		errors.Is(err, customError.ErrTermsAlreadyConfigured):
		response.Conflict(w, message, err)
	case errors.Is(err, customError.ErrLoanNotApproved),
		errors.Is(err, customError.ErrUnconfiguredLoan):
		response.UnprocessableEntity(w, message, err)
	case errors.Is(err, customError.ErrLoanLocked):
		response.Locked(w, message, err)
	default:
		h.logger.WithError(err).Error("request failed", map[string]interface{}{
			"code": customError.Code(err),
		})
		response.InternalServerError(w, "Internal server error", nil)
	}
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.BadRequest(w, "Invalid "+name, err)
		return uuid.Nil, false
	}
	return id, true
}

func parseAsOf(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(domain.DueDateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
