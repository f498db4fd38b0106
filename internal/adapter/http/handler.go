package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"efris-bridge/internal/domain/model"
	"efris-bridge/internal/domain/ports"
	"efris-bridge/internal/metrics"
	"efris-bridge/internal/notify"
	"efris-bridge/internal/service"
	"efris-bridge/pkg/logger"

	"github.com/go-playground/validator/v10"
)

type Response struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Handler struct {
	service  ports.FormService
	validate *validator.Validate
	log      *logger.Logger
	metrics  *metrics.Metrics
}

func NewHandler(service ports.FormService, log *logger.Logger, metrics *metrics.Metrics) *Handler {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{
		service:  service,
		validate: validate,
		log:      log,
		metrics:  metrics,
	}
}

// collect installs a fresh notice collector on the request context.
func collect(r *http.Request) (context.Context, *notify.Collector) {
	c := notify.NewCollector()
	return notify.WithCollector(r.Context(), c), c
}

func (h *Handler) CurrencyChangedHandler(w http.ResponseWriter, r *http.Request) {
	var doc model.Document
	if !h.decode(w, r, &doc) {
		return
	}

	ctx, notices := collect(r)
	reply, err := h.service.CurrencyChanged(ctx, doc)
	h.sendReply(w, http.StatusOK, reply, notices, err)
}

func (h *Handler) CompanyChangedHandler(w http.ResponseWriter, r *http.Request) {
	var doc model.Document
	if !h.decode(w, r, &doc) {
		return
	}

	ctx, notices := collect(r)
	err := h.service.CompanyChanged(ctx, doc)
	h.sendReply(w, http.StatusAccepted, &model.FormReply{Document: doc}, notices, err)
}

func (h *Handler) TaxIDChangedHandler(w http.ResponseWriter, r *http.Request) {
	var doc model.Document
	if !h.decode(w, r, &doc) {
		return
	}

	ctx, notices := collect(r)
	reply, err := h.service.TaxIDChanged(ctx, doc)
	h.sendReply(w, http.StatusOK, reply, notices, err)
}

func (h *Handler) NewCustomerToggledHandler(w http.ResponseWriter, r *http.Request) {
	var doc model.Document
	if !h.decode(w, r, &doc) {
		return
	}

	ctx, notices := collect(r)
	reply, err := h.service.NewCustomerToggled(ctx, doc)
	h.sendReply(w, http.StatusOK, reply, notices, err)
}

func (h *Handler) SyncItemsHandler(w http.ResponseWriter, r *http.Request) {
	var req model.ItemSyncRequest
	if !h.decode(w, r, &req) {
		return
	}

	job, err := h.service.SyncItems(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err, nil)
		return
	}
	h.sendSuccessResponse(w, http.StatusAccepted, job)
}

func (h *Handler) CreditNoteApprovalHandler(w http.ResponseWriter, r *http.Request) {
	var doc model.Document
	if !h.decode(w, r, &doc) {
		return
	}

	ctx, notices := collect(r)
	reply, err := h.service.CheckCreditNoteApproval(ctx, doc)
	h.sendReply(w, http.StatusOK, reply, notices, err)
}

// decode reads and validates the JSON body into dst. It writes the error
// response itself and reports whether the handler should go on.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.sendErrorResponse(w, http.StatusBadRequest, Response{Error: "invalid request body"})
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			h.sendErrorResponse(w, http.StatusBadRequest, Response{Error: "invalid request body"})
			return false
		}
		details := make([]FieldError, 0, len(validationErrors))
		for _, e := range validationErrors {
			details = append(details, FieldError{Field: e.Field(), Message: validationMessage(e)})
		}
		h.sendErrorResponse(w, http.StatusBadRequest, Response{Error: "request validation failed", Details: details})
		return false
	}
	return true
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "min":
		return "Must be at least " + e.Param()
	case "max":
		return "Must be at most " + e.Param()
	default:
		return "Invalid value"
	}
}

func (h *Handler) sendReply(w http.ResponseWriter, status int, reply *model.FormReply, notices *notify.Collector, err error) {
	if reply != nil {
		reply.Notices = notices.Notices()
	}
	if err != nil {
		var data any
		if reply != nil {
			data = reply
		}
		h.handleServiceError(w, err, data)
		return
	}
	h.sendSuccessResponse(w, status, reply)
}

func (h *Handler) sendSuccessResponse(w http.ResponseWriter, status int, data any) {
	h.writeJSON(w, status, Response{
		Success: true,
		Data:    data,
	})
}

func (h *Handler) sendErrorResponse(w http.ResponseWriter, statusCode int, response Response) {
	response.Success = false
	h.writeJSON(w, statusCode, response)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, response Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("Failed to encode response", "error", err)
	}
}

// handleServiceError maps service errors to a status. data, when set, still
// travels back so the form can show the notices raised before the failure.
func (h *Handler) handleServiceError(w http.ResponseWriter, err error, data any) {
	statusCode := http.StatusInternalServerError
	errorMessage := "internal server error"

	switch {
	case errors.Is(err, service.ErrInvalidCurrency):
		statusCode = http.StatusBadRequest
		errorMessage = "invalid currency"
	case errors.Is(err, service.ErrMissingCompany):
		statusCode = http.StatusBadRequest
		errorMessage = "company is required"
	case errors.Is(err, service.ErrNotApplicable):
		statusCode = http.StatusConflict
		errorMessage = "document is not eligible for this action"
	case errors.Is(err, service.ErrUnsavedDocument):
		statusCode = http.StatusUnprocessableEntity
		errorMessage = "document has unsaved changes"
	case errors.Is(err, service.ErrExternalAPIFailure):
		statusCode = http.StatusServiceUnavailable
		errorMessage = "external API failure"
	}

	h.log.Error("Service error", "error", err, "status_code", statusCode)
	h.sendErrorResponse(w, statusCode, Response{Error: errorMessage, Data: data})
}
