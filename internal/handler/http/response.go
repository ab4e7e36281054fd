package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/nikolayk812/herbalshop/internal/domain"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type response struct {
	Data  any            `json:"data,omitempty"`
	Error *errorResponse `json:"error,omitempty"`
}

type errorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// errInvalidInput marks client mistakes in the request itself (bad JSON,
// malformed path or query parameters).
var errInvalidInput = errors.New("invalid input")

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errInvalidInput, fmt.Sprintf(format, args...))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// headers are gone, nothing useful to do on an encode failure
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, response{Data: data})
}

// writeError maps domain and request errors to status codes. Anything
// unrecognised is logged and reported as a 500 without details.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	requestID := chimw.GetReqID(r.Context())

	var (
		status  int
		errResp = errorResponse{RequestID: requestID}
		valErrs validator.ValidationErrors
	)

	switch {
	case errors.As(err, &valErrs):
		status = http.StatusBadRequest
		errResp.Code = "VALIDATION_ERROR"
		errResp.Message = "request validation failed"
		errResp.Fields = validationFields(valErrs)
	case errors.Is(err, domain.ErrInvalidQuantity):
		status = http.StatusBadRequest
		errResp.Code = "INVALID_QUANTITY"
		errResp.Message = domain.ErrInvalidQuantity.Error()
	case errors.Is(err, errInvalidInput):
		status = http.StatusBadRequest
		errResp.Code = "INVALID_INPUT"
		errResp.Message = err.Error()
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		errResp.Code = "NOT_FOUND"
		errResp.Message = "resource not found"
	case errors.Is(err, domain.ErrUnauthenticated):
		status = http.StatusUnauthorized
		errResp.Code = "UNAUTHORIZED"
		errResp.Message = domain.ErrUnauthenticated.Error()
	default:
		status = http.StatusInternalServerError
		errResp.Code = "INTERNAL_ERROR"
		errResp.Message = "an internal error occurred"

		logger.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", requestID),
		)
	}

	writeJSON(w, status, response{Error: &errResp})
}

func validationFields(errs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Field()] = msgForTag(fe)
	}
	return fields
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}

// decodeAndValidate decodes a JSON body into dst and runs struct validation.
// A non-integer quantity is reported as an invalid quantity.
func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "quantity" {
			return fmt.Errorf("%w: quantity must be an integer", domain.ErrInvalidQuantity)
		}
		return invalidInput("invalid request body: %v", err)
	}

	return validate.Struct(dst)
}

func productIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "productID")

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, invalidInput("invalid product id: %q", raw)
	}

	return id, nil
}
