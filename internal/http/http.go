package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ely.by/authlib/internal/security"
)

func StartServer(ctx context.Context, server *http.Server) {
	srvErr := make(chan error, 1)
	go func() {
		slog.Info("Starting the server", slog.String("addr", server.Addr))
		srvErr <- server.ListenAndServe()
		close(srvErr)
	}()

	select {
	case err := <-srvErr:
		slog.Error("Error in the server", slog.Any("error", err))
	case <-ctx.Done():
		slog.Info("Got stop signal, starting graceful shutdown")

		stopCtx, cancelFunc := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancelFunc()

		_ = server.Shutdown(stopCtx)

		slog.Info("Graceful shutdown succeed, exiting")
	}
}

type Authenticator interface {
	Authenticate(req *http.Request, scope security.Scope) error
}

func NewAuthenticationMiddleware(authenticator Authenticator, scope security.Scope) mux.MiddlewareFunc {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
			err := authenticator.Authenticate(req, scope)
			if err != nil {
				apiForbidden(resp, err.Error())
				return
			}

			handler.ServeHTTP(resp, req)
		})
	}
}

func NotFoundHandler(response http.ResponseWriter, _ *http.Request) {
	data, _ := json.Marshal(map[string]string{
		"status":  "404",
		"message": "Not Found",
	})

	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(http.StatusNotFound)
	_, _ = response.Write(data)
}

func apiJson(resp http.ResponseWriter, data any) {
	result, _ := json.Marshal(data)
	resp.Header().Set("Content-Type", "application/json")
	_, _ = resp.Write(result)
}

func apiBadRequest(resp http.ResponseWriter, errorsPerField map[string][]string) {
	resp.Header().Set("Content-Type", "application/json")
	resp.WriteHeader(http.StatusBadRequest)
	result, _ := json.Marshal(map[string]any{
		"errors": errorsPerField,
	})
	_, _ = resp.Write(result)
}

func apiForbidden(resp http.ResponseWriter, reason string) {
	resp.Header().Set("Content-Type", "application/json")
	resp.WriteHeader(http.StatusForbidden)
	result, _ := json.Marshal(map[string]any{
		"error": reason,
	})
	_, _ = resp.Write(result)
}

func apiServiceUnavailable(resp http.ResponseWriter, req *http.Request, err error) {
	recordSpanError(req, err)

	resp.Header().Set("Content-Type", "application/json")
	resp.WriteHeader(http.StatusServiceUnavailable)
	result, _ := json.Marshal(map[string]any{
		"error": "identity directory is unavailable",
	})
	_, _ = resp.Write(result)
}

var internalServerError = []byte("Internal server error")

func apiServerError(resp http.ResponseWriter, req *http.Request, err error) {
	recordSpanError(req, err)
	slog.ErrorContext(req.Context(), "Unable to handle the request", slog.Any("error", err))

	resp.Header().Set("Content-Type", "text/plain")
	resp.WriteHeader(http.StatusInternalServerError)
	_, _ = resp.Write(internalServerError)
}

func recordSpanError(req *http.Request, err error) {
	span := trace.SpanFromContext(req.Context())
	span.SetStatus(codes.Error, "")
	span.RecordError(err)
}

// decodeJsonBody writes the bad request response itself, so the caller only has to return on false
func decodeJsonBody(resp http.ResponseWriter, req *http.Request, validate *validator.Validate, target any) bool {
	err := json.NewDecoder(req.Body).Decode(target)
	if err != nil {
		apiBadRequest(resp, map[string][]string{
			"body": {"The body of the request must be a valid json object"},
		})
		return false
	}

	err = validate.Struct(target)
	if err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			apiBadRequest(resp, mapValidationErrors(validationErrs))
			return false
		}

		apiServerError(resp, req, fmt.Errorf("unable to validate the request: %w", err))
		return false
	}

	return true
}

func newRequestValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	// Accepts both dashed and dashless forms
	_ = validate.RegisterValidation("uuid_any", func(fl validator.FieldLevel) bool {
		_, err := uuid.Parse(fl.Field().String())
		return err == nil
	})

	return validate
}

func mapValidationErrors(errs validator.ValidationErrors) map[string][]string {
	result := make(map[string][]string)
	for _, e := range errs {
		// Namespace contains the name of the root struct, which is meaningless for the API
		_, field, _ := strings.Cut(e.Namespace(), ".")
		result[field] = append(result[field], formatValidationErr(field, e))
	}

	return result
}

func formatValidationErr(field string, err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is a required field", field)
	case "max":
		return fmt.Sprintf("%s must be a maximum of %s in length", field, err.Param())
	case "uuid_any":
		return fmt.Sprintf("%s must be a valid UUID", field)
	default:
		return fmt.Sprintf(`Field validation for "%s" failed on the "%s" tag`, field, err.Tag())
	}
}
