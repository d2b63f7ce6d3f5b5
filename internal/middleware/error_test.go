package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var apiErrorCodes = []int{
	http.StatusBadRequest,
	http.StatusUnauthorized,
	http.StatusForbidden,
	http.StatusNotFound,
	http.StatusConflict,
	http.StatusUnprocessableEntity,
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
}

func TestProperty_ErrorResponsesShareOneShape(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every error body carries code, message and timestamp", prop.ForAll(
		func(message string, pick int) bool {
			if pick < 0 {
				pick = -pick
			}
			statusCode := apiErrorCodes[pick%len(apiErrorCodes)]

			w := httptest.NewRecorder()
			RespondWithError(w, statusCode, message)

			if w.Code != statusCode {
				return false
			}
			if w.Header().Get("Content-Type") != "application/json" {
				return false
			}

			var response ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				return false
			}
			if response.Error.Code == "" || response.Error.Message != message {
				return false
			}
			if _, err := time.Parse(time.RFC3339, response.Error.Timestamp); err != nil {
				return false
			}
			return true
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 }),
		gen.Int(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ErrorDetailsSurviveTheRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("details passed in come back in the body", prop.ForAll(
		func(key, value string) bool {
			if key == "" {
				key = "product_id"
			}
			if value == "" {
				value = "unavailable"
			}

			w := httptest.NewRecorder()
			RespondWithErrorDetails(w, http.StatusConflict, "produto indisponivel", map[string]interface{}{key: value})

			var response ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				return false
			}
			got, ok := response.Error.Details[key]
			return ok && got == value
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRespondWithValidationErrorsUses400(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithValidationErrors(w, []ValidationError{
		{Field: "customer_email", Message: "must be a valid email"},
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var response ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatal(err)
	}
	if response.Error.Details == nil {
		t.Fatal("validation errors must land in details")
	}
	if _, ok := response.Error.Details["validation_errors"]; !ok {
		t.Error("details are missing the validation_errors key")
	}
}

func TestProperty_JSONResponsesAreParseable(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("RespondWithJSON emits valid JSON with the requested status", prop.ForAll(
		func(pick int, data map[string]string) bool {
			codes := []int{http.StatusOK, http.StatusCreated, http.StatusAccepted}
			if pick < 0 {
				pick = -pick
			}
			statusCode := codes[pick%len(codes)]

			w := httptest.NewRecorder()
			RespondWithJSON(w, statusCode, data)

			if w.Code != statusCode {
				return false
			}
			if w.Header().Get("Content-Type") != "application/json" {
				return false
			}

			var result map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
				return false
			}
			for k, v := range data {
				if result[k] != v {
					return false
				}
			}
			return true
		},
		gen.Int(),
		gen.MapOf(gen.AlphaString(), gen.AlphaString()),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
