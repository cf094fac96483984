// Package response defines the JSON envelope returned by the HTTP API.
package response

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the envelope of every JSON response.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Predefined error responses for common scenarios.
var (
	EmptyRequestBodyResponse = ErrorResponse("Request body is empty. Please provide necessary data.")
	BadRequestResponse       = ErrorResponse("Request body is invalid.")
	RequestTooLargeResponse  = ErrorResponse("Request body is too large.")
	InvalidShortCodeResponse = ErrorResponse("Invalid short code format. Must be 3-20 alphanumeric characters.")
	ShortCodeExistsResponse  = ErrorResponse("Short code already exists. Please choose a different one.")
	URLNotFoundResponse      = ErrorResponse("Short URL not found or has expired.")
	ResourceNotFoundResponse = ErrorResponse("The requested resource was not found.")
	MethodNotAllowedResponse = ErrorResponse("The requested method is not allowed for this resource.")
	TooManyRequestsResponse  = ErrorResponse("Too many requests from this IP, please try again later.")
	ServerErrorResponse      = ErrorResponse("An internal server error occurred. Please try again later.")
)

// SuccessResponse builds a success envelope. Only the first data value is used.
func SuccessResponse(msg string, data ...any) Response {
	resp := Response{
		Status:  StatusSuccess,
		Message: msg,
	}

	if len(data) > 0 {
		resp.Data = data[0]
	}

	return resp
}

func ErrorResponse(msg string) Response {
	return Response{
		Status:  StatusError,
		Message: msg,
	}
}

type validationError struct {
	Field string `json:"field"`
	Value any    `json:"value"`
	Issue string `json:"issue"`
}

func issueForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "url", "http_url":
		return "Invalid url."
	case "alphanum":
		return "Only letters and digits are allowed."
	case "min":
		return fmt.Sprintf("Must be at least %s.", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s.", fe.Param())
	default:
		return "Invalid value."
	}
}

func getValidationErrors(err error) []validationError {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return nil
	}

	validationErrs := make([]validationError, 0, len(errs))
	for _, fe := range errs {
		validationErrs = append(validationErrs, validationError{
			Field: fe.Field(),
			Value: fe.Value(),
			Issue: issueForTag(fe),
		})
	}

	return validationErrs
}

// ValidationErrorResponse builds an error envelope listing every failed field of err.
func ValidationErrorResponse(err error) Response {
	return Response{
		Status:  StatusError,
		Message: "Validation failed.",
		Details: getValidationErrors(err),
	}
}
