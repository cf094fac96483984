package response

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestSuccessResponse(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		data []any
		want Response
	}{
		{
			name: "without data",
			msg:  "Operation successful.",
			want: Response{
				Status:  StatusSuccess,
				Message: "Operation successful.",
			},
		},
		{
			name: "with data",
			msg:  "Operation successful.",
			data: []any{map[string]any{"id": 1}},
			want: Response{
				Status:  StatusSuccess,
				Message: "Operation successful.",
				Data:    map[string]any{"id": 1},
			},
		},
		{
			name: "with multiple data",
			msg:  "Operation successful.",
			data: []any{
				map[string]any{"id": 1},
				map[string]any{"id": 2},
			},
			want: Response{
				Status:  StatusSuccess,
				Message: "Operation successful.",
				Data:    map[string]any{"id": 1},
			},
		},
		{
			name: "with data containing nil",
			msg:  "Operation successful.",
			data: []any{nil},
			want: Response{
				Status:  StatusSuccess,
				Message: "Operation successful.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuccessResponse(tt.msg, tt.data...)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetValidationErrors(t *testing.T) {
	type req struct {
		Name      string `json:"name" validate:"required"`
		URL       string `json:"url" validate:"required,http_url"`
		ShortCode string `json:"shortcode" validate:"omitempty,alphanum,min=3,max=20"`
		Validity  int    `json:"validity" validate:"omitempty,min=1,max=525600"`
	}

	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	tests := []struct {
		name string
		req  req
		want []validationError
	}{
		{
			name: "not validation error",
			req: req{
				Name: "name",
				URL:  "https://example.com",
			},
		},
		{
			name: "one error",
			req: req{
				Name: "",
				URL:  "https://example.com",
			},
			want: []validationError{
				{
					Field: "name",
					Value: "",
					Issue: "This field is required.",
				},
			},
		},
		{
			name: "two errors",
			req: req{
				Name: "",
				URL:  "not url",
			},
			want: []validationError{
				{
					Field: "name",
					Value: "",
					Issue: "This field is required.",
				},
				{
					Field: "url",
					Value: "not url",
					Issue: "Invalid url.",
				},
			},
		},
		{
			name: "short code and validity",
			req: req{
				Name:      "name",
				URL:       "https://example.com",
				ShortCode: "a-b",
				Validity:  525601,
			},
			want: []validationError{
				{
					Field: "shortcode",
					Value: "a-b",
					Issue: "Only letters and digits are allowed.",
				},
				{
					Field: "validity",
					Value: 525601,
					Issue: "Must be at most 525600.",
				},
			},
		},
		{
			name: "short code too short",
			req: req{
				Name:      "name",
				URL:       "https://example.com",
				ShortCode: "ab",
			},
			want: []validationError{
				{
					Field: "shortcode",
					Value: "ab",
					Issue: "Must be at least 3.",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.req)
			got := getValidationErrors(err)

			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("other error", func(t *testing.T) {
		assert.Nil(t, getValidationErrors(errors.New("boom")))
	})
}

func TestValidationErrorResponse(t *testing.T) {
	resp := ValidationErrorResponse(errors.New("boom"))

	assert.Equal(t, StatusError, resp.Status)
	assert.NotEmpty(t, resp.Message)
	assert.Nil(t, resp.Details.([]validationError))
}
