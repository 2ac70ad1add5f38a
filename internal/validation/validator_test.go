package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contactRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required"`
	Message string `json:"message" validate:"required,min=2"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name   string
		input  contactRequest
		fields []string
		first  string
	}{
		{
			name:  "valid",
			input: contactRequest{Name: "Sara", Email: "sara@example.com", Phone: "+968", Message: "Hello"},
		},
		{
			name:   "missing name",
			input:  contactRequest{Email: "sara@example.com", Phone: "+968", Message: "Hello"},
			fields: []string{"name"},
			first:  "name is required",
		},
		{
			name:   "bad email and short message",
			input:  contactRequest{Name: "Sara", Email: "nope", Phone: "+968", Message: "x"},
			fields: []string{"email", "message"},
			first:  "email must be a valid email address",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStruct(&tc.input)
			if len(tc.fields) == 0 {
				require.NoError(t, err)
				return
			}

			var verr *RequestValidationError
			require.ErrorAs(t, err, &verr)

			var fields []string
			for _, f := range verr.Fields {
				fields = append(fields, f.Field)
			}
			assert.Equal(t, tc.fields, fields)
			assert.Equal(t, tc.first, verr.Fields[0].Message)
		})
	}
}

func TestTranslateMinMax(t *testing.T) {
	err := ValidateStruct(&contactRequest{Name: "Sara", Email: "sara@example.com", Phone: "1", Message: "x"})

	var verr *RequestValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "message must be at least 2 characters", verr.Fields[0].Message)
	assert.Equal(t, "message must be at least 2 characters", verr.Error())
}
