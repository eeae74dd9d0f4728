package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestStruct struct {
	ProjectID int64  `validate:"required,gt=0"`
	Name      string `validate:"required"`
	Status    string `validate:"omitempty,milestone_status"`
}

func TestValidateStruct(t *testing.T) {
	testCases := []struct {
		name             string
		input            TestStruct
		expectError      bool
		expectedErrorMsg string
	}{
		{
			name: "Success: All fields are valid",
			input: TestStruct{
				ProjectID: 1,
				Name:      "Sprint 1 demo",
				Status:    "OPEN",
			},
			expectError: false,
		},
		{
			name: "Success: Empty status passes the enum check",
			input: TestStruct{
				ProjectID: 1,
				Name:      "Sprint 1 demo",
			},
			expectError: false,
		},
		{
			name: "Failure: Unknown milestone status",
			input: TestStruct{
				ProjectID: 1,
				Name:      "Sprint 1 demo",
				Status:    "LAUNCHED",
			},
			expectError:      true,
			expectedErrorMsg: "field 'Status' must be one of PENDING, OPEN, CLOSED, EVALUATING, COMPLETED",
		},
		{
			name: "Failure: Missing required field (Name)",
			input: TestStruct{
				ProjectID: 1,
				Name:      "",
			},
			expectError:      true,
			expectedErrorMsg: "field 'Name' failed on the 'required' tag",
		},
		{
			name: "Failure: Non-positive project id",
			input: TestStruct{
				ProjectID: 0,
				Name:      "Sprint 1 demo",
			},
			expectError:      true,
			expectedErrorMsg: "field 'ProjectID' failed on the 'required' tag",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStruct(tc.input)

			if tc.expectError {
				assert.Error(t, err)
				require.IsType(t, &ValidationError{}, err, "error should be of type ValidationError")
				verr := err.(*ValidationError)
				assert.Contains(t, verr.Error(), tc.expectedErrorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []string{"error 1", "error 2"},
	}
	assert.Equal(t, "error 1, error 2", err.Error())
}
