package validator

import (
	"testing"

	ierr "github.com/fleetledger/fleetledger/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name string `json:"name" validate:"required"`
	Mode string `json:"business_mode" validate:"required,business_mode"`
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     sampleRequest
		wantErr bool
	}{
		{name: "valid", req: sampleRequest{Name: "acme", Mode: "b2b"}},
		{name: "mixed case mode", req: sampleRequest{Name: "acme", Mode: "B2C"}},
		{name: "missing name", req: sampleRequest{Mode: "b2b"}, wantErr: true},
		{name: "unknown mode", req: sampleRequest{Name: "acme", Mode: "b2g"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(&tt.req)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, ierr.IsValidation(err))
		})
	}
}
