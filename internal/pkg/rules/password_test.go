package rules

import (
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
)

func TestPassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{password: "secret123", wantErr: false},
		{password: "Passw0rd!", wantErr: false},
		{password: "short1", wantErr: true},
		{password: "onlyletters", wantErr: true},
		{password: "12345678", wantErr: true},
		{password: "", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := validation.Validate(tt.password, Password)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPassword)
				return
			}
			assert.NoError(t, err)
		})
	}
}
