package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynasql/dynasql/pkg/apperrors"
	"github.com/dynasql/dynasql/pkg/params"
)

func TestValidateParameters_NilMetadataPasses(t *testing.T) {
	err := ValidateParameters(nil, map[string]params.Value{"anything": params.String("goes")})
	assert.NoError(t, err)
}

func TestValidateParameters_NamesAllMissingRequired(t *testing.T) {
	meta := &Metadata{
		Required: []string{"customer_id", "start_date", "end_date"},
	}

	err := ValidateParameters(meta, map[string]params.Value{})
	require.Error(t, err)

	var validationErr *apperrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Reason, "customer_id")
	assert.Contains(t, validationErr.Reason, "start_date")
	assert.Contains(t, validationErr.Reason, "end_date")
}

func TestValidateParameters_TypeChecks(t *testing.T) {
	meta := &Metadata{
		Types: map[string]ParamType{
			"customer_id": TypeInteger,
			"start_date":  TypeDate,
			"low_stock":   TypeBoolean,
			"region":      TypeString,
		},
	}

	tests := []struct {
		name    string
		params  map[string]params.Value
		wantErr string
	}{
		{
			name: "all valid",
			params: map[string]params.Value{
				"customer_id": params.Integer(42),
				"start_date":  params.String("2024-01-01"),
				"low_stock":   params.Boolean(true),
				"region":      params.String("EMEA"),
			},
		},
		{
			name:   "integer accepts numeric string",
			params: map[string]params.Value{"customer_id": params.String("42")},
		},
		{
			name:    "integer rejects word",
			params:  map[string]params.Value{"customer_id": params.String("forty-two")},
			wantErr: "customer_id",
		},
		{
			name:    "date rejects short string",
			params:  map[string]params.Value{"start_date": params.String("2024")},
			wantErr: "start_date",
		},
		{
			name:    "date rejects integer",
			params:  map[string]params.Value{"start_date": params.Integer(20240101)},
			wantErr: "start_date",
		},
		{
			name:   "boolean accepts literal token",
			params: map[string]params.Value{"low_stock": params.String("1")},
		},
		{
			name:    "boolean rejects other strings",
			params:  map[string]params.Value{"low_stock": params.String("yes")},
			wantErr: "low_stock",
		},
		{
			name:    "boolean rejects integer",
			params:  map[string]params.Value{"low_stock": params.Integer(1)},
			wantErr: "low_stock",
		},
		{
			name:   "undeclared parameters pass through",
			params: map[string]params.Value{"extra": params.String("anything")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParameters(meta, tt.params)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateParameters_RequiredBeforeTypes(t *testing.T) {
	meta := &Metadata{
		Required: []string{"start_date"},
		Types:    map[string]ParamType{"customer_id": TypeInteger},
	}

	// Missing required wins even when a supplied param is also mistyped.
	err := ValidateParameters(meta, map[string]params.Value{
		"customer_id": params.String("not-a-number"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start_date")
}
