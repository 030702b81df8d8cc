package decision

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodia/internal/policygroup"
	dErrors "custodia/pkg/domainerrors"
)

func validRequest() AccessRequest {
	return AccessRequest{
		ControllerID: "controller-1",
		SubjectTaxID: "12345678901",
		Action:       policygroup.ActionRead,
		Purpose:      "customer relationship management",
		DataSource:   "crm",
		DataProperty: "email",
	}
}

func TestAccessRequestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AccessRequest)
		valid  bool
	}{
		{"valid property request", func(r *AccessRequest) {}, true},
		{"valid record request", func(r *AccessRequest) {
			r.DataProperty = ""
			r.TableName = "orders"
			r.RecordID = "42"
		}, true},
		{"valid description request", func(r *AccessRequest) {
			r.DataProperty = ""
			r.DataDescription = "email"
		}, true},
		{"missing controller", func(r *AccessRequest) { r.ControllerID = " " }, false},
		{"missing subject", func(r *AccessRequest) { r.SubjectTaxID = "" }, false},
		{"unknown action", func(r *AccessRequest) { r.Action = "delete" }, false},
		{"purpose too short", func(r *AccessRequest) { r.Purpose = "because" }, false},
		{"missing data source", func(r *AccessRequest) { r.DataSource = "" }, false},
		{"no item identifier", func(r *AccessRequest) {
			r.DataProperty = ""
		}, false},
		{"table name without record id is not an item", func(r *AccessRequest) {
			r.DataProperty = ""
			r.TableName = "orders"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := req.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var de dErrors.DomainError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, dErrors.CodeValidation, de.Code)
		})
	}
}

func TestItemPropertyTakesPrecedence(t *testing.T) {
	req := validRequest()
	req.DataDescription = "something else"

	item, err := req.Item()
	require.NoError(t, err)
	assert.Equal(t, "email", item.Property)
	assert.False(t, item.IsEntity())
}

func TestItemDescriptionFallsBackToProperty(t *testing.T) {
	req := validRequest()
	req.DataProperty = ""
	req.DataDescription = "Email"

	item, err := req.Item()
	require.NoError(t, err)
	assert.Equal(t, "property:email", item.Key(), "description resolves as a property-name hint")
}
