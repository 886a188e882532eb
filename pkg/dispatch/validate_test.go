package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sentinel-surveillance/core/pkg/apperr"
)

// Scenario 5: Distributor validation.
func TestValidate_MissingType(t *testing.T) {
	err := Validate(Alert{Message: "something happened"})
	assert.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}

func TestValidate_MissingMessage(t *testing.T) {
	err := Validate(Alert{Type: "outbreak_alert"})
	assert.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}

func TestValidate_Valid(t *testing.T) {
	err := Validate(Alert{Type: "outbreak_alert", Message: "cluster detected"})
	assert.NoError(t, err)
}

func TestValidate_RejectsReservedMetadataKey(t *testing.T) {
	a := Alert{
		Type:     "outbreak_alert",
		Message:  "cluster detected",
		Metadata: map[string]interface{}{"subject_name": "Jane Doe"},
	}
	err := Validate(a)
	assert.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}

func TestValidate_AllowsNonReservedMetadataKey(t *testing.T) {
	a := Alert{
		Type:     "outbreak_alert",
		Message:  "cluster detected",
		Metadata: map[string]interface{}{"case_count": 12},
	}
	assert.NoError(t, Validate(a))
}
