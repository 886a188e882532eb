package commands

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sentinel-surveillance/core/pkg/apperr"
)

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, 0, exitCodeFor(nil))
	assert.Equal(t, 2, exitCodeFor(apperr.NewValidation("bad input")))
	assert.Equal(t, 4, exitCodeFor(apperr.NewCancellation("cancelled")))
	assert.Equal(t, 3, exitCodeFor(apperr.NewIntegrity("store corrupt")))
	assert.Equal(t, 3, exitCodeFor(errors.New("plain io error")))
}
