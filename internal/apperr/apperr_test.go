package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMatchesByCode(t *testing.T) {
	err := NotFound("proposal")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "proposal not found", err.Message)
	assert.Equal(t, "NotFound: proposal not found", err.Error())
}

func TestIsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("accept: %w", ErrAlreadyProcessed)

	assert.ErrorIs(t, wrapped, ErrAlreadyProcessed)

	e, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, e.Status)
	assert.Equal(t, KindStateConflict, e.Kind)
}

func TestConstructorsDoNotMutateSentinels(t *testing.T) {
	_ = Forbidden("only the client can accept")
	_ = Validation("title is required")

	assert.Equal(t, "you are not allowed to do this", ErrForbidden.Message)
	assert.Equal(t, "invalid input", ErrValidation.Message)
}

func TestStatusTable(t *testing.T) {
	cases := map[*Error]int{
		ErrDuplicateProposal:     http.StatusBadRequest,
		ErrProjectNotOpen:        http.StatusBadRequest,
		ErrSelfProposal:          http.StatusBadRequest,
		ErrForbidden:             http.StatusForbidden,
		ErrNotFound:              http.StatusNotFound,
		ErrAlreadyProcessed:      http.StatusConflict,
		ErrContractAlreadyExists: http.StatusConflict,
	}
	for e, status := range cases {
		assert.Equal(t, status, e.Status, e.Code)
	}
}

func TestAsRejectsPlainErrors(t *testing.T) {
	_, ok := As(errors.New("boom"))
	assert.False(t, ok)
}
