package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslateIngestErr_DuplicateKeyBecomesAlreadyIngested(t *testing.T) {
	// A concurrent ingest that loses the race on the (round_id, video_id)
	// unique index must surface the same sentinel as the count fast path.
	err := translateIngestErr(gorm.ErrDuplicatedKey)
	assert.ErrorIs(t, err, ErrAlreadyIngested)

	wrapped := fmt.Errorf("create batch: %w", gorm.ErrDuplicatedKey)
	assert.ErrorIs(t, translateIngestErr(wrapped), ErrAlreadyIngested)
}

func TestTranslateIngestErr_PassesOtherErrorsThrough(t *testing.T) {
	cause := errors.New("connection reset")
	assert.Equal(t, cause, translateIngestErr(cause))
	assert.NoError(t, translateIngestErr(nil))
}
