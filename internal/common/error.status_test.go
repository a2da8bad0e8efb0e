package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestConvertMongoError(t *testing.T) {
	assert.Nil(t, ConvertMongoError(nil))
	assert.ErrorIs(t, ConvertMongoError(mongo.ErrNoDocuments), ErrNotFound)
	assert.ErrorIs(t, ConvertMongoError(fmt.Errorf("find: %w", mongo.ErrNoDocuments)), ErrNotFound)

	// Lỗi đã chuẩn hóa giữ nguyên
	assert.Same(t, ErrInvalidDate, ConvertMongoError(ErrInvalidDate))

	raw := errors.New("boom")
	converted := ConvertMongoError(raw)
	assert.Equal(t, StatusInternalServerError, StatusOf(converted))
	assert.ErrorIs(t, converted, raw)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, StatusUnauthorized, StatusOf(ErrGSCNotConnected))
	assert.Equal(t, StatusBadRequest, StatusOf(fmt.Errorf("parse: %w", ErrInvalidDate)))
	assert.Equal(t, StatusInternalServerError, StatusOf(errors.New("x")))
}

func TestWithDetails(t *testing.T) {
	err := WithDetails(ErrInvalidInput, "startDate")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "startDate", err.(*Error).Details)
	assert.Equal(t, StatusBadRequest, StatusOf(err))
}
