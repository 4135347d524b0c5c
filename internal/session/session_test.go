package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hnrobert/remlogon/internal/logon"
)

func TestStartRejectsNilCredential(t *testing.T) {
	_, err := Start(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestStartRejectsEmptyUsername(t *testing.T) {
	_, err := Start(context.Background(), &logon.Serialized{Username: "  "})
	assert.ErrorIs(t, err, ErrNoCredential)
}
