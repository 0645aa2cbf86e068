package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnect_RejectsEmptyDSN(t *testing.T) {
	db, err := Connect(context.Background(), "", Pool{})
	assert.Nil(t, db)
	assert.EqualError(t, err, "postgres DSN is empty")
}
