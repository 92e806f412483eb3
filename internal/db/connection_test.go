package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	assert.Equal(t, "postgres://u:p@db:5432/recall", DSN("postgres://u:p@db:5432/recall"))

	t.Setenv("PGHOST", "pg.internal")
	t.Setenv("PGPORT", "15432")
	t.Setenv("PGUSER", "")
	dsn := DSN("")
	assert.Contains(t, dsn, "host=pg.internal")
	assert.Contains(t, dsn, "port=15432")
	assert.Contains(t, dsn, "user=recall")
	assert.Contains(t, dsn, "sslmode=disable")
}
