package database

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Ping())
	return db
}

func TestDBStatsCollector_Describe(t *testing.T) {
	c := NewDBStatsCollector(nil, "tokens")

	ch := make(chan *prometheus.Desc, 20)
	c.Describe(ch)
	close(ch)
	assert.Len(t, ch, 9)
}

func TestDBStatsCollector_Collect(t *testing.T) {
	db := openMemory(t)
	c := NewDBStatsCollector(db, "tokens")

	assert.Equal(t, 9, testutil.CollectAndCount(c))

	expected := `
# HELP newsdesk_db_max_open_connections Maximum number of open connections allowed
# TYPE newsdesk_db_max_open_connections gauge
newsdesk_db_max_open_connections{db="tokens"} 1
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "newsdesk_db_max_open_connections"))
}

func TestRegisterDBMetrics_Twice(t *testing.T) {
	reg := prometheus.NewRegistry()
	db := openMemory(t)

	require.NoError(t, RegisterDBMetrics(reg, db, "tokens"))
	require.NoError(t, RegisterDBMetrics(reg, db, "tokens"))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 9)
}
