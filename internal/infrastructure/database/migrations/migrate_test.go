package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/credit_db?sslmode=disable", DriverURL("postgres://u:p@db:5432/credit_db?sslmode=disable"))
	assert.Equal(t, "pgx5://u:p@db/credit_db", DriverURL("postgresql://u:p@db/credit_db"))
	assert.Equal(t, "pgx5://already", DriverURL("pgx5://already"))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(Source(), ".")
	require.NoError(t, err)

	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	assert.Equal(t, 2, ups)
	assert.Equal(t, ups, downs)
}

func TestSchemaCarriesConstraintNames(t *testing.T) {
	customers, err := fs.ReadFile(Source(), "000001_create_customers.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(customers), "customers_cpf_key")
	assert.Contains(t, string(customers), "customers_email_key")

	credits, err := fs.ReadFile(Source(), "000002_create_credits.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(credits), "ON DELETE CASCADE")
}
