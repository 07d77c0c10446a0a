package database

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func TestDB(t *testing.T) {
	t.Parallel()

	t.Run("db name", func(t *testing.T) {
		t.Parallel()

		require.Equal(t, "gacharecord", DB_NAME)
		require.Equal(t, TESTING_SCHEMA, GetSchemaName(true))
		require.Equal(t, MAIN_SCHEMA, GetSchemaName(false))
	})

	if testing.Short() {
		t.Skip("skipping db tests in short mode.")
	}

	t.Run("NewPostgresDatabase", func(t *testing.T) {
		t.Parallel()

		db, err := NewPostgresDatabase(LOCAL_CONNECTION_STRING)
		require.NoError(t, err)
		require.NotNil(t, db)
	})

	t.Run("createDatabaseIfNotExists", func(t *testing.T) {
		t.Parallel()

		db, err := sqlx.Connect("postgres", LOCAL_CONNECTION_STRING)
		require.NoError(t, err)

		t.Run("already existing", func(t *testing.T) {
			t.Parallel()

			require.NoError(t, createDatabaseIfNotExists(db, "postgres"))
			require.NoError(t, createDatabaseIfNotExists(db, DB_NAME))
		})

		t.Run("new database", func(t *testing.T) {
			t.Parallel()

			const characters = "abcdefghijklmnopqrstuvwxyz"
			bytes := make([]byte, 10)
			for i := range bytes {
				bytes[i] = characters[rand.Intn(len(characters))]
			}

			dbName := fmt.Sprintf("zz_random_db_%s", string(bytes))

			require.NoError(t, createDatabaseIfNotExists(db, dbName))
			// Idempotent
			require.NoError(t, createDatabaseIfNotExists(db, dbName))

			_, err := db.Exec(fmt.Sprintf("DROP DATABASE %s", dbName))
			require.NoError(t, err)
		})
	})
}
