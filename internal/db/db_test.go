package db

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDatabaseURL(t *testing.T) {
	tests := []struct {
		url         string
		wantDialect string
		wantDSN     string
	}{
		{"postgres://u:p@localhost:5432/app?sslmode=disable", "postgres", "postgres://u:p@localhost:5432/app?sslmode=disable"},
		{"postgresql://localhost/app", "postgres", "postgresql://localhost/app"},
		{"mysql://u:p@tcp(localhost:3306)/app", "mysql", "u:p@tcp(localhost:3306)/app"},
		{"sqlite://data/app.db", "sqlite", "data/app.db"},
		{"app.db", "sqlite", "app.db"},
		{"", "", ""},
		{"oracle://host/db", "oracle", "oracle://host/db"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			dialect, dsn := parseDatabaseURL(tt.url)
			assert.Equal(t, tt.wantDialect, dialect)
			assert.Equal(t, tt.wantDSN, dsn)
		})
	}
}

func TestOpenUnsupported(t *testing.T) {
	_, err := Open(context.Background(), "oracle://host/db")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database url")
}

func TestExecInTx(t *testing.T) {
	t.Run("commits", func(t *testing.T) {
		mockDB, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("ALTER TABLE `t` ADD COLUMN `c` integer NULL;")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX `t_c_idx` ON `t` (`c`);")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		client := &MySQLClient{db: mockDB}
		err = client.ExecDDL(context.Background(), []string{
			"ALTER TABLE `t` ADD COLUMN `c` integer NULL;",
			"CREATE INDEX `t_c_idx` ON `t` (`c`);",
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		mockDB, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer mockDB.Close()

		boom := errors.New("duplicate column")
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("ALTER TABLE `t` ADD COLUMN `c` integer NULL;")).
			WillReturnError(boom)
		mock.ExpectRollback()

		client := &MySQLClient{db: mockDB}
		err = client.ExecDDL(context.Background(), []string{
			"ALTER TABLE `t` ADD COLUMN `c` integer NULL;",
			"CREATE INDEX `t_c_idx` ON `t` (`c`);",
		})
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "statement 1")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMySQLTableColumns(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	rows := sqlmock.NewRows([]string{"column_name", "column_type", "nullable", "column_default"}).
		AddRow("id", "int", false, nil).
		AddRow("name", "varchar(20)", true, "anon")
	mock.ExpectQuery("FROM information_schema.columns").WithArgs("app_person").WillReturnRows(rows)

	columns, err := (&MySQLClient{db: mockDB}).TableColumns(context.Background(), "app_person")
	require.NoError(t, err)
	require.Len(t, columns, 2)
	assert.Equal(t, Column{Name: "id", Type: "int"}, columns[0])
	assert.True(t, columns[1].Nullable)
	require.NotNil(t, columns[1].Default)
	assert.Equal(t, "anon", *columns[1].Default)
}

func TestSQLiteClient(t *testing.T) {
	ctx := context.Background()
	client, err := Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer client.Close(ctx)

	assert.Equal(t, "sqlite", client.Dialect())

	err = client.ExecDDL(ctx, []string{
		`CREATE TABLE "app_person" (
    "id" integer NOT NULL PRIMARY KEY AUTOINCREMENT,
    "name" varchar(20) NOT NULL
);`,
		`ALTER TABLE "app_person" ADD COLUMN "age" integer NULL DEFAULT 3;`,
	})
	require.NoError(t, err)

	columns, err := client.TableColumns(ctx, "app_person")
	require.NoError(t, err)
	require.Len(t, columns, 3)
	assert.Equal(t, "id", columns[0].Name)
	assert.False(t, columns[1].Nullable)
	assert.Equal(t, "age", columns[2].Name)
	assert.True(t, columns[2].Nullable)
	require.NotNil(t, columns[2].Default)
	assert.Equal(t, "3", *columns[2].Default)

	t.Run("failed statement rolls back", func(t *testing.T) {
		err := client.ExecDDL(ctx, []string{
			`ALTER TABLE "app_person" ADD COLUMN "email" text NULL;`,
			`ALTER TABLE "missing" ADD COLUMN "x" integer NULL;`,
		})
		require.Error(t, err)

		columns, err := client.TableColumns(ctx, "app_person")
		require.NoError(t, err)
		assert.Len(t, columns, 3)
	})
}
