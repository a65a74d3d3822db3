// Schema migrations, embedded in the binary and applied with goose.
package migration

import (
	"database/sql"
	"embed"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/nterray/discourse/src/config"
	"github.com/nterray/discourse/src/logging"
	"github.com/nterray/discourse/src/website"
)

//go:embed migrations/*.sql
var migrations embed.FS

func init() {
	migrateCommand := &cobra.Command{
		Use:   "migrate",
		Short: "Apply any pending database migrations",
		Run: func(cmd *cobra.Command, args []string) {
			defer logging.LogPanics(nil)

			if err := Migrate(); err != nil {
				logging.Fatal().Err(err).Msg("Failed to run migrations")
			}
			logging.Info().Msg("Migrations are up to date")
		},
	}
	website.WebsiteCommand.AddCommand(migrateCommand)
}

func Migrate() error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	db, err := sql.Open("pgx", config.Config.Postgres.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	return goose.Up(db, "migrations")
}
