package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"gaspos.GO/config"
)

var (
	migrateDown  bool
	migrateSteps int
	migratePath  string
)

var migrateCmd = &cobra.Command{
	Use:   "db:migrate",
	Short: "Apply database migrations",
	Run: func(cmd *cobra.Command, args []string) {
		dsn := fmt.Sprintf("mysql://%s", config.MySQLDSN())
		m, err := migrate.New("file://"+migratePath, dsn)
		if err != nil {
			fmt.Printf("Migration setup failed: %v\n", err)
			os.Exit(1)
		}
		defer m.Close()

		switch {
		case migrateSteps != 0:
			err = m.Steps(migrateSteps)
		case migrateDown:
			err = m.Down()
		default:
			err = m.Up()
		}
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("Database already up to date.")
			return
		}
		if err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		version, dirty, _ := m.Version()
		fmt.Printf("Migrated to version %d (dirty=%v)\n", version, dirty)
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "Roll back all migrations")
	migrateCmd.Flags().IntVar(&migrateSteps, "steps", 0, "Apply N migrations (negative rolls back)")
	migrateCmd.Flags().StringVar(&migratePath, "path", "migrations", "Migrations directory")
	rootCmd.AddCommand(migrateCmd)
}
