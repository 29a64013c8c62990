package cmd

import (
	"fmt"

	"github.com/fox-one/pkg/store/db"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// tables every store registers a migration for
var poolTables = []string{
	"reserves",
	"supplies",
	"variable_debts",
	"stable_debts",
	"yield_pools",
	"stakes",
	"booster_locks",
	"event_records",
	"wallet_balances",
	"wallet_allowances",
	"boosters",
}

var migrateCmd = &cobra.Command{
	Use:     "migrate",
	Aliases: []string{"setdb"},
	Short:   "create or update the reserve, position, stake, event, wallet and booster tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		database := provideDatabase()
		defer database.Close()

		// linking the stores registers their migrations
		_ = provideStores(database)

		if err := db.Migrate(database); err != nil {
			return fmt.Errorf("migrate boostlend tables: %w", err)
		}

		var missing []string
		for _, table := range poolTables {
			if !database.View().HasTable(table) {
				missing = append(missing, table)
			}
		}

		if len(missing) > 0 {
			return fmt.Errorf("tables missing after migration: %v", missing)
		}

		logrus.WithField("tables", len(poolTables)).Infoln("boostlend tables migrated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
