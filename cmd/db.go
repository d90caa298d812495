package cmd

import (
	"github.com/nervio/neuromap/internal/config"
	"github.com/nervio/neuromap/internal/model"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "db commands",
}

func init() {
	dbCmd.AddCommand(Migrate())
	dbCmd.AddCommand(Check())
}

func Migrate() *cobra.Command {
	command := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the database",
		Run: func(cmd *cobra.Command, args []string) {
			db := config.GetDb(config.LoadConfig())
			err := model.Migrate(db)
			if err != nil {
				panic(err)
			}
		},
	}

	return command
}

func Check() *cobra.Command {
	command := &cobra.Command{
		Use:   "check",
		Short: "Verify the schema is fully provisioned",
		Run: func(cmd *cobra.Command, args []string) {
			db := config.GetDb(config.LoadConfig())
			if err := model.Check(db); err != nil {
				logrus.Fatalf("schema check failed: %v", err)
			}
			logrus.Info("schema ok")
		},
	}

	return command
}
