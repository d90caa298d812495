package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nervio/neuromap/internal/config"
	"github.com/nervio/neuromap/internal/scope"
	"github.com/nervio/neuromap/internal/service"
	"github.com/nervio/neuromap/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statsCmd())
}

func statsCmd() *cobra.Command {
	var tenantID string
	var userID string
	var personal bool

	command := &cobra.Command{
		Use:     "stats",
		Short:   "print the tenant dashboard",
		Example: "neuromap stats -t <tenant-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if tenantID == "" {
				logrus.Error("missing required flag: tenant-id")
				return
			}

			db := config.GetDb(config.LoadConfig())
			stats := service.NewStatsService(store.NewGormStore(db), nil)

			pred := scope.Access(tenantID, cliGrant(userID, personal))
			dashboard, err := stats.DashboardStats(context.Background(), pred)
			if err != nil {
				logrus.Error(err)
				return
			}

			out, err := json.MarshalIndent(dashboard, "", "  ")
			if err != nil {
				logrus.Error(err)
				return
			}

			fmt.Println(string(out))
		},
	}

	command.Flags().StringVarP(&tenantID, "tenant-id", "t", "", "tenant id (required)")
	command.Flags().StringVarP(&userID, "user-id", "u", "", "user id")
	command.Flags().BoolVarP(&personal, "personal", "p", false, "include personal rows")
	command.Flags().SortFlags = false

	return command
}
