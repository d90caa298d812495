package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/nervio/neuromap/internal/config"
	"github.com/nervio/neuromap/internal/scope"
	"github.com/nervio/neuromap/internal/service"
	"github.com/nervio/neuromap/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	neuronCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	neuronCmd.AddCommand(listNeuronsCmd())
	neuronCmd.AddCommand(createNeuronCmd())
	rootCmd.AddCommand(neuronCmd)
}

var neuronCmd = &cobra.Command{
	Use:   "neuron",
	Short: "neuron commands",
}

func cliGrant(userID string, personal bool) scope.Grant {
	if personal {
		return scope.CompanyAndPersonal(userID, time.Now().Add(time.Hour))
	}
	return scope.CompanyOnly(userID)
}

func listNeuronsCmd() *cobra.Command {
	var tenantID string
	var userID string
	var kind string
	var category string
	var personal bool

	command := &cobra.Command{
		Use:     "list",
		Short:   "list neurons",
		Example: "neuromap neuron list -t <tenant-id> -k person",
		Run: func(cmd *cobra.Command, args []string) {
			if tenantID == "" {
				logrus.Error("missing required flag: tenant-id")
				return
			}

			db := config.GetDb(config.LoadConfig())
			neurons := service.NewNeuronService(store.NewGormStore(db))

			pred := scope.Access(tenantID, cliGrant(userID, personal))
			list, err := neurons.List(context.Background(), pred, store.NeuronFilter{
				Kind:     kind,
				Category: category,
			})
			if err != nil {
				logrus.Error(err)
				return
			}

			for _, n := range list {
				fmt.Printf("%s\t%s\t%s\t%s\n", n.ID, n.Kind, n.Visibility, n.Name)
			}
		},
	}

	command.Flags().StringVarP(&tenantID, "tenant-id", "t", "", "tenant id (required)")
	command.Flags().StringVarP(&userID, "user-id", "u", "", "user id")
	command.Flags().StringVarP(&kind, "kind", "k", "", "filter by kind")
	command.Flags().StringVarP(&category, "category", "c", "", "filter by category")
	command.Flags().BoolVarP(&personal, "personal", "p", false, "include personal neurons")
	command.Flags().SortFlags = false

	return command
}

func createNeuronCmd() *cobra.Command {
	var tenantID string
	var userID string
	var kind string
	var name string
	var visibility string

	command := &cobra.Command{
		Use:     "create",
		Short:   "create a neuron",
		Example: "neuromap neuron create -t <tenant-id> -k person -n <name>",
		Run: func(cmd *cobra.Command, args []string) {
			if tenantID == "" || name == "" {
				logrus.Error("missing required flags: tenant-id, name")
				return
			}

			db := config.GetDb(config.LoadConfig())
			neurons := service.NewNeuronService(store.NewGormStore(db))

			grant := cliGrant(userID, visibility == "personal")
			n, err := neurons.Create(context.Background(), tenantID, grant, service.CreateNeuronRequest{
				Kind:       kind,
				Name:       name,
				Visibility: visibility,
			})
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("neuron created with id: %s", n.ID)
		},
	}

	command.Flags().StringVarP(&tenantID, "tenant-id", "t", "", "tenant id (required)")
	command.Flags().StringVarP(&userID, "user-id", "u", "", "user id")
	command.Flags().StringVarP(&kind, "kind", "k", "person", "neuron kind")
	command.Flags().StringVarP(&name, "name", "n", "", "neuron name (required)")
	command.Flags().StringVarP(&visibility, "visibility", "v", "company", "company or personal")
	command.Flags().SortFlags = false

	return command
}
