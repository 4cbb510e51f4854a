package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pokefinder-cloud/internal/explorer"
)

var watchCmd = &cobra.Command{
	Use:   "watch <id>",
	Short: "Follow an entity's live energy channel",
	Long: `Select an entity and print every pushed energy sample until
interrupted. The channel does not reconnect: if the server drops it the
last sample stays on screen and the command keeps waiting for Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		logger := newLogger()

		entity, err := client.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		view := &explorer.TelemetryView{}
		channel, err := explorer.NewTelemetryChannel(client, func(sample explorer.Sample) {
			view.Apply(sample)
			fmt.Printf("\r\033[K%s", view.Render())
		}, logger)
		if err != nil {
			return err
		}

		controller, err := explorer.NewSelectionController(channel, nil, logger)
		if err != nil {
			return err
		}
		if err := controller.Select(entity, explorer.OriginListRow); err != nil {
			return err
		}
		defer controller.Clear()

		fmt.Printf("watching %s (Ctrl+C to stop)\n", entity.Name)
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
