package commands

import (
	"fmt"
	"time"

	"github.com/cbodonnell/dirtydishes/client/network"
	"github.com/cbodonnell/dirtydishes/client/tui"
	"github.com/spf13/cobra"
)

// state: print one snapshot of a kitchen and exit.
func stateCmd() *cobra.Command {
	var rackCapacity int
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Print the current kitchen and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sessionID == "" {
				return fmt.Errorf("--session required")
			}

			networkManager := network.NewNetworkManager(network.NewNetworkManagerOptions{ServerURL: serverURL})
			if err := networkManager.Start(cmd.Context(), sessionID); err != nil {
				return err
			}
			defer networkManager.Stop()

			select {
			case update := <-networkManager.Updates():
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderPlain(update.State, rackCapacity))
				return nil
			case err := <-networkManager.ErrChan():
				return err
			case <-time.After(timeout):
				return fmt.Errorf("timed out waiting for the kitchen")
			}
		},
	}
	cmd.Flags().IntVar(&rackCapacity, "rack-capacity", 10, "drying rack capacity to display")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "how long to wait for the kitchen")
	return cmd
}
