package commands

import (
	"fmt"

	"github.com/cbodonnell/dirtydishes/client/network"
	"github.com/cbodonnell/dirtydishes/client/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// play: join a kitchen and run the terminal UI until the player quits.
func playCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Open the kitchen in the terminal (default)",
		RunE:  runPlay,
	}
}

func runPlay(cmd *cobra.Command, args []string) error {
	networkManager := network.NewNetworkManager(network.NewNetworkManagerOptions{ServerURL: serverURL})
	if err := networkManager.Start(cmd.Context(), sessionID); err != nil {
		return err
	}
	defer networkManager.Stop()

	model := tui.NewModel(tui.NewModelOptions{
		Sender:    networkManager,
		Updates:   networkManager.Updates(),
		Errs:      networkManager.ErrChan(),
		SessionID: networkManager.SessionID(),
	})
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run(); err != nil {
		return fmt.Errorf("failed to run kitchen UI: %v", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "rejoin with: dishes --session %s\n", networkManager.SessionID())
	return model.Err()
}
