package commands

import (
	"fmt"
	"os"

	"github.com/cbodonnell/dirtydishes/client/network"
	"github.com/cbodonnell/dirtydishes/pkg/log"
	"github.com/spf13/cobra"
)

var (
	serverURL string
	sessionID string
	logFile   string
	logLevel  string

	logOutput *os.File
)

func Execute() error {
	root := &cobra.Command{
		Use:   "dishes",
		Short: "Wash dishes in a shared kitchen from the terminal",
		// the terminal belongs to the kitchen, so logs go to a file
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			parsedLogLevel, err := log.ParseLogLevel(logLevel)
			if err != nil {
				return err
			}
			f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("failed to open log file: %v", err)
			}
			logOutput = f
			log.SetDefaultLogger(log.New(f, "", log.DefaultLoggerFlag, parsedLogLevel))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if logOutput != nil {
				return logOutput.Close()
			}
			return nil
		},
		RunE:         runPlay,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&serverURL, "server", network.DefaultServerURL, "kitchen server WebSocket URL")
	root.PersistentFlags().StringVarP(&sessionID, "session", "s", "", "session to join (default a new kitchen)")
	root.PersistentFlags().StringVar(&logFile, "log-file", "dishes-client.log", "file to write logs to")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level")

	root.AddCommand(playCmd(), stateCmd(), versionCmd())
	return root.Execute()
}
