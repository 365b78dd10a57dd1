// Package cli implements the terminal views over the notes API: list, show,
// new, edit and delete, plus login and register.
package cli

import (
	"errors"

	"notekeeper-be/pkg/client"

	"github.com/spf13/cobra"
)

// errReported means the command already printed its failure notice.
var errReported = errors.New("reported")

// IsReported lets main exit non-zero without printing the error twice.
func IsReported(err error) bool {
	return errors.Is(err, errReported)
}

type app struct {
	configPath string
	serverFlag string
	tokenFlag  string

	settings Settings
	client   *client.Client
}

func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "notes",
		Short:         "Manage your notes from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", DefaultConfigPath(), "Path to the config file")
	rootCmd.PersistentFlags().StringVar(&a.serverFlag, "server", "", "Server base URL (env "+envServer+")")
	rootCmd.PersistentFlags().StringVar(&a.tokenFlag, "token", "", "Access token (env "+envToken+")")

	rootCmd.AddCommand(
		newListCmd(a),
		newShowCmd(a),
		newNewCmd(a),
		newEditCmd(a),
		newDeleteCmd(a),
		newLoginCmd(a),
		newRegisterCmd(a),
	)
	return rootCmd
}

func (a *app) init() error {
	file, err := LoadSettings(a.configPath)
	if err != nil {
		return err
	}

	a.settings = Settings{
		Server: resolve(a.serverFlag, envServer, file.Server, defaultServer),
		Token:  resolve(a.tokenFlag, envToken, file.Token, ""),
	}
	a.client = client.New(a.settings.Server, client.WithToken(a.settings.Token))
	return nil
}
