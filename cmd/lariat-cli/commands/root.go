package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"lariat/lib/configutil"
	"lariat/lib/fmserver"
	"lariat/lib/telemetry"

	"github.com/spf13/cobra"
)

type serverConfig struct {
	Url      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

var (
	flagUrl      string
	flagUsername string
	flagPassword string
	flagVerbose  bool

	client *fmserver.Client
)

var rootCmd = &cobra.Command{
	Use:   "lariat-cli",
	Short: "lariat-cli inspects and exports data from a FileMaker server over XML publishing.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(flagVerbose)

		config, err := configutil.ReadRecursively[serverConfig]("lariat.json5")
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if flagUrl != "" {
			config.Url = flagUrl
		}
		if flagUsername != "" {
			config.Username = flagUsername
		}
		if flagPassword != "" {
			config.Password = flagPassword
		}
		if config.Url == "" {
			return fmt.Errorf("no server url: provide --url or a lariat.json5 config")
		}

		client, err = fmserver.NewClient(fmserver.ClientOptions{
			Url:      config.Url,
			Username: config.Username,
			Password: config.Password,
		})
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagUrl, "url", "", "url of the fmresultset endpoint")
	rootCmd.PersistentFlags().StringVar(&flagUsername, "username", "", "web publishing account name")
	rootCmd.PersistentFlags().StringVar(&flagPassword, "password", "", "web publishing account password")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
