// Package main is the entry point for the labelzoom CLI, a thin command-line
// front end for the LabelZoom conversion API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	labelzoom "github.com/labelzoom/labelzoom-go"
	"github.com/labelzoom/labelzoom-go/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// app carries the configuration shared by all subcommands.
type app struct {
	v      *viper.Viper
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "labelzoom",
		Short: "Convert PDF documents and images to ZPL labels",
		Long: `labelzoom sends PDF documents and raster images to the LabelZoom API and
writes the resulting ZPL (Zebra Programming Language) label data.

The API token is taken, in order of precedence, from --token, the
LABELZOOM_TOKEN environment variable, the config file, or the file
labelzoom-token in the secrets directory. Every flag can also be set
through a LABELZOOM_ environment variable (LABELZOOM_SECRETS_DIR for
--secrets-dir).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./labelzoom.yaml or ~/.config/labelzoom/labelzoom.yaml)")
	flags.String("token", "", "LabelZoom API token")
	flags.String("endpoint", labelzoom.DefaultEndpoint, "LabelZoom API base URL")
	flags.Duration("timeout", 0, "limit on waiting for the server (0 means no limit; streaming only waits for headers)")
	flags.String("secrets-dir", ".secrets", "directory holding the labelzoom-token file")
	flags.BoolP("verbose", "v", false, "log requests to stderr")

	for _, name := range []string{"token", "endpoint", "timeout", "secrets-dir", "verbose"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}

	cmd.AddCommand(newConvertCmd(a), newStreamCmd(a), newVersionCmd())

	return cmd
}

func (a *app) initConfig(cmd *cobra.Command) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
	} else {
		a.v.SetConfigName("labelzoom")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			a.v.AddConfigPath(filepath.Join(home, ".config", "labelzoom"))
		}
	}

	a.v.SetEnvPrefix("LABELZOOM")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	level := slog.LevelInfo
	configErr := a.v.ReadInConfig()
	if a.v.GetBool("verbose") {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	if configErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(configErr, &notFound) {
			return fmt.Errorf("reading config: %w", configErr)
		}
	} else {
		a.logger.Debug("using config file", "path", a.v.ConfigFileUsed())
	}

	return nil
}

// token resolves the API token, falling back to the secrets directory.
func (a *app) token() (string, error) {
	if token := a.v.GetString("token"); token != "" {
		return token, nil
	}

	token, err := secrets.Lookup(a.v.GetString("secrets-dir"), secrets.TokenKey)
	if err != nil {
		return "", err
	}
	if token != "" {
		a.logger.Debug("loaded token from secrets directory", "dir", a.v.GetString("secrets-dir"))
	}
	return token, nil
}

func (a *app) newClient() (*labelzoom.Client, error) {
	token, err := a.token()
	if err != nil {
		return nil, err
	}

	opts := []labelzoom.Option{
		labelzoom.WithEndpoint(a.v.GetString("endpoint")),
		labelzoom.WithLogger(a.logger),
		labelzoom.WithUserAgent("labelzoom-cli/" + version),
	}
	if timeout := a.v.GetDuration("timeout"); timeout != 0 {
		opts = append(opts, labelzoom.WithTimeout(timeout))
	}

	return labelzoom.New(token, opts...)
}

// describeError prefixes err with a hint about which kind of failure it is.
func describeError(err error) string {
	switch {
	case labelzoom.IsInvalidArgument(err):
		return "invalid input: " + err.Error()
	case labelzoom.IsFileError(err):
		return "cannot read input: " + err.Error()
	case labelzoom.IsConversionError(err):
		var ce *labelzoom.ConversionError
		if errors.As(err, &ce) && ce.Temporary() {
			return err.Error() + " (may succeed if retried)"
		}
		return err.Error()
	default:
		return err.Error()
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "labelzoom:", describeError(err))
		os.Exit(1)
	}
}
