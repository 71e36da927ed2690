package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	envPrefix = "MSGQUERY"
)

var logger = zap.NewNop()

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "msgquery",
		Short:        "Query iMessage and Gmail transcripts by contact",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLoggerFromConfig(loggerConfigFromViper())
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	cobra.OnInitialize(initConfig)

	flags := cmd.PersistentFlags()
	flags.String("config", "", "Config file path (optional).")
	flags.String("contacts", "", "Contacts map JSON path (default: contacts_map.json beside the executable).")
	flags.String("db", "", "Messages chat.db path (default: $SQLITE_DB_PATH or ~/Library/Messages/chat.db).")
	flags.String("region", "", "Default region for numbers without a country code.")
	flags.String("log-level", "", "Log level: debug, info, warn, error.")
	flags.String("log-format", "", "Log format: json or console.")
	flags.String("log-file", "", "Also write logs to this file.")
	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("contacts.path", flags.Lookup("contacts"))
	_ = viper.BindPFlag("messages.db_path", flags.Lookup("db"))
	_ = viper.BindPFlag("phone.default_region", flags.Lookup("region"))
	_ = viper.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", flags.Lookup("log-format"))
	_ = viper.BindPFlag("logging.file", flags.Lookup("log-file"))

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newQueryCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newGmailPasswordCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func initConfig() {
	initViperDefaults()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	cfgFile := strings.TrimSpace(viper.GetString("config"))
	if cfgFile == "" {
		return
	}

	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
	}
}
