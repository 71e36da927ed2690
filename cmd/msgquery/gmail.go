package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spachava753/msgquery/gmail"
)

func newGmailPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gmail-password",
		Short: "Save a Gmail app password to the system keyring (read from stdin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			address := strings.TrimSpace(viper.GetString("gmail.address"))
			if address == "" {
				return errors.New("gmail address is required (--address or MSGQUERY_GMAIL_ADDRESS)")
			}

			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && strings.TrimSpace(line) == "" {
				return fmt.Errorf("reading app password: %w", err)
			}
			if err := gmail.SavePassword(address, line); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved app password for %s\n", address)
			return nil
		},
	}

	cmd.Flags().String("address", "", "Gmail address.")
	_ = viper.BindPFlag("gmail.address", cmd.Flags().Lookup("address"))
	return cmd
}
