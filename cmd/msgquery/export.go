package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spachava753/msgquery/directory"
	"github.com/spachava753/msgquery/macos/contacts"
)

func newExportCmd() *cobra.Command {
	var (
		addressBook string
		vcardPath   string
		out         string
	)

	cmd := &cobra.Command{
		Use:   "export-contacts",
		Short: "Export the macOS AddressBook to a contacts map JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(out) == "" {
				out = viper.GetString("contacts.path")
			}

			var (
				d   *directory.Directory
				err error
			)
			if path := strings.TrimSpace(vcardPath); path != "" {
				d, err = contacts.ImportVCardFile(cmd.Context(), path)
			} else {
				d, err = contacts.Export(cmd.Context(), strings.TrimSpace(addressBook))
			}
			if err != nil {
				return err
			}
			if err := d.WriteFile(out); err != nil {
				return err
			}

			logger.Info("contacts exported", zap.Int("contacts", d.Len()), zap.String("path", out))
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully exported %d contacts to %s\n", d.Len(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&addressBook, "addressbook", "", "AddressBook-v22.abcddb path (default: first found under ~/Library/Application Support/AddressBook/Sources).")
	cmd.Flags().StringVar(&vcardPath, "vcard", "", "Read a vCard export instead of the AddressBook database.")
	cmd.Flags().StringVar(&out, "out", "", "Output path (default: contacts.path).")
	return cmd
}
