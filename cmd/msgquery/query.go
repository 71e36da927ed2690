package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/spachava753/msgquery/transcript"
)

func newQueryCmd() *cobra.Command {
	var (
		start string
		end   string
		email bool
	)

	cmd := &cobra.Command{
		Use:   "query <contact>",
		Short: "Print the transcript with one contact as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeStores, err := newService(logger)
			if err != nil {
				return err
			}
			defer closeStores()

			q := transcript.Query{Contact: args[0], StartDate: start, EndDate: end}
			var out transcript.Transcript
			if email {
				out, err = svc.EmailTranscript(cmd.Context(), q)
			} else {
				out, err = svc.ChatTranscript(cmd.Context(), q)
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "First day to include (YYYY-MM-DD).")
	cmd.Flags().StringVar(&end, "end", "", "Last day to include (YYYY-MM-DD).")
	cmd.Flags().BoolVar(&email, "email", false, "Query Gmail instead of Messages.")
	return cmd
}
