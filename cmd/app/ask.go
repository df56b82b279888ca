package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"
)

// newAskCmd делает один запрос к провайдеру без HTTP-сервера и печатает JSON.
func newAskCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <prompt...>",
		Short: "Send a single prompt and print the insight as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts.envFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			result, err := a.service.Generate(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
}
