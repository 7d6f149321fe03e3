package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ytdl-ui/ytdl/internal/service"
)

func (c *cli) formatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats <url>",
		Short: "list the formats the url offers, best video first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := service.ListFormats(cmd.Context(), c.config.Ytdlp.Binary, args[0])
			if err != nil {
				return err
			}
			for _, f := range formats {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), f.Line)
			}
			return nil
		},
	}
}
