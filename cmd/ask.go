package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/briefing"
)

var flagMode string

var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Stream an answer from the configured AI backend",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.log.Sync()

		input := strings.Join(args, " ")
		out := cmd.OutOrStdout()
		write := deltaPrinter(out)
		if flagMode != "" {
			_, err = rt.orch.QuickAssist(cmd.Context(), briefing.AssistMode(flagMode), input, write)
		} else {
			_, err = rt.orch.Ask(cmd.Context(), input, write)
		}
		if err != nil {
			return fmt.Errorf("ask: %w", err)
		}
		fmt.Fprintln(out)
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&flagMode, "mode", "", "quick assist mode: draft, ideas or explain")
}

// deltaPrinter turns accumulated-text callbacks into incremental writes.
func deltaPrinter(w io.Writer) func(string) {
	printed := 0
	return func(acc string) {
		if len(acc) > printed {
			io.WriteString(w, acc[printed:])
			printed = len(acc)
		}
	}
}
