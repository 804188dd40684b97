// Package clips implements the clips command that lists the built-in clip names
// packs may route and autoload.
package clips

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tphakala/modaudio/internal/audiopack"
)

// Command creates the clips command
func Command() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "clips",
		Short: "List built-in clip names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			filter = strings.ToLower(filter)
			for _, name := range audiopack.KnownClips() {
				if filter != "" && !strings.Contains(strings.ToLower(name), filter) {
					continue
				}
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Only list names containing this text")

	return cmd
}
