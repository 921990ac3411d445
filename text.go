package main

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"randpipe/picker"
)

func newNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize",
		Short: "Print the options read from stdin, one per line, trimmed and without blanks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readOptions(cmd.InOrStdin())
			if err != nil {
				return err
			}
			for _, o := range opts {
				fmt.Fprintln(cmd.OutOrStdout(), o)
			}
			return nil
		},
	}
}

func newPickCmd() *cobra.Command {
	var seed uint64
	var count int

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Pick one option at random from the lines read from stdin",
		Long: `Pick reads options from stdin, one per line, and prints one chosen at
random. Nothing is printed when there are no options. Picks are independent,
so --count may repeat an option.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readOptions(cmd.InOrStdin())
			if err != nil {
				return err
			}
			var src picker.Source
			if cmd.Flags().Changed("seed") {
				src = rand.New(rand.NewPCG(seed, seed))
			}
			for i := 0; i < count; i++ {
				if v, ok := picker.Select(opts, src); ok {
					fmt.Fprintln(cmd.OutOrStdout(), v)
				}
			}
			return nil
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for repeatable picks")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of picks")
	return cmd
}

func readOptions(r io.Reader) (picker.OptionList, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read options: %w", err)
	}
	return picker.Normalize(string(data)), nil
}
