package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"digital.vasic.lessons/pkg/bank"
)

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	sources := args
	if len(sources) == 0 {
		sources = []string{bank.SeedSource}
	}

	invalid := 0
	for _, src := range sources {
		var errs []bank.ValidationError
		if src == bank.SeedSource {
			errs = bank.ValidateData("course.yaml", bank.SeedData())
		} else {
			errs = bank.ValidateFile(src)
		}

		if len(errs) == 0 {
			fmt.Fprintf(out, "%s: ok\n", src)
			continue
		}
		invalid++
		fmt.Fprintf(out, "%s: %d problem(s)\n", src, len(errs))
		for _, e := range errs {
			fmt.Fprintf(out, "  %s\n", e.Error())
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d bank files are invalid", invalid, len(sources))
	}
	return nil
}
