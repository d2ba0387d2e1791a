package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"digital.vasic.lessons/pkg/env"
	"digital.vasic.lessons/pkg/httpclient"
)

func runSubmit(cmd *cobra.Command, args []string) error {
	loader := env.NewLoader()
	if err := loader.LoadOptional(envFile); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	token := apiToken
	if token == "" {
		token = loader.Lookup("TOKEN")
	}

	code, err := readSubmission(cmd.InOrStdin(), args[1:])
	if err != nil {
		return err
	}

	c := httpclient.NewAPIClient(serverURL, httpclient.WithToken(token))
	fb, err := c.Run(cmd.Context(), args[0], code)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(fb); err != nil {
		return err
	}
	if !fb.AllPassed {
		return fmt.Errorf("lesson %s: %s", fb.LessonID, fb.Status)
	}
	return nil
}
