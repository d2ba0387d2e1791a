package main

import (
	"github.com/spf13/cobra"

	"digital.vasic.lessons/pkg/env"
)

// --- Global Command Variables ---
var (
	configPath  string
	envFile     string
	logLevel    string
	contentDir  string
	concurrency int
	outputDir   string
	useSolution bool
	serverURL   string
	apiToken    string

	rootCmd = &cobra.Command{
		Use:   "learnfil",
		Short: "Interactive course server and lesson tooling",
		Long: `learnfil serves an interactive programming course: lessons,
a sandboxed exercise runner and per-learner progress.`,
		SilenceUsage: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe, // Defined in cmd_serve.go
	}

	runCmd = &cobra.Command{
		Use:   "run [lesson-id] [file]",
		Short: "Run a submission against a lesson's assertions",
		Long: `Run reads the submission from file, or from stdin when file
is omitted or "-", and prints the result as JSON.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runLesson, // Defined in cmd_run.go
	}

	verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Check that every reference solution passes its lesson",
		Args:  cobra.NoArgs,
		RunE:  runVerify, // Defined in cmd_verify.go
	}

	submitCmd = &cobra.Command{
		Use:   "submit [lesson-id] [file]",
		Short: "Submit code to a running learnfil server",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runSubmit, // Defined in cmd_submit.go
	}

	validateCmd = &cobra.Command{
		Use:   "validate [file...]",
		Short: "Validate bank files; the embedded seed when none are given",
		RunE:  runValidate, // Defined in cmd_validate.go
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	pf.StringVar(&envFile, "env-file", ".env", "optional .env file")
	pf.StringVar(&logLevel, "log-level", "", "override logging.level")
	pf.StringVar(&contentDir, "content", "", "override content.dir")

	runCmd.Flags().BoolVar(&useSolution, "solution", false, "run the lesson's reference solution")

	verifyCmd.Flags().IntVar(&concurrency, "concurrency", 4, "lessons verified in parallel")
	verifyCmd.Flags().StringVarP(&outputDir, "output", "o", "reports", "directory for the summary and history")

	submitCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "base URL of the server")
	submitCmd.Flags().StringVar(&apiToken, "token", "", "bearer token; defaults to "+env.Prefix+"TOKEN")

	rootCmd.AddCommand(serveCmd, runCmd, verifyCmd, submitCmd, validateCmd)
}
