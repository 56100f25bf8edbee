package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lexis/internal/lsp"
)

var lspDisable []string

func init() {
	lspCmd.Flags().StringSliceVar(&lspDisable, "disable", nil, "server features to switch off (e.g. rename,formatting)")
}

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the lexis language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func runLSP(cmd *cobra.Command, _ []string) error {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	maxProblems, err := cmd.Root().PersistentFlags().GetInt("max-problems")
	if err != nil {
		return fmt.Errorf("failed to get max-problems flag: %w", err)
	}

	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		MaxProblems: maxProblems,
		Disabled:    lspDisable,
		LogOutput:   cmd.ErrOrStderr(),
	})
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) || errors.Is(err, context.Canceled) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
