package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/perchance-cli/internal/output"
)

func structuredOutputRequested() bool {
	return output.IsStructured(GetOutputFormat())
}

func printStructured(cmd *cobra.Command, data any) error {
	ctx := commandContext(cmd)
	printer := output.NewPrinter(stdoutFromContext(ctx), GetOutputFormat())
	return printer.Print(ctx, data)
}

func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
