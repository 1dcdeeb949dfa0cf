package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "slotimg",
		Short: "Manage the images shown in the guest app's fixed slots",
		Long: `slotimg keeps a small library of uploaded images and maps the guest app's
fixed image slots onto them. Slots without an override show their bundled
default image.

Configuration is read from the environment (and a .env file, if present).`,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newSlotsCmd())
	root.AddCommand(newResolveCmd())
	root.AddCommand(newResetCmd())
	return root
}
