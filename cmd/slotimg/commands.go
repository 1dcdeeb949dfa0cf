package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/service"
	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/slots"
	"github.com/virgcreat-ui/GEL-Luxury-Demo-sub001/internal/web"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if addr == "" {
				addr = a.cfg.ListenAddr
			}
			server := web.NewServer(a.assets, a.assignments, a.resolver, a.metrics, web.Options{
				AdminCode:   a.cfg.AdminCode,
				StaticDir:   a.cfg.StaticPath,
				MediaPrefix: a.cfg.MediaURLPrefix,
			}, a.logger)

			if err := server.ListenAndServe(cmd.Context(), addr); err != nil {
				a.logger.Error("server error", "error", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides LISTEN_ADDR)")
	return cmd
}

func newSlotsCmd() *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List the image slots and their default images",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list := slots.All()
			if group != "" {
				list = nil
				for _, g := range slots.Groups() {
					if string(g) == group {
						list = slots.InGroup(g)
					}
				}
				if list == nil {
					return fmt.Errorf("unknown group %q", group)
				}
			}

			tw := newTable(cmd.OutOrStdout())
			_, _ = fmt.Fprintln(tw, "SLOT\tGROUP\tLABEL\tDEFAULT")
			for _, s := range list {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, s.Group, s.Label, s.Default)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "only list slots in this group")
	return cmd
}

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [slot...]",
		Short: "Print the image URL each slot currently shows",
		Long:  "Print the effective image URL of the given slots, or of every slot when none are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			ids := args
			if len(ids) == 0 {
				for _, s := range slots.All() {
					ids = append(ids, s.ID)
				}
			}
			urls := a.resolver.ResolveMany(cmd.Context(), ids)

			tw := newTable(cmd.OutOrStdout())
			for _, id := range ids {
				url := urls[id]
				if url == "" {
					url = "(unknown slot)"
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\n", id, url)
			}
			return tw.Flush()
		},
	}
}

var errResetNotConfirmed = errors.New("refusing to reset without --yes")

func newResetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every uploaded image and return all slots to their defaults",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errResetNotConfirmed
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := service.Reset(cmd.Context(), a.assets, a.assignments); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "library cleared, all slots use their defaults")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}
