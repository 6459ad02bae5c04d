package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/and161185/fortune-gate/internal/server/grpc/gatev1"
)

// call dials, runs fn under the command deadline, and prints the result as JSON.
func (a *app) call(cmd *cobra.Command, authed bool, fn func(context.Context, gatev1.AccessGateClient) (any, error)) error {
	var bearer string
	if authed {
		tok, err := a.bearer()
		if err != nil {
			return err
		}
		bearer = tok
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
	defer cancel()

	cc, closeFn, err := a.dial(ctx, bearer)
	if err != nil {
		return fmt.Errorf("dial %s: %w", a.addr, err)
	}
	defer closeFn()

	resp, err := fn(ctx, gatev1.NewAccessGateClient(cc))
	if err != nil {
		return err
	}
	return a.printJSON(resp)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fg %s (%s)\n", version, buildDate)
		},
	}
}

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login TOKEN",
		Short: "Save a bearer token issued by the account service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := args[0]
			exp, err := tokenExpiry(token)
			if err != nil {
				return err
			}
			if !exp.After(time.Now()) {
				return fmt.Errorf("token expired at %s", exp.Format(time.RFC3339))
			}
			if err := saveToken(token, exp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "token saved, valid until %s\n", exp.Format(time.RFC3339))
			return nil
		},
	}
}

func newAccessCmd(a *app) *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "access",
		Short: "Check whether the current identity may use the service today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.call(cmd, true, func(ctx context.Context, cl gatev1.AccessGateClient) (any, error) {
				if full {
					return cl.CheckFullAccess(ctx, &gatev1.CheckAccessRequest{})
				}
				return cl.CheckAccess(ctx, &gatev1.CheckAccessRequest{})
			})
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "include the daily quota")
	return cmd
}

func newQuotaCmd(a *app) *cobra.Command {
	var org string
	cmd := &cobra.Command{
		Use:   "quota",
		Short: "Check today's quota for the current identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.call(cmd, true, func(ctx context.Context, cl gatev1.AccessGateClient) (any, error) {
				return cl.CheckQuota(ctx, &gatev1.CheckQuotaRequest{Organization: org})
			})
		},
	}
	cmd.Flags().StringVar(&org, "org", "", "organization of the identity")
	return cmd
}

func newUsageCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "use",
		Short: "Consume today's allotment for the current identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.call(cmd, true, func(ctx context.Context, cl gatev1.AccessGateClient) (any, error) {
				return cl.RecordUsage(ctx, &gatev1.RecordUsageRequest{})
			})
		},
	}
}

func newCooldownCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cooldown",
		Short: "Inspect or place re-registration cooldowns",
	}

	check := &cobra.Command{
		Use:   "check EMAIL",
		Short: "Report whether EMAIL may register now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(cmd, false, func(ctx context.Context, cl gatev1.AccessGateClient) (any, error) {
				return cl.CheckDeletionCooldown(ctx, &gatev1.CooldownRequest{Email: args[0]})
			})
		},
	}

	var ua, ip string
	place := &cobra.Command{
		Use:   "place EMAIL",
		Short: "Start the cooldown for a deleted account's EMAIL (administrators)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(cmd, true, func(ctx context.Context, cl gatev1.AccessGateClient) (any, error) {
				return cl.PlaceDeletionCooldown(ctx, &gatev1.PlaceCooldownRequest{Email: args[0], UserAgent: ua, IP: ip})
			})
		},
	}
	place.Flags().StringVar(&ua, "user-agent", "", "client user agent of the deletion request")
	place.Flags().StringVar(&ip, "ip", "", "client address of the deletion request")

	cmd.AddCommand(check, place)
	return cmd
}

func newWindowsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "windows",
		Aliases: []string{"window"},
		Short:   "Manage organization enrollment windows (administrators)",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List configured windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.call(cmd, true, func(ctx context.Context, cl gatev1.AccessGateClient) (any, error) {
				return cl.ListWindows(ctx, &gatev1.ListWindowsRequest{})
			})
		},
	}

	put := &cobra.Command{
		Use:   "put ORG START END",
		Short: "Create or replace ORG's window; dates are YYYY-MM-DD, inclusive",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(cmd, true, func(ctx context.Context, cl gatev1.AccessGateClient) (any, error) {
				return cl.PutWindow(ctx, &gatev1.PutWindowRequest{Window: &gatev1.Window{
					Organization: args[0], StartDate: args[1], EndDate: args[2],
				}})
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete ORG",
		Short: "Remove ORG's window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.call(cmd, true, func(ctx context.Context, cl gatev1.AccessGateClient) (any, error) {
				return cl.DeleteWindow(ctx, &gatev1.DeleteWindowRequest{Organization: args[0]})
			})
		},
	}

	cmd.AddCommand(list, put, del)
	return cmd
}
