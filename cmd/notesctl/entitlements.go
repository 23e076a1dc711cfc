package main

import (
	"context"
	"fmt"
	"notes-marketplace/internal/app"
	"notes-marketplace/internal/client"
	"notes-marketplace/internal/config"
	"notes-marketplace/internal/middleware"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

func accessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "access [user-id] [note-id]",
		Short: "Show whether a user can open a note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				access, err := a.Services.Access.ResolveAccess(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				if access.Unlocked() {
					fmt.Fprintf(cmd.OutOrStdout(), "unlocked %s\n", access.URL)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "locked")
				}
				return nil
			})
		},
	}
}

func grantCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grant [user-id] [note-id] [payment-id]",
		Short: "Record a purchase by hand",
		Long: `Record an entitlement for a payment the provider captured but the store never saved.

Look the payment up in the Razorpay dashboard first. Granting twice is harmless.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if _, err := a.Services.Listing.Get(ctx, args[1]); err != nil {
					return err
				}
				if err := a.Services.Purchase.RecordPurchase(ctx, args[0], args[1], args[2]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Granted %s to %s\n", args[1], args[0])
				return nil
			})
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := client.Migrate(a.DB); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Schema up to date")
				return nil
			})
		},
	}
}

func tokenCmd() *cobra.Command {
	var (
		email string
		role  string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token [user-id]",
		Short: "Sign a session token for local testing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("AUTH_JWT_SECRET is required")
			}

			now := time.Now()
			tok, err := middleware.NewAuthenticator(cfg.Auth.JWTSecret, "").Issue(&middleware.Claims{
				Email: email,
				Role:  role,
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   args[0],
					IssuedAt:  jwt.NewNumericDate(now),
					ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
				},
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().StringVar(&role, "role", "", `role claim ("admin" for the admin console)`)
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")

	return cmd
}
