package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	appctx "docserial/internal/core/context"
	"docserial/internal/infrastructure/auth"
)

func newTokenCmd(a *app) *cobra.Command {
	var (
		subject string
		perms   []string
		admin   bool
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the HTTP API",
		Long: `Token signs an HS256 JWT with $ADMIN_JWT_SECRET, the same secret the
server uses to guard /api/v1.

Permissions: ids:allocate, prefix:read, prefix:write.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.AdminJWTSecret == "" {
				return errors.New("ADMIN_JWT_SECRET is not set")
			}
			jwtCfg := auth.DefaultJWTConfig(a.cfg.AdminJWTSecret)
			jwtCfg.TokenTTL = ttl

			svc, err := auth.NewJWTService(jwtCfg)
			if err != nil {
				return err
			}
			token, expiresAt, err := svc.Issue(subject, perms, admin)
			if err != nil {
				return err
			}
			a.log.Infow("token issued", "subject", subject, "expires_at", expiresAt, "admin", admin)
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "operator", "Token subject")
	cmd.Flags().StringSliceVar(&perms, "perm", []string{appctx.PermPrefixRead}, "Granted permission, e.g. ids:allocate (repeatable)")
	cmd.Flags().BoolVar(&admin, "admin", false, "Grant every permission")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	return cmd
}
