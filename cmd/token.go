package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	infrajwt "github.com/jonesrussell/north-cloud/spotlight/infrastructure/jwt"
	"github.com/jonesrussell/north-cloud/spotlight/internal/bootstrap"
)

var errNoJWTSecret = errors.New("auth.jwt_secret is not configured")

func newTokenCommand() *cobra.Command {
	var (
		userID int64
		roles  []string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token for local use",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := bootstrap.LoadConfig(cfgFile)
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return errNoJWTSecret
			}

			now := time.Now()
			token, err := infrajwt.Sign(cfg.Auth.JWTSecret, &infrajwt.Claims{
				Sub:   strconv.FormatInt(userID, 10),
				Roles: roles,
				RegisteredClaims: jwt.RegisteredClaims{
					IssuedAt:  jwt.NewNumericDate(now),
					ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
				},
			})
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 1, "user ID")
	cmd.Flags().StringSliceVar(&roles, "role", []string{"administrator"}, "roles to grant")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
