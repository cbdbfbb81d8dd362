package main

import (
	"fmt"
	"time"

	"github.com/jcooky/go-din"
	"github.com/spf13/cobra"

	"github.com/habiliai/inbox/auth"
	"github.com/habiliai/inbox/errors"
	"github.com/habiliai/inbox/user"
)

func newTokenCmd() *cobra.Command {
	flags := &struct {
		ttl time.Duration
	}{}

	cmd := &cobra.Command{
		Use:   "token <username>",
		Short: "Print a bearer token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := din.NewContainer(cmd.Context(), din.EnvProd)
			defer c.Close()

			users, err := din.GetT[user.Manager](c)
			if err != nil {
				return err
			}
			issuer, err := din.GetT[*auth.Issuer](c)
			if err != nil {
				return err
			}

			u, err := users.GetUserByUsername(c, args[0])
			if err != nil {
				return err
			}
			if !u.IsActive {
				return errors.Errorf("user %s is inactive", u.Username)
			}

			token, err := issuer.GenerateToken(u, flags.ttl)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&flags.ttl, "ttl", 0, "Token lifetime (defaults to JWT_TTL)")

	return cmd
}
