package main

import (
	"fmt"

	"github.com/jcooky/go-din"
	"github.com/spf13/cobra"

	"github.com/habiliai/inbox/user"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "user",
		Short:   "User commands",
		Aliases: []string{"users"},
	}

	createCmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := din.NewContainer(cmd.Context(), din.EnvProd)
			defer c.Close()

			users, err := din.GetT[user.Manager](c)
			if err != nil {
				return err
			}

			u, err := users.CreateUser(c, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "User created with ID: %d (%s)\n", u.ID, u.Username)
			return nil
		},
	}

	deactivateCmd := &cobra.Command{
		Use:   "deactivate <username>",
		Short: "Deactivate a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := din.NewContainer(cmd.Context(), din.EnvProd)
			defer c.Close()

			users, err := din.GetT[user.Manager](c)
			if err != nil {
				return err
			}

			if err := users.Deactivate(c, args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "User %s deactivated\n", args[0])
			return nil
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <users.yaml>",
		Short: "Create the users listed in a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := din.NewContainer(cmd.Context(), din.EnvProd)
			defer c.Close()

			users, err := din.GetT[user.Manager](c)
			if err != nil {
				return err
			}

			imported, err := users.ImportFile(c, args[0])
			if err != nil {
				return err
			}

			for _, u := range imported {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\tactive=%t\n", u.ID, u.Username, u.IsActive)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d user(s) imported\n", len(imported))
			return nil
		},
	}

	cmd.AddCommand(createCmd, deactivateCmd, importCmd)

	return cmd
}
