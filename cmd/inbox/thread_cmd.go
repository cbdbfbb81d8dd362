package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jcooky/go-din"
	"github.com/mokiat/gog"
	"github.com/spf13/cobra"

	"github.com/habiliai/inbox/entity"
	"github.com/habiliai/inbox/errors"
	"github.com/habiliai/inbox/thread"
	"github.com/habiliai/inbox/user"
)

func resolveUser(c *din.Container, username string) (*entity.User, error) {
	users, err := din.GetT[user.Manager](c)
	if err != nil {
		return nil, err
	}
	u, err := users.GetUserByUsername(c, username)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, errors.Errorf("user %s is inactive", u.Username)
	}
	return u, nil
}

func parseThreadId(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, errors.Errorf("thread-id must be an integer")
	}
	return uint(id), nil
}

func printThread(w io.Writer, th *entity.Thread) {
	names := gog.Map(th.Participants, func(u entity.User) string { return u.Username })
	fmt.Fprintf(w, "Thread ID: %d, Participants: %s, Latest: %s\n",
		th.ID, strings.Join(names, ", "), th.LatestMessageAt.Format(time.RFC3339Nano))
	if th.LatestMessage != nil {
		fmt.Fprintf(w, "  %s: %s\n", th.LatestMessage.Sender.Username, th.LatestMessage.Content)
	}
}

func printMessage(w io.Writer, msg *entity.Message) {
	fmt.Fprintf(w, "Message ID: %d, Sent: %s, User: %s, Text: %s\n",
		msg.ID, msg.SentAt.Format(time.RFC3339Nano), msg.Sender.Username, msg.Content)
}

func newThreadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "thread",
		Short:   "Thread commands",
		Aliases: []string{"threads"},
	}

	listCmd := func() *cobra.Command {
		kvargs := &struct {
			before   string
			beforeId uint
			pageSize int
		}{}
		cmd := &cobra.Command{
			Use:   "list <username>",
			Short: "List a user's threads, newest activity first",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c := din.NewContainer(cmd.Context(), din.EnvProd)
				defer c.Close()

				u, err := resolveUser(c, args[0])
				if err != nil {
					return err
				}
				svc, err := din.GetT[thread.Service](c)
				if err != nil {
					return err
				}

				var before *thread.Cursor
				if kvargs.before != "" {
					at, err := time.Parse(time.RFC3339Nano, kvargs.before)
					if err != nil {
						return errors.Errorf("--before must be an RFC 3339 timestamp")
					}
					before = &thread.Cursor{At: at, ID: kvargs.beforeId}
				}

				threads, next, err := svc.ListThreads(c, u.ID, before, kvargs.pageSize)
				if err != nil {
					return err
				}

				for i := range threads {
					printThread(cmd.OutOrStdout(), &threads[i])
				}
				if next != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "More: --before %s --before-id %d\n", next.At.Format(time.RFC3339Nano), next.ID)
				}
				return nil
			},
		}

		cmd.Flags().StringVar(&kvargs.before, "before", "", "Only threads with activity before this RFC 3339 timestamp")
		cmd.Flags().UintVar(&kvargs.beforeId, "before-id", 0, "Thread id to continue after when timestamps tie")
		cmd.Flags().IntVar(&kvargs.pageSize, "page-size", 0, "Number of threads to list")

		return cmd
	}

	createCmd := &cobra.Command{
		Use:   "create <username> <to,...> <content>",
		Short: "Start a thread",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := din.NewContainer(cmd.Context(), din.EnvProd)
			defer c.Close()

			u, err := resolveUser(c, args[0])
			if err != nil {
				return err
			}
			svc, err := din.GetT[thread.Service](c)
			if err != nil {
				return err
			}

			th, err := svc.CreateThread(c, u.ID, strings.Split(args[1], ","), args[2])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Thread created with ID:", th.ID)
			return nil
		},
	}

	addMessageCmd := &cobra.Command{
		Use:   "add-message <username> <thread-id> <content>",
		Short: "Add a message to a thread",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := din.NewContainer(cmd.Context(), din.EnvProd)
			defer c.Close()

			u, err := resolveUser(c, args[0])
			if err != nil {
				return err
			}
			threadId, err := parseThreadId(args[1])
			if err != nil {
				return err
			}
			svc, err := din.GetT[thread.Service](c)
			if err != nil {
				return err
			}

			msg, err := svc.AppendMessage(c, threadId, u.ID, args[2])
			if err != nil {
				return err
			}

			printMessage(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	messagesCmd := func() *cobra.Command {
		kvargs := &struct {
			order  string
			cursor uint
			limit  int
		}{}
		cmd := &cobra.Command{
			Use:   "messages <username> <thread-id>",
			Short: "List messages in a thread",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				c := din.NewContainer(cmd.Context(), din.EnvProd)
				defer c.Close()

				u, err := resolveUser(c, args[0])
				if err != nil {
					return err
				}
				threadId, err := parseThreadId(args[1])
				if err != nil {
					return err
				}
				svc, err := din.GetT[thread.Service](c)
				if err != nil {
					return err
				}

				messages, next, err := svc.ListMessages(c, u.ID, threadId, kvargs.order, kvargs.cursor, kvargs.limit)
				if err != nil {
					return err
				}

				for i := range messages {
					printMessage(cmd.OutOrStdout(), &messages[i])
				}
				if next != 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "More: --cursor %d\n", next)
				}
				return nil
			},
		}

		cmd.Flags().StringVar(&kvargs.order, "order", "ASC", "Sort order (ASC or DESC)")
		cmd.Flags().UintVar(&kvargs.cursor, "cursor", 0, "Continue after this message id")
		cmd.Flags().IntVar(&kvargs.limit, "limit", 0, "Number of messages to list")

		return cmd
	}

	cmd.AddCommand(
		listCmd(),
		createCmd,
		addMessageCmd,
		messagesCmd(),
	)

	return cmd
}
