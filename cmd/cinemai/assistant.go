package main

import (
	"bufio"
	"fmt"
	"strings"

	"cinemai/shared/discovery"
	"cinemai/shared/media"

	"github.com/spf13/cobra"
)

func newTrailerCmd(opts *rootOptions) *cobra.Command {
	var link string

	cmd := &cobra.Command{
		Use:   "trailer <title>",
		Short: "Print the embeddable trailer URL for a title",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			ctx := cmd.Context()
			title := strings.Join(args, " ")
			if title == "" && link == "" {
				return fmt.Errorf("a title or --url is required")
			}

			id, ok := a.trailers(ctx).Resolve(ctx, title, link, a.lastResult(ctx))
			if !ok {
				return fmt.Errorf("no playable trailer found for %q", title)
			}
			if opts.json {
				return printJSON(cmd, map[string]string{"id": id, "embed_url": media.EmbedURL(id), "watch_url": media.WatchURL(id)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), media.EmbedURL(id))
			return nil
		},
	}

	cmd.Flags().StringVar(&link, "url", "", "trailer link to extract the video id from")
	return cmd
}

func newExplainCmd(opts *rootOptions) *cobra.Command {
	var userContext string

	cmd := &cobra.Command{
		Use:   "explain <title>",
		Short: "Explain why a title is a good match",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			completer, err := opts.app.newAssistant(ctx)
			if err != nil {
				return err
			}
			text := discovery.ExplainMatch(ctx, completer, strings.Join(args, " "), userContext)
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().StringVar(&userContext, "context", "", "who the pick is for (default \""+discovery.DefaultExplainContext+"\")")
	return cmd
}

func newChatCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the CinemAI assistant (Ctrl-D to quit)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			completer, err := opts.app.newAssistant(ctx)
			if err != nil {
				return err
			}
			session := discovery.NewChatSession(completer)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "CinemAI: %s\n", session.Messages()[0].Text)

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					fmt.Fprintln(out)
					return scanner.Err()
				}
				reply, ok := session.Send(ctx, scanner.Text())
				if !ok {
					continue
				}
				fmt.Fprintf(out, "CinemAI: %s\n", reply.Text)
				if ctx.Err() != nil {
					return nil
				}
			}
		},
	}
}
