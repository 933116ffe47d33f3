package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"skolapp-quizsync/internal/app"
	"skolapp-quizsync/internal/domain"
)

// NewCommunityCmd groups the commands for the shared quiz ledger.
func NewCommunityCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "community",
		Short: "Share quizzes and manage comments, ratings and reports",
	}
	cmd.AddCommand(newShareCmd(configPath))
	cmd.AddCommand(newCommentCmd(configPath))
	cmd.AddCommand(newRateCmd(configPath))
	cmd.AddCommand(newReportCmd(configPath))
	cmd.AddCommand(newSearchCmd(configPath))
	return cmd
}

// withStores opens the session and hydrates both stores.
func withStores(ctx context.Context, configPath string, fn func(*app.LocalQuizStore, *app.SharedQuizStore) error) error {
	s, err := openSession(ctx, configPath, "community")
	if err != nil {
		return err
	}
	defer s.close()
	local := app.NewLocalQuizStore(ctx, s.docs, app.WithLogger(s.log))
	shared := app.NewSharedQuizStore(ctx, s.docs, app.WithLogger(s.log))
	return fn(local, shared)
}

func newShareCmd(configPath *string) *cobra.Command {
	var (
		author string
		tags   []string
	)
	cmd := &cobra.Command{
		Use:   "share <quiz-id>",
		Short: "Publish a local quiz to the community list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withStores(ctx, *configPath, func(local *app.LocalQuizStore, shared *app.SharedQuizStore) error {
				for _, q := range local.Quizzes() {
					if q.ID == args[0] {
						sq := shared.ShareQuiz(ctx, q, author, tags)
						fmt.Fprintf(cmd.OutOrStdout(), "shared %s as %s\n", q.ID, sq.ID)
						return nil
					}
				}
				return fmt.Errorf("no local quiz with id %s", args[0])
			})
		},
	}
	cmd.Flags().StringVar(&author, "author", "", "name shown as author")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag to attach (repeatable)")
	_ = cmd.MarkFlagRequired("author")
	return cmd
}

func newCommentCmd(configPath *string) *cobra.Command {
	var author string
	cmd := &cobra.Command{
		Use:   "comment <shared-id> <text>",
		Short: "Comment on a shared quiz",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withStores(ctx, *configPath, func(_ *app.LocalQuizStore, shared *app.SharedQuizStore) error {
				sq, err := shared.AddComment(ctx, args[0], author, args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s now has %d comments\n", sq.ID, len(sq.Comments))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&author, "author", "", "name shown with the comment")
	_ = cmd.MarkFlagRequired("author")
	return cmd
}

func newRateCmd(configPath *string) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "rate <shared-id> <1-5>",
		Short: "Rate a shared quiz; rating again replaces your earlier rating",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rating int
			if _, err := fmt.Sscanf(args[1], "%d", &rating); err != nil {
				return fmt.Errorf("rating must be a number: %w", err)
			}
			ctx := cmd.Context()
			return withStores(ctx, *configPath, func(_ *app.LocalQuizStore, shared *app.SharedQuizStore) error {
				sq, err := shared.AddRating(ctx, args[0], user, rating)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s average %.1f from %d ratings\n", sq.ID, sq.AverageRating, sq.TotalRatings)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "id of the rating user")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newReportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "report <shared-id>",
		Short: "Flag a shared quiz for moderation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withStores(ctx, *configPath, func(_ *app.LocalQuizStore, shared *app.SharedQuizStore) error {
				_, err := shared.ReportQuiz(ctx, args[0])
				return err
			})
		},
	}
}

func newSearchCmd(configPath *string) *cobra.Command {
	var tags []string
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search shared quizzes by title, author or tag",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withStores(ctx, *configPath, func(_ *app.LocalQuizStore, shared *app.SharedQuizStore) error {
				var results []domain.SharedQuiz
				if len(tags) > 0 {
					results = shared.FilterByTags(tags)
				} else {
					results = shared.SearchQuizzes(strings.Join(args, " "))
				}
				printShared(cmd.OutOrStdout(), results)
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "only quizzes carrying one of these tags")
	return cmd
}

func printShared(w io.Writer, quizzes []domain.SharedQuiz) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tTAGS\tRATING\tQUESTIONS\tREPORTED")
	for _, q := range quizzes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f (%d)\t%d\t%t\n",
			q.ID, q.Title, q.AuthorName, strings.Join(q.Tags, ","), q.AverageRating, q.TotalRatings, q.QuestionCount, q.IsReported)
	}
	_ = tw.Flush()
}
