package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"skolapp-quizsync/internal/aidraft"
	"skolapp-quizsync/internal/app"
	"skolapp-quizsync/internal/config"
	"skolapp-quizsync/internal/domain"
	"skolapp-quizsync/internal/remote"
)

// session bundles what every local command needs.
type session struct {
	cfg   config.Config
	log   *logrus.Entry
	docs  app.DocumentStore
	close func()
}

func openSession(ctx context.Context, configPath, service string) (*session, error) {
	cfg, log, err := loadConfig(configPath, service)
	if err != nil {
		return nil, err
	}
	docs, closeDocs, err := openDocuments(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, log: log, docs: docs, close: closeDocs}, nil
}

// NewQuizCmd groups the commands for locally authored quizzes.
func NewQuizCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Author, list and manage local quizzes",
	}
	cmd.AddCommand(newQuizListCmd(configPath))
	cmd.AddCommand(newQuizCreateCmd(configPath))
	cmd.AddCommand(newQuizDraftCmd(configPath))
	cmd.AddCommand(newQuizAcceptCmd(configPath))
	cmd.AddCommand(newQuizDiscardCmd(configPath))
	return cmd
}

func newQuizListCmd(configPath *string) *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List local quizzes merged with the remote catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, *configPath, "quiz")
			if err != nil {
				return err
			}
			defer s.close()

			store := app.NewLocalQuizStore(ctx, s.docs, app.WithLogger(s.log))
			state := remoteState(ctx, s, offline)
			printMerged(cmd.OutOrStdout(), store.Merged(state.Quizzes))
			printSyncStatus(cmd.OutOrStdout(), state)
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "use the cached remote list without fetching")
	return cmd
}

// remoteState runs one load, or only reads the cached snapshot when offline is set.
func remoteState(ctx context.Context, s *session, offline bool) remote.State {
	if offline {
		snap, err := remote.ReadSnapshot(ctx, s.docs)
		if err != nil {
			return remote.State{Quizzes: []domain.QuizSummary{}, Offline: true}
		}
		synced := snap.Time()
		return remote.State{Quizzes: snap.Data, Offline: true, LastSynced: &synced}
	}
	loader := newLoader(s.cfg, s.docs, s.log)
	loader.Refresh(ctx)
	return loader.State()
}

func newQuizCreateCmd(configPath *string) *cobra.Command {
	var (
		path          string
		simulateQuota bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Validate a YAML quiz file and save it locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			qf, err := readQuizFile(path)
			if err != nil {
				return err
			}
			questions, err := qf.questions()
			if err != nil {
				return err
			}

			s, err := openSession(ctx, *configPath, "quiz")
			if err != nil {
				return err
			}
			defer s.close()

			quota := &app.QuotaSwitch{}
			quota.Set(simulateQuota)
			store := app.NewLocalQuizStore(ctx, s.docs, app.WithLogger(s.log), app.WithFailureSimulator(quota))

			quiz, err := store.CreateQuiz(ctx, qf.Title, questions, qf.Description)
			var verr *app.ValidationError
			if errors.As(err, &verr) {
				for _, msg := range verr.Messages {
					fmt.Fprintln(cmd.ErrOrStderr(), msg)
				}
				return errors.New("quiz not saved")
			}
			if errors.Is(err, domain.ErrLocalSave) {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s kept for this session only\n", domain.ErrLocalSave, quiz.ID)
				return err
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %q with %d questions\n", quiz.ID, quiz.Title, len(quiz.Questions))
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "path to the YAML quiz definition")
	cmd.Flags().BoolVar(&simulateQuota, "simulate-quota-error", false, "fail the local write as if storage were full")
	_ = cmd.Flags().MarkHidden("simulate-quota-error")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newQuizDraftCmd(configPath *string) *cobra.Command {
	var (
		topic   string
		count   int
		latency time.Duration
	)
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Generate an AI quiz draft and store it locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			draft, err := aidraft.NewGenerator(latency).Generate(ctx, topic, count)
			if err != nil {
				return err
			}

			s, err := openSession(ctx, *configPath, "quiz")
			if err != nil {
				return err
			}
			defer s.close()

			store := app.NewLocalQuizStore(ctx, s.docs, app.WithLogger(s.log))
			quiz, err := store.AddAIDraft(ctx, draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "draft %s %q with %d questions\n", quiz.ID, quiz.Title, len(quiz.Questions))
			return nil
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "subject of the draft")
	cmd.Flags().IntVar(&count, "count", aidraft.DefaultQuestionCount, "number of questions")
	cmd.Flags().DurationVar(&latency, "latency", 0, "simulated generation time")
	return cmd
}

func newQuizAcceptCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "accept <draft-id>",
		Short: "Turn an AI draft into a normal quiz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, *configPath, "quiz")
			if err != nil {
				return err
			}
			defer s.close()

			store := app.NewLocalQuizStore(ctx, s.docs, app.WithLogger(s.log))
			draft, ok := store.Draft(args[0])
			if !ok {
				return fmt.Errorf("no AI draft with id %s", args[0])
			}
			quiz, err := store.AcceptAIDraft(ctx, draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "accepted %s as %s %q\n", draft.ID, quiz.ID, quiz.Title)
			return nil
		},
	}
}

func newQuizDiscardCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "discard <draft-id>",
		Short: "Remove an AI draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, *configPath, "quiz")
			if err != nil {
				return err
			}
			defer s.close()

			store := app.NewLocalQuizStore(ctx, s.docs, app.WithLogger(s.log))
			return store.DiscardAIDraft(ctx, args[0])
		},
	}
}

func printMerged(w io.Writer, entries []domain.MergedEntry) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tUPDATED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.ID, e.Title, e.UpdatedAt)
	}
	_ = tw.Flush()
}

func printSyncStatus(w io.Writer, state remote.State) {
	switch {
	case state.Error != "":
		fmt.Fprintf(w, "\noffline: %s\n", state.Error)
	case state.Offline && state.LastSynced != nil:
		fmt.Fprintf(w, "\noffline, showing remote list cached %s\n", domain.FormatTimestamp(*state.LastSynced))
	case state.Offline:
		fmt.Fprintln(w, "\noffline, no cached remote list")
	case state.LastSynced != nil:
		fmt.Fprintf(w, "\nsynced %s\n", domain.FormatTimestamp(*state.LastSynced))
	}
}
