package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/smartstudy/internal/app"
	"github.com/abhisek/smartstudy/internal/filter"
	"github.com/abhisek/smartstudy/internal/screens/home"
	"github.com/abhisek/smartstudy/internal/store"
)

type tuiOptions struct {
	start app.Start
	// studyTimer and examTimer override the configured countdowns when
	// not nil.
	studyTimer *int
	examTimer  *int
	filter     string
}

func newStudyCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "study",
		Short:       "Study the questions due in the current session",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationTUI: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := tuiOptions{start: app.StartStudy}
			if cmd.Flags().Changed("timer") {
				n, _ := cmd.Flags().GetInt("timer")
				opts.studyTimer = &n
			}
			return e.runTUI(cmd, opts)
		},
	}
	cmd.Flags().Int("timer", 0, "Seconds per question, 0 disables the countdown")
	return cmd
}

func newExamCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "exam",
		Short:       "Take an unscheduled exam over the active sets",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationTUI: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := tuiOptions{start: app.StartExam}
			if cmd.Flags().Changed("timer") {
				n, _ := cmd.Flags().GetInt("timer")
				opts.examTimer = &n
			}
			opts.filter, _ = cmd.Flags().GetString("filter")
			return e.runTUI(cmd, opts)
		},
	}
	cmd.Flags().Int("timer", 0, "Seconds per question, 0 disables the countdown")
	cmd.Flags().String("filter", "", "CEL expression selecting questions, e.g. 'subject == \"Biology\"'")
	return cmd
}

func (e *env) runTUI(cmd *cobra.Command, opts tuiOptions) error {
	studyTimer, examTimer := e.cfg.Study.TimerSeconds, e.cfg.Exam.TimerSeconds
	if opts.studyTimer != nil {
		studyTimer = *opts.studyTimer
	}
	if opts.examTimer != nil {
		examTimer = *opts.examTimer
	}
	if studyTimer < 0 || examTimer < 0 {
		return errors.New("--timer must be >= 0")
	}
	f, err := filter.Compile(opts.filter)
	if err != nil {
		return fmt.Errorf("--filter: %w", err)
	}

	ctx := cmd.Context()
	return e.withStore(ctx, func(st *store.Store) error {
		deps := home.Deps{
			Store:      st,
			Progress:   e.progress(st),
			StudyTimer: studyTimer,
			ExamTimer:  examTimer,
			ExamFilter: f,
			Logger:     e.logger,
		}
		e.logger.Info("starting tui", "start", opts.start, "study_timer", studyTimer, "exam_timer", examTimer)
		return app.Run(ctx, deps, opts.start)
	})
}
