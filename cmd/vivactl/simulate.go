package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/phrazzld/viva-api/internal/cases"
	"github.com/phrazzld/viva-api/internal/domain"
	"github.com/phrazzld/viva-api/internal/domain/examiner"
	"github.com/spf13/cobra"
)

const quitCommand = "/quit"

var simulateCmd = &cobra.Command{
	Use:   "simulate <case-id>",
	Short: "Practice a case against the rule-based examiner",
	Long: `Run an interactive oral exam in the terminal. Nothing is stored.
Type /quit to finish early and see the score.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, err := cases.Load(settings.GetString("examiner_case_library_dir"), cliLogger())
		if err != nil {
			return err
		}
		c, err := lib.Get(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("case %q: %w", args[0], err)
		}

		strictness, _ := cmd.Flags().GetString("strictness")
		turns, _ := cmd.Flags().GetInt("turns")
		if !domain.Strictness(strictness).Valid() {
			return fmt.Errorf("%w: strictness %q", domain.ErrInvalidSettings, strictness)
		}
		ex := examiner.New(examiner.NewParams(examiner.ParamsConfig{TurnsPerPhase: turns})).
			WithStrictness(domain.Strictness(strictness))

		rl, err := readline.NewEx(&readline.Config{
			Prompt:          color.New(color.FgCyan).Sprint("you> "),
			InterruptPrompt: "^C",
			EOFPrompt:       quitCommand,
		})
		if err != nil {
			return fmt.Errorf("failed to create readline: %w", err)
		}
		defer rl.Close()

		sim := newSimulator(ex, c, cmd.OutOrStdout())
		_, err = sim.run(rl)
		return err
	},
}

func init() {
	simulateCmd.Flags().String("strictness", string(domain.StrictnessStandard), "lenient, standard or strict")
	simulateCmd.Flags().Int("turns", examiner.DefaultTurnsPerPhase, "answers per phase")
	rootCmd.AddCommand(simulateCmd)
}

type lineReader interface {
	Readline() (string, error)
}

// simulator drives one offline session through the examiner.
type simulator struct {
	ex        *examiner.Examiner
	c         *domain.Case
	out       io.Writer
	now       func() time.Time
	sessionID uuid.UUID
}

func newSimulator(ex *examiner.Examiner, c *domain.Case, out io.Writer) *simulator {
	return &simulator{ex: ex, c: c, out: out, now: time.Now, sessionID: uuid.New()}
}

// run plays the session until the examiner closes it, the candidate quits or
// input ends, then prints and returns the feedback.
func (s *simulator) run(in lineReader) (domain.Feedback, error) {
	bold := color.New(color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	opening := s.ex.Opening(s.c)
	transcript := []domain.Message{}
	if err := s.appendMessage(&transcript, domain.RoleExaminer, domain.KindOpening, domain.PhaseIntro, opening); err != nil {
		return domain.Feedback{}, err
	}
	fmt.Fprintf(s.out, "%s\n\n", bold(s.c.Title))
	fmt.Fprintf(s.out, "%s %s\n", yellow("examiner>"), opening)

	var (
		turn  int
		focus *domain.Focus
	)
	total := examiner.TotalTurns(s.ex.Params().TurnsPerPhase)
	for turn < total {
		line, err := in.Readline()
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			break
		}
		if err != nil {
			return domain.Feedback{}, err
		}
		line = strings.TrimSpace(line)
		if line == quitCommand {
			break
		}
		phase := examiner.PhaseForTurn(turn, s.ex.Params().TurnsPerPhase)
		state := examiner.TurnState{
			Turn:         turn,
			Focus:        focus,
			PhaseAnswers: examiner.CandidateAnswers(transcript, phase),
		}
		if line == "" {
			fmt.Fprintf(s.out, "%s %s\n", cyan("hint:"), s.ex.Hint(s.c, state))
			fmt.Fprintln(s.out, gray("(answer, or /quit to finish)"))
			continue
		}

		reply, err := s.ex.Respond(s.c, state, line)
		if err != nil {
			return domain.Feedback{}, err
		}
		if err := s.appendMessage(&transcript, domain.RoleCandidate, domain.KindAnswer, reply.AnswerPhase, line); err != nil {
			return domain.Feedback{}, err
		}
		if err := s.appendMessage(&transcript, domain.RoleExaminer, reply.Kind, reply.Phase, reply.Text); err != nil {
			return domain.Feedback{}, err
		}

		if len(reply.RedFlags) > 0 {
			fmt.Fprintf(s.out, "%s %s\n", red("red flag:"), strings.Join(reply.RedFlags, ", "))
		}
		if reply.Phase != reply.AnswerPhase && !reply.Done {
			fmt.Fprintf(s.out, "%s\n", gray("-- "+reply.Phase.Title()+" --"))
		}
		fmt.Fprintf(s.out, "%s %s\n", yellow("examiner>"), reply.Text)

		focus = reply.Focus
		turn++
		if reply.Done {
			break
		}
	}

	fb := examiner.BuildFeedback(s.c, transcript, s.ex.Params(), s.now().UTC())
	s.printFeedback(fb)
	return fb, nil
}

func (s *simulator) appendMessage(transcript *[]domain.Message, role domain.MessageRole, kind domain.MessageKind, phase domain.Phase, text string) error {
	m, err := domain.NewMessage(s.sessionID, len(*transcript), role, kind, phase, text)
	if err != nil {
		return err
	}
	*transcript = append(*transcript, *m)
	return nil
}

func (s *simulator) printFeedback(fb domain.Feedback) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	result := red("not passed")
	if fb.Score.Passed {
		result = green("passed")
	}
	fmt.Fprintf(s.out, "\n%s\n", cyan("=== Feedback ==="))
	fmt.Fprintf(s.out, "Score: %d%% (grade %.1f) %s\n", fb.Score.Percent, fb.Score.Grade, result)
	fmt.Fprintln(s.out, fb.Summary)
	for _, p := range fb.Phases {
		fmt.Fprintf(s.out, "\n%s %.0f%%\n", p.Phase.Title(), p.Ratio*100)
		for _, label := range p.Strengths {
			fmt.Fprintf(s.out, "  %s %s\n", green("+"), label)
		}
		for _, label := range p.Gaps {
			fmt.Fprintf(s.out, "  %s %s\n", red("-"), label)
		}
	}
	for _, flag := range fb.RedFlags {
		fmt.Fprintf(s.out, "%s %s\n", red("red flag:"), flag)
	}
	for _, note := range fb.Notes {
		fmt.Fprintf(s.out, "%s %s\n", gray("note:"), note)
	}
}
