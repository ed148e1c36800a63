package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"quizmaster/internal/config"
	"quizmaster/internal/domain"
	"quizmaster/internal/game"
	"quizmaster/internal/infra/opentdb"
	transport "quizmaster/internal/transport/http"
)

const playHelp = "commands: <n> select choice n | v verify | n next | h <rarity> hint | ask <text> | q quit"

// NewPlayCmd plays a quiz in the terminal, against a remote authority or an
// in-process one.
func NewPlayCmd(configPath *string) *cobra.Command {
	var (
		player    string
		category  string
		serverURL string
		local     bool
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if player == "" {
				player = cfg.Client.Player
			}
			if serverURL == "" {
				serverURL = cfg.Client.ServerURL
			}
			if player == "" || category == "" {
				return fmt.Errorf("--player and --category are required")
			}
			if err := opentdb.CheckCatalog(cfg.Quiz.Catalog); err != nil {
				return err
			}

			ctx := cmd.Context()
			opts := game.Options{
				Catalog:         cfg.Quiz.Catalog,
				AssistThreshold: domain.Rarity(cfg.Hints.AssistThreshold),
			}

			var session *game.Session
			if local {
				service, cleanup, err := buildService(ctx, cfg)
				if err != nil {
					return err
				}
				defer cleanup()
				session = game.NewSession(player, category, service, service, service, opts)
			} else {
				if serverURL == "" {
					return fmt.Errorf("--server is required unless --local is set")
				}
				client, err := transport.Dial(ctx, serverURL, player)
				if err != nil {
					return err
				}
				defer client.Close()
				session = game.NewSession(player, category, client, client, client, opts)
			}
			defer session.Leave()
			return runPlay(ctx, session, os.Stdin, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&player, "player", "", "player id")
	cmd.Flags().StringVar(&category, "category", "", "catalog category or authored bank name")
	cmd.Flags().StringVar(&serverURL, "server", "", "authority base URL, e.g. http://localhost:8080")
	cmd.Flags().BoolVar(&local, "local", false, "run the authority in-process")
	return cmd
}

// runPlay drives s from Loading to Completed with commands read from in.
func runPlay(ctx context.Context, s *game.Session, in io.Reader, out io.Writer) error {
	res, err := s.Start(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %d questions\n", res.Category.Name, len(res.Record.Questions))
	if res.Notice != "" {
		fmt.Fprintln(out, res.Notice)
	}
	fmt.Fprintln(out, playHelp)

	scanner := bufio.NewScanner(in)
	render(out, s.View())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "q", "quit":
			fmt.Fprintln(out, "bye")
			return nil
		case "v", "verify":
			verdict, err := s.Verify(ctx)
			if err != nil {
				report(out, err)
				continue
			}
			view := s.View()
			if view.Selection == verdict.Correct {
				fmt.Fprintln(out, "correct!")
			} else {
				fmt.Fprintf(out, "wrong, the answer was %q\n", verdict.Correct)
			}
		case "n", "next":
			done, err := s.Advance(ctx)
			if err != nil {
				report(out, err)
				continue
			}
			if done {
				fmt.Fprintf(out, "quiz complete: %s\n", s.FinalScore())
				return nil
			}
			render(out, s.View())
		case "h", "hint":
			r, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Fprintln(out, "usage: h <rarity>")
				continue
			}
			hint, err := s.UseHint(ctx, domain.Rarity(r))
			if err != nil {
				report(out, err)
				continue
			}
			if hint.AssistUnlocked {
				fmt.Fprintln(out, "assistant unlocked, use: ask <question>")
			} else {
				fmt.Fprintf(out, "eliminated: %s\n", strings.Join(hint.Eliminated, ", "))
			}
		case "ask":
			turn, err := s.Ask(ctx, arg)
			if err != nil {
				report(out, err)
				continue
			}
			fmt.Fprintf(out, "assistant: %s\n", turn.Text)
		default:
			n, err := strconv.Atoi(cmd)
			if err != nil {
				fmt.Fprintln(out, playHelp)
				continue
			}
			view := s.View()
			if n < 1 || n > len(view.Question.Choices) {
				fmt.Fprintln(out, "no such choice")
				continue
			}
			if err := s.SelectChoice(view.Question.Choices[n-1]); err != nil {
				report(out, err)
				continue
			}
			fmt.Fprintf(out, "selected %q\n", view.Question.Choices[n-1])
		}
	}
	return scanner.Err()
}

func render(out io.Writer, v game.View) {
	if v.Status != domain.StatusInProgress {
		return
	}
	fmt.Fprintf(out, "\nQuestion %d/%d (score %d)\n%s\n", v.Index+1, v.QuestionCount, v.Score, v.Question.Text)
	eliminated := make(map[string]bool, len(v.Eliminated))
	for _, c := range v.Eliminated {
		eliminated[c] = true
	}
	for i, c := range v.Question.Choices {
		mark := ""
		if eliminated[c] {
			mark = " (eliminated)"
		}
		fmt.Fprintf(out, "  %d) %s%s\n", i+1, c, mark)
	}
	var hints []string
	for _, h := range v.Hints {
		hints = append(hints, fmt.Sprintf("%d:x%d", h.Rarity, h.Quantity))
	}
	if len(hints) > 0 {
		fmt.Fprintf(out, "cheat sheets %s\n", strings.Join(hints, " "))
	}
}

func report(out io.Writer, err error) {
	fmt.Fprintf(out, "error: %v\n", err)
}
