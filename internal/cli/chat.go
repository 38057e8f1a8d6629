package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/seybold/bankdesk"
	"github.com/seybold/bankdesk/core"
	"github.com/seybold/bankdesk/engine"
)

var (
	chatUserID    string
	chatSessionID string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive banking conversation",
	Long: `Start a console REPL with the banking assistant. Sensitive operations
(placing trades, transferring funds) pause the conversation and ask for your
approval; answer 'y' to approve or state a reason to reject. Type 'quit' or
'exit' to end the session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		app, err := bankdesk.New(ctx, cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		sessionID := chatSessionID
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		if err := app.Engine.Open(ctx, sessionID, chatUserID); err != nil {
			if !errors.Is(err, engine.ErrSessionExists) {
				return fmt.Errorf("open session: %w", err)
			}
			fmt.Printf("Resuming session %s\n", sessionID)
		}

		return runREPL(ctx, app.Engine, sessionID)
	},
}

func runREPL(ctx context.Context, eng *engine.Engine, sessionID string) error {
	in := bufio.NewScanner(os.Stdin)
	fmt.Println("Connected. Type your message, or 'quit' to end the session.")

	// A restarted session may still be waiting at the approval gate.
	if pending, err := eng.Pending(ctx, sessionID); err == nil && pending != nil {
		turn, err := resolveApproval(ctx, in, eng, sessionID, pending.Calls)
		if err != nil {
			return err
		}
		printTurn(turn)
	}

	for {
		fmt.Print("you> ")
		if !in.Scan() {
			return in.Err()
		}
		text := strings.TrimSpace(in.Text())
		if text == "" {
			continue
		}
		if text == "quit" || text == "exit" {
			if err := eng.Terminate(ctx, sessionID); err != nil {
				return fmt.Errorf("terminate session: %w", err)
			}
			fmt.Println("Session ended. Goodbye.")
			return nil
		}

		turn, err := eng.Send(ctx, sessionID, text)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("send: %w", err)
		}

		for turn.Suspended {
			turn, err = resolveApproval(ctx, in, eng, sessionID, turn.PendingCalls)
			if err != nil {
				return err
			}
		}
		printTurn(turn)
	}
}

// resolveApproval prompts for the pending sensitive calls and resumes the
// session with the user's decision.
func resolveApproval(ctx context.Context, in *bufio.Scanner, eng *engine.Engine, sessionID string, calls []core.ToolCall) (*engine.Turn, error) {
	fmt.Println("\nThe assistant wants to perform the following operation(s):")
	for _, call := range calls {
		fmt.Printf("  - %s %s\n", call.Name, call.Arguments)
	}
	fmt.Print("Approve? Type 'y' to approve, or state the reason for rejecting: ")

	if !in.Scan() {
		if err := in.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("input closed while awaiting approval")
	}
	answer := strings.TrimSpace(in.Text())

	if strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes") {
		return eng.Approve(ctx, sessionID)
	}
	if answer == "" {
		answer = "The user declined without giving a reason."
	}
	return eng.Reject(ctx, sessionID, answer)
}

func printTurn(turn *engine.Turn) {
	if turn == nil || turn.Reply == "" {
		return
	}
	fmt.Printf("assistant> %s\n", turn.Reply)
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatUserID, "user", "U1000", "customer id to chat as")
	chatCmd.Flags().StringVar(&chatSessionID, "session", "", "session id to open or resume (default: new)")
}
