// ABOUTME: Interactive chat command for talking to the assistant from a terminal
// ABOUTME: Runs one session over stdin/stdout until the patient says goodbye
package commands

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	chatPatientID int64
	chatSeed      bool
)

// NewChatCmd creates the chat command
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		Long: `Start an interactive conversation with the assistant.

The session runs until the patient says goodbye or the input stream
closes. Use --seed to load demo doctors and sample medical history
into an empty record database first.

Examples:
  careline chat --patient 1
  careline chat --patient 42 --seed`,
		RunE: runChat,
	}

	cmd.Flags().Int64Var(&chatPatientID, "patient", 1, "Authenticated patient id for the session")
	cmd.Flags().BoolVar(&chatSeed, "seed", false, "Seed demo doctors and sample history")

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	// Load .env for API keys
	_ = godotenv.Load()

	if chatPatientID <= 0 {
		return fmt.Errorf("--patient must be positive, got %d", chatPatientID)
	}

	a, err := buildAssistant()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx := cmd.Context()

	if chatSeed {
		if err := a.store.SeedDemo(ctx, chatPatientID); err != nil {
			return fmt.Errorf("seeding demo data: %w", err)
		}
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "Demo data seeded.")
		}
	}

	sess := a.manager.Create(chatPatientID)
	if verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "Session %s started for patient %d\n", sess.State.SessionID, chatPatientID)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Hello! I can help with appointments, medical records, symptoms, and home care. How can I help?")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(cmd.OutOrStdout(), "> ")
		if !scanner.Scan() {
			break
		}
		utterance := strings.TrimSpace(scanner.Text())
		if utterance == "" {
			continue
		}

		reply, err := a.manager.SendMessage(ctx, sess.State.SessionID, utterance)
		if err != nil {
			return fmt.Errorf("processing turn: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
		if verbose {
			fmt.Fprintf(cmd.OutOrStdout(), "  [state=%s task=%s]\n", reply.State, reply.Task)
		}
		if reply.Ended {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}
