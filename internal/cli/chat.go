package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/oneiro-ai/oneiro/internal/llm"
	"github.com/oneiro-ai/oneiro/internal/retrieval"
	"github.com/oneiro-ai/oneiro/internal/service"
	"github.com/oneiro-ai/oneiro/internal/stream"
	"github.com/spf13/cobra"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
	"golang.org/x/term"
)

// historyWindow bounds how many prior messages ride along each turn.
const historyWindow = 10

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFD7")).Bold(true)
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C")).Italic(true)
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAF00")).Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF005F")).Bold(true)
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive dream-analysis chat",
	Long: `Start an interactive chat over your dream journal.

Each message is matched against the journal first: quote a title
("Falling Through Water") to discuss that exact dream, or describe a
theme to pull in the most similar entries. The answer streams live;
type the pause token (default "stop") on its own line to interrupt it.

Commands inside the chat:
  /usage   show token usage for this session
  /quit    leave the chat`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	assistant, _, err := getServices(ctx, true)
	if err != nil {
		return err
	}

	// A wrong embedding dimension can never self-correct; refuse to
	// start rather than fail on the first real query.
	if err := assistant.VerifyEmbedding(ctx); err != nil {
		if errors.Is(err, retrieval.ErrEmbeddingUnavailable) {
			fmt.Println(noteStyle.Render("Embedding service unreachable; falling back to keyword matching."))
		} else {
			return err
		}
	}

	project := currentProject()

	// Banner and prompts only make sense on a real terminal; piped
	// input still works, one message per line.
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		fmt.Println(promptStyle.Render("oneiro") + noteStyle.Render(fmt.Sprintf("  project=%s  model=%s", project, cfg.LLMModel)))
		fmt.Println(noteStyle.Render(fmt.Sprintf("Type %q on its own line to pause a streaming answer, /quit to exit.", cfg.PauseToken)))
		fmt.Println()
	}

	// One goroutine owns stdin for the whole chat. The REPL reads the
	// next message from this channel; during streaming the cancel
	// listener reads from it instead, so the pause token is seen while
	// the answer is still printing.
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	var conversation *surrealmodels.RecordID
	var history []llm.Message

	for {
		if interactive {
			fmt.Print(promptStyle.Render("you> "))
		}
		line, ok := <-lines
		if !ok {
			fmt.Println()
			return nil
		}
		text := strings.TrimSpace(line)

		switch {
		case text == "":
			continue
		case text == "/quit" || text == "/exit" || text == "exit":
			return nil
		case text == "/usage":
			printSessionUsage()
			continue
		}

		if conversation == nil {
			conversation = startConversation(ctx, text, project)
		}

		fmt.Print(promptStyle.Render("oneiro> "))
		outcome, result, err := assistant.ChatTurn(ctx, text, service.TurnOptions{
			Project:      project,
			Conversation: conversation,
			History:      history,
			Lines:        lines,
			OnChunk:      func(chunk string) { fmt.Print(chunk) },
		})
		fmt.Println()

		if err != nil {
			if errors.Is(err, retrieval.ErrDimensionMismatch) {
				// Configuration fault, not a per-query condition.
				return err
			}
			if errors.Is(err, stream.ErrStreamTransport) {
				fmt.Println(errStyle.Render("✗ stream failed") + noteStyle.Render(fmt.Sprintf(" (%d chars of partial response saved)", outcome.SavedChars)))
				continue
			}
			fmt.Println(errStyle.Render("✗ " + err.Error()))
			continue
		}

		if outcome.State == stream.StatePaused {
			fmt.Println(pausedStyle.Render("⏸ paused") + noteStyle.Render(" — partial response saved"))
		}
		if verbose && result.Confidence != nil {
			fmt.Println(noteStyle.Render(fmt.Sprintf("(match confidence %.2f)", *result.Confidence)))
		}

		history = append(history,
			llm.Message{Role: "user", Content: text},
			llm.Message{Role: "assistant", Content: outcome.Content},
		)
		if len(history) > historyWindow {
			history = history[len(history)-historyWindow:]
		}
		fmt.Println()
	}
}

// startConversation persists the session record. Failures degrade to an
// unrecorded chat instead of blocking the first turn.
func startConversation(ctx context.Context, firstMessage, project string) *surrealmodels.RecordID {
	title := firstMessage
	if runes := []rune(title); len(runes) > 60 {
		title = string(runes[:60])
	}
	conv, err := dbClient.CreateConversation(ctx, title, project)
	if err != nil {
		fmt.Println(noteStyle.Render("(conversation not persisted: " + err.Error() + ")"))
		return nil
	}
	return &conv.ID
}

// printSessionUsage shows the in-process counters for this chat.
func printSessionUsage() {
	summary := tracker.Summary()
	fmt.Printf("Session usage (up %s)\n", tracker.Uptime().Round(time.Second))
	fmt.Printf("  Turns:      %d\n", summary.CallCount)
	fmt.Printf("  Prompt:     %d tokens\n", summary.PromptTokens)
	fmt.Printf("  Completion: %d tokens\n", summary.CompletionTokens)
	fmt.Printf("  Total:      %d tokens\n", summary.TotalTokens())
	for modelID, rec := range tracker.ByModel() {
		fmt.Printf("  %-20s %d tokens over %d calls\n", modelID, rec.TotalTokens(), rec.CallCount)
	}
}
