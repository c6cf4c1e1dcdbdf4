package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/orchestrator"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Chat starts an interactive session against the catalog.

Answers build on the conversation so far: follow-up questions see the
most recent exchanges.

The session supports:
  /help    - show example questions
  /history - list the questions asked this session
  /clear   - clear the screen and forget the conversation
  /quit    - exit (also: quit, exit, q)`,
	RunE: runChat,
}

const chatBanner = `
╔══════════════════════════════════════════════════════════════╗
║                                                              ║
║          🎬 Streaming Platform AI Agent 🤖                   ║
║                                                              ║
║  Ask about users, content, ratings, and views. Database      ║
║  questions become read-only SQL; content questions are       ║
║  answered from the synopsis library.                         ║
║                                                              ║
╚══════════════════════════════════════════════════════════════╝

Type /quit to exit, /help for example questions.
`

const chatGoodbye = "\n👋 Goodbye! Thanks for using the streaming agent.\n"

const chatHelp = `
📚 EXAMPLE QUESTIONS:

General Queries:
  • ¿Cuántos usuarios tenemos registrados?
  • Muestra los 10 contenidos más populares
  • ¿Qué géneros de contenido tenemos disponibles?

User Analytics:
  • ¿Cuáles son los usuarios más activos?
  • ¿Cuántos usuarios hay por país?

Content Analytics:
  • Películas mejor calificadas
  • Series con más visualizaciones
  • Contenido agregado este año

Synopsis Lookups:
  • ¿De qué trata Aventuras Galácticas?
  • What is Terror Nocturno about?

Ranking + Synopsis:
  • ¿De qué trata la película más vista?
  • ¿Cuál es la película mejor calificada y de qué trata?

Session commands:
  /help     Show this help message
  /history  Show the questions asked this session
  /clear    Clear the screen and forget the conversation
  /quit     Exit the session
`

// chatSession holds the state of one interactive session. The history
// is caller-owned: every bundle is kept, answered or not, and passed
// back into Ask so follow-up questions see prior exchanges.
type chatSession struct {
	stack      *stack
	history    []*orchestrator.ResponseBundle
	isTerminal bool
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	st, err := newStack(ctx, appConfig, appLogger)
	if err != nil {
		return err
	}
	defer st.Close(ctx)

	session := &chatSession{
		stack:      st,
		isTerminal: term.IsTerminal(int(os.Stdin.Fd())),
	}
	return session.run(cmd)
}

// run is the main session loop. Banner, prompt, and goodbye are only
// shown on a terminal; piped input gets answers without decoration.
func (s *chatSession) run(cmd *cobra.Command) error {
	if s.isTerminal {
		cmd.Print(chatBanner)
	}

	reader := bufio.NewReader(os.Stdin)

	for {
		// Ctrl+C cancels the command context; say goodbye like the
		// banner promised instead of dying mid-prompt.
		if cmd.Context().Err() != nil {
			s.goodbye(cmd)
			return nil
		}

		if s.isTerminal {
			cmd.Print("\n💬 Your question: ")
		}

		input, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				s.goodbye(cmd)
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if s.handleSlashCommand(cmd, input) {
				return nil
			}
			continue
		}

		// Bare exit and help words, carried from the original front end.
		switch strings.ToLower(input) {
		case "quit", "exit", "q":
			s.goodbye(cmd)
			return nil
		case "help":
			cmd.Print(chatHelp)
			continue
		}

		s.ask(cmd, input)
	}
}

func (s *chatSession) goodbye(cmd *cobra.Command) {
	if s.isTerminal {
		cmd.Print(chatGoodbye)
	}
}

// ask runs one question through the agent and renders the outcome. A
// failed question is rendered and remembered too; the session keeps
// going.
func (s *chatSession) ask(cmd *cobra.Command, question string) {
	if s.isTerminal {
		cmd.Println("\n🤔 Thinking...")
	}

	bundle, _ := s.stack.orch.Ask(cmd.Context(), orchestrator.NewQuestion(question), s.history)
	printBundle(cmd, bundle)

	s.history = append(s.history, bundle)
}

// handleSlashCommand processes slash commands.
// Returns true if the session should exit.
func (s *chatSession) handleSlashCommand(cmd *cobra.Command, input string) bool {
	switch strings.ToLower(strings.Fields(input)[0]) {
	case "/quit", "/exit":
		s.goodbye(cmd)
		return true

	case "/help":
		cmd.Print(chatHelp)

	case "/history":
		s.printHistory(cmd)

	case "/clear":
		clearScreen()
		s.history = nil
		cmd.Println("Conversation history cleared.")

	default:
		cmd.PrintErrf("Unknown command: %s (type /help for available commands)\n", input)
	}

	return false
}

// printHistory lists the session's questions with how each one went.
func (s *chatSession) printHistory(cmd *cobra.Command) {
	if len(s.history) == 0 {
		cmd.Println("No questions asked yet.")
		return
	}

	cmd.Println()
	for i, bundle := range s.history {
		cmd.Printf("%2d. [%s] %s\n", i+1, bundle.Classification.Path, bundle.Question.Text)
		switch {
		case bundle.Error != "":
			cmd.Printf("      ❌ %s\n", bundle.Error)
		case bundle.Answer != "":
			cmd.Printf("      %s\n", firstLine(bundle.Answer))
		}
	}
}

// firstLine truncates an answer to its first line for history listings.
func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx] + " ..."
	}
	return text
}

// clearScreen clears the terminal screen.
func clearScreen() {
	// ANSI escape code to clear screen
	fmt.Print("\033[H\033[2J")
}
