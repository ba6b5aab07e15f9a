package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"zavaflow/internal/backend"
	"zavaflow/internal/catalog"
	"zavaflow/internal/format"
	"zavaflow/internal/session"
)

const defaultWrap = 100

// errorCapture remembers the last exchange error so the CLI can exit non-zero.
type errorCapture struct {
	inner session.Exchanger
	mu    sync.Mutex
	err   error
}

func (e *errorCapture) Chat(ctx context.Context, req backend.ChatRequest) (backend.ChatResponse, error) {
	resp, err := e.inner.Chat(ctx, req)
	e.mu.Lock()
	e.err = err
	e.mu.Unlock()
	return resp, err
}

func (e *errorCapture) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

func newAskCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Send one question and print the routed, grounded answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			showTrace, _ := cmd.Flags().GetBool("trace")
			wrap, _ := cmd.Flags().GetInt("wrap")

			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Backend.Timeout)
			defer cancel()

			ex := &errorCapture{inner: a.client()}
			state, ok := session.RunOnce(ctx, a.controller(), ex, question)
			if !ok {
				return errors.New("question must not be empty")
			}
			if err := ex.Err(); err != nil {
				return fmt.Errorf("query failed: %w", err)
			}
			return printAnswer(cmd.OutOrStdout(), state, showTrace, wrap)
		},
	}
	cmd.Flags().Bool("trace", true, "Print the execution trace before the answer")
	cmd.Flags().Int("wrap", defaultWrap, "Word wrap width for the rendered answer")
	return cmd
}

func printAnswer(w io.Writer, state session.State, showTrace bool, wrap int) error {
	if showTrace {
		for _, entry := range state.Trace {
			fmt.Fprintf(w, "%s %s %s\n", dimStyle.Render(entry.Timestamp), labelStyle.Render(fmt.Sprintf("%-5s", entry.Kind.Label())), entry.Message)
		}
		fmt.Fprintln(w)
	}

	reply := state.Messages[len(state.Messages)-1]
	if reply.Display.Header {
		fmt.Fprintf(w, "%s %s\n", catalog.Default().Logo(reply.Display.Agent), titleStyle.Render(reply.Display.Agent))
	}
	fmt.Fprint(w, renderAnswer(reply.Content, wrap))

	if reply.Display.Header {
		fmt.Fprintln(w, labelStyle.Render("Sources:"))
		for _, src := range reply.Display.Sources {
			fmt.Fprintln(w, "  "+sourceLine(src))
		}
	}
	return nil
}

func sourceLine(src format.SourceLabel) string {
	if src.Synthetic {
		return src.KnowledgeBase
	}
	line := fmt.Sprintf("%s (%s)", src.Label, src.KnowledgeBase)
	if src.URL != "" {
		line += " " + dimStyle.Render(src.URL)
	}
	return line
}

// renderAnswer formats the reply as markdown, falling back to plain text.
func renderAnswer(content string, wrap int) string {
	if wrap <= 0 {
		wrap = defaultWrap
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return content + "\n"
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content + "\n"
	}
	return rendered
}
