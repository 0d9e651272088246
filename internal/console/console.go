// Package console runs the interactive question loop on a terminal.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bull/ytchat/internal/router"
)

// Asker answers one question.
type Asker interface {
	Ask(ctx context.Context, question string) (*router.Result, error)
}

var quitWords = map[string]bool{"quit": true, "exit": true, "q": true}

// Run prints a banner, then reads questions from in and writes answers to
// out until a quit word, end of input or ctx cancellation. A failed question
// is reported and the loop continues.
func Run(ctx context.Context, in io.Reader, out io.Writer, asker Asker) error {
	fmt.Fprintln(out, "YouTube Video Q&A System")
	fmt.Fprintln(out, "Ask questions about the video. Type 'quit' or 'exit' to stop.")
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("-", 63))

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for {
		fmt.Fprint(out, "\nYour question: \n")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read question: %w", err)
			}
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}

		question := strings.TrimSpace(scanner.Text())
		if quitWords[strings.ToLower(question)] {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}
		if question == "" {
			fmt.Fprintln(out, "Please enter a valid question.")
			continue
		}

		res, err := asker.Ask(ctx, question)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			fmt.Fprintf(out, "Error generating answer: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "\n%s\n", res.Text)
	}
}
