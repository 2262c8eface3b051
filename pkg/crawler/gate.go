package crawler

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// StdinGate blocks the crawl until the operator presses ENTER,
// signalling that the challenge in the browser window was solved.
type StdinGate struct {
	In  io.Reader
	Out io.Writer
}

// Wait prints the challenge banner and blocks on a line of input.
// There is deliberately no timeout; the crawl cannot self-resolve a
// challenge.
func (g *StdinGate) Wait(ctx context.Context) error {
	banner := "============================================================"
	fmt.Fprintf(g.Out, "\n%s\n", banner)
	fmt.Fprintln(g.Out, "CHALLENGE DETECTED!")
	fmt.Fprintln(g.Out, "Please solve the challenge in the browser window.")
	fmt.Fprintln(g.Out, "Press ENTER here when done...")
	fmt.Fprintf(g.Out, "%s\n\n", banner)

	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(g.In).ReadString('\n')
		if err == io.EOF {
			err = nil
		}
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
