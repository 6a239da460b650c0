package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/peterh/liner"
	"golang.org/x/sync/errgroup"
)

const historyFile = ".stack_history"

func main() {
	var timeout time.Duration
	var trace, noPrelude bool
	var expr string
	flag.DurationVar(&timeout, "timeout", 0, "specify a time limit")
	flag.BoolVar(&trace, "trace", false, "enable trace logging")
	flag.StringVar(&expr, "e", "", "evaluate the given source text and exit")
	flag.BoolVar(&noPrelude, "no-prelude", false, "skip loading the standard prelude")
	flag.Parse()

	var opts = []Option{
		WithOutput(os.Stdout),
	}
	if trace {
		opts = append(opts, WithLogf(log.Printf))
	}
	if !noPrelude {
		opts = append(opts, WithPrelude(PreludeSource))
	}
	eng, err := New(opts...)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	switch {
	case expr != "":
		err = runSource(ctx, eng, expr)
	case flag.NArg() > 0 && flag.Arg(0) != "-":
		var body []byte
		if body, err = os.ReadFile(flag.Arg(0)); err == nil {
			err = runSource(ctx, eng, string(body))
		}
	case flag.NArg() > 0:
		var body []byte
		if body, err = io.ReadAll(os.Stdin); err == nil {
			err = runSource(ctx, eng, string(body))
		}
	default:
		err = repl(ctx, eng)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// runSource parses and runs one source text, cancelling the run when
// interrupted or terminated.
func runSource(ctx context.Context, eng *Engine, src string) error {
	prog, err := Parse(src)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer cancel()
		_, err := eng.Run(ctx, prog)
		return err
	})
	group.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sig)
		select {
		case s := <-sig:
			return fmt.Errorf("interrupted by %v", s)
		case <-ctx.Done():
			return nil
		}
	})
	return group.Wait()
}

const (
	promptMain = ">>> "
	promptCont = "... "
)

// repl reads programs interactively, running each against the same
// engine so definitions and stack contents carry over between inputs.
func repl(ctx context.Context, eng *Engine) error {
	rl := liner.NewLiner()
	defer rl.Close()
	rl.SetCtrlCAborts(true)

	historyPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyPath = filepath.Join(home, historyFile)
		if f, err := os.Open(historyPath); err == nil {
			rl.ReadHistory(f)
			f.Close()
		}
	}
	defer func() {
		if historyPath == "" {
			return
		}
		if f, err := os.Create(historyPath); err == nil {
			rl.WriteHistory(f)
			f.Close()
		}
	}()

	for {
		prog, src, err := readProgram(rl)
		switch {
		case err == io.EOF:
			fmt.Println()
			return nil
		case errors.Is(err, liner.ErrPromptAborted):
			continue
		case err != nil:
			var parseErr *ParseError
			if errors.As(err, &parseErr) {
				fmt.Fprintf(os.Stderr, "parse error: %v\n", parseErr)
				continue
			}
			return err
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		rl.AppendHistory(src)

		if v, err := eng.Run(ctx, prog); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		} else if v != nil {
			fmt.Println(v)
		}
	}
}

// readProgram prompts for a line and keeps prompting for continuation
// lines for as long as the accumulated text parses as incomplete, so an
// open procedure, list, or string can span lines.
func readProgram(rl *liner.State) (Program, string, error) {
	src, err := rl.Prompt(promptMain)
	if err != nil {
		return Program{}, "", err
	}
	for {
		prog, err := Parse(src)
		if err == nil {
			return prog, src, nil
		}
		var parseErr *ParseError
		if !errors.As(err, &parseErr) || !parseErr.Incomplete {
			return Program{}, src, err
		}
		more, err := rl.Prompt(promptCont)
		if err != nil {
			return Program{}, src, err
		}
		src += "\n" + more
	}
}
