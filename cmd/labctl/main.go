// Package main provides a one-shot command line front end to the lab drills
// and the book shelf.
//
// Usage:
//
//	go run ./cmd/labctl books [--url URL] [--timeout 10s]
//	go run ./cmd/labctl multiples 27 -54 10
//	go run ./cmd/labctl range 1 20
//	go run ./cmd/labctl matrix 5 [--seed 42]
//	go run ./cmd/labctl pages
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/labdesk/labdesk-server/internal/config"
	domainerrors "github.com/labdesk/labdesk-server/internal/errors"
	"github.com/labdesk/labdesk-server/internal/logger"
	"github.com/labdesk/labdesk-server/internal/menu"
	"github.com/labdesk/labdesk-server/internal/metadata/jsonbin"
	"github.com/labdesk/labdesk-server/internal/search"
	"github.com/labdesk/labdesk-server/internal/service"
)

// defaultMaxRangeSpan matches the server default.
const defaultMaxRangeSpan = 100_000

var errUsage = errors.New("usage: labctl <books|multiples|range|matrix|pages> [args]")

func main() {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	log := logger.New(logger.Config{
		Writer: os.Stderr,
		Level:  logger.ParseLevel(level),
	})

	if err := run(context.Background(), os.Args[1:], os.Stdout, log.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "labctl: %v\n", err)
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer, log *slog.Logger) error {
	if len(args) == 0 {
		return errUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "books":
		return runBooks(ctx, rest, out, log)
	case "multiples":
		return runMultiples(rest, out, log)
	case "range":
		return runRange(rest, out, log)
	case "matrix":
		return runMatrix(rest, out, log)
	case "pages":
		return runPages(out)
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

func runBooks(ctx context.Context, args []string, out io.Writer, log *slog.Logger) error {
	fs := flag.NewFlagSet("books", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	url := fs.String("url", config.DefaultSourceURL, "URL of the book JSON document")
	timeout := fs.Duration("timeout", 10*time.Second, "Fetch timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client := jsonbin.New(log, jsonbin.Options{
		URL:       *url,
		AccessKey: os.Getenv("BOOKS_ACCESS_KEY"),
		MasterKey: os.Getenv("BOOKS_MASTER_KEY"),
		Timeout:   *timeout,
	})
	defer client.Close()

	index := search.NewSearchIndex(search.Options{Logger: log})
	defer index.Close()

	shelf := service.NewShelfService(client, index, log)
	snapshot, err := shelf.Load(ctx)
	if err != nil {
		return describe(err)
	}

	fmt.Fprint(out, renderShelf(snapshot))
	return nil
}

func runMultiples(args []string, out io.Writer, log *slog.Logger) error {
	if len(args) > 3 {
		return fmt.Errorf("multiples takes at most three numbers: %w", errUsage)
	}
	inputs := make([]string, 3)
	copy(inputs, args)

	exercises := service.NewExerciseService(log, defaultMaxRangeSpan, nil)
	result, err := exercises.Multiples(service.MultiplesRequest{
		First:  inputs[0],
		Second: inputs[1],
		Third:  inputs[2],
	})
	if err != nil {
		return describe(err)
	}

	fmt.Fprintf(out, "Кратних 27: %d\nВід'ємних: %d\n", result.Multiples, result.Negatives)
	return nil
}

func runRange(args []string, out io.Writer, log *slog.Logger) error {
	fs := flag.NewFlagSet("range", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	maxSpan := fs.Float64("max-span", defaultMaxRangeSpan, "Largest allowed span")
	if err := fs.Parse(reorder(args)); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("range takes two bounds: %w", errUsage)
	}

	exercises := service.NewExerciseService(log, *maxSpan, nil)
	result, err := exercises.Range(service.RangeRequest{Start: fs.Arg(0), End: fs.Arg(1)})
	if err != nil {
		return describe(err)
	}

	fmt.Fprint(out, renderRange(result))
	return nil
}

func runMatrix(args []string, out io.Writer, log *slog.Logger) error {
	fs := flag.NewFlagSet("matrix", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	seed := fs.Uint64("seed", 0, "Seed for a reproducible matrix")
	if err := fs.Parse(reorder(args)); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("matrix takes a size: %w", errUsage)
	}

	req := service.MatrixRequest{Size: fs.Arg(0)}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			req.Seed = seed
		}
	})

	exercises := service.NewExerciseService(log, defaultMaxRangeSpan, nil)
	result, err := exercises.Matrix(req)
	if err != nil {
		return describe(err)
	}

	fmt.Fprint(out, renderMatrix(result))
	return nil
}

func runPages(out io.Writer) error {
	registry := menu.NewRegistry(os.Getenv("MENU_NOTE"))
	fmt.Fprint(out, renderPages(registry))
	return nil
}

// reorder moves flags ahead of positional arguments so "matrix 5 --seed 1"
// parses the same as "matrix --seed 1 5". Negative numbers stay positional
// and sit behind a "--" terminator.
func reorder(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(a) > 1 && a[0] == '-' && !isNumber(a) {
			flags = append(flags, a)
			if !strings.Contains(a, "=") && i+1 < len(args) {
				flags = append(flags, args[i+1])
				i++
			}
			continue
		}
		positional = append(positional, a)
	}
	return append(append(flags, "--"), positional...)
}

func isNumber(s string) bool {
	c := s[1]
	return (c >= '0' && c <= '9') || c == '.'
}

// describe unwraps a domain error to the message a user should see.
func describe(err error) error {
	return errors.New(domainerrors.Message(err))
}
