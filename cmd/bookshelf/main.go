// Package main is the entry point for the bookshelf command line tool.
//
// bookshelf manages a small personal library: books are added, borrowed,
// returned and removed, and the catalog is kept in a JSON file. Settings are
// read from an optional config.yaml and overridden by command line flags.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		if !isReported(err) {
			fmt.Fprintf(os.Stderr, "bookshelf: %v\n", err)
		}
		os.Exit(exitCode(err))
	}
}

func mainImpl() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()
	ll := &slog.LevelVar{}
	ll.Set(slog.LevelInfo)
	slog.SetDefault(initLogger(os.Stderr, ll))

	a := newApp(os.Stdout, os.Stderr, ll)
	a.interactive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
	return newRootCmd(a).ExecuteContext(ctx)
}

// initLogger returns a colored logger writing to w. Colors are disabled when
// w is not a terminal.
func initLogger(w *os.File, ll *slog.LevelVar) *slog.Logger {
	var out io.Writer = w
	if isatty.IsTerminal(w.Fd()) {
		out = colorable.NewColorable(w)
	}
	return slog.New(tint.NewHandler(out, &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000", // Like time.TimeOnly plus milliseconds.
		NoColor:    !isatty.IsTerminal(w.Fd()),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			skip := false
			switch t := a.Value.Any().(type) {
			case string:
				skip = t == ""
			case time.Time:
				skip = t.IsZero()
			case nil:
				skip = true
			}
			if skip {
				return slog.Attr{}
			}
			return a
		},
	}))
}

func printVersion(w io.Writer) {
	version, goVersion, revision, dirty := getBuildInfo()
	fmt.Fprintf(w, "bookshelf %s\n", version)
	fmt.Fprintf(w, "  Go version: %s\n", goVersion)
	fmt.Fprintf(w, "  Revision:   %s\n", revision)
	if dirty {
		fmt.Fprintf(w, "  Modified:   true\n")
	}
}

func getBuildInfo() (version, goVersion, revision string, dirty bool) {
	version = "unknown"
	goVersion = "unknown"
	revision = "unknown"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	version = info.Main.Version
	if version == "" || version == "(devel)" {
		version = "dev"
	}
	goVersion = info.GoVersion
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	return
}
