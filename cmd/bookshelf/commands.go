package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/maruel/bookshelf/internal/config"
	apperrors "github.com/maruel/bookshelf/internal/errors"
	"github.com/maruel/bookshelf/internal/models"
	"github.com/maruel/bookshelf/internal/storage"
	"github.com/maruel/bookshelf/internal/ui"
)

// Process exit codes.
const (
	exitRuntime = 1
	exitUsage   = 2
)

// exitError carries the process exit code. reported is set when the user was
// already notified and the error must not be printed again.
type exitError struct {
	code     int
	reported bool
	err      error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

// exitCode maps err to a process exit code. Errors returned by a command or
// by setup are wrapped by runtimeOnError, so the remaining ones come from
// cobra itself, e.g. unknown flags or a wrong argument count, and are usage
// errors.
func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUsage
}

func isReported(err error) bool {
	var ee *exitError
	return errors.As(err, &ee) && ee.reported
}

// app holds the state shared by the commands of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer
	level  *slog.LevelVar
	notify *ui.Notifier

	// Replaced in tests.
	confirm     func(question string) (bool, error)
	interactive func() bool

	configPath  string
	catalogPath string
	logLevel    string

	cfgPath string
	cfg     *config.Config
}

func newApp(stdout, stderr io.Writer, ll *slog.LevelVar) *app {
	if ll == nil {
		ll = &slog.LevelVar{}
	}
	return &app{
		stdout:      stdout,
		stderr:      stderr,
		level:       ll,
		notify:      ui.NewNotifier(stdout, stderr),
		confirm:     ui.Confirm,
		interactive: func() bool { return false },
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "bookshelf",
		Short: "Manage a personal library catalog",
		Long: `bookshelf keeps a list of books in a JSON file and tracks which ones
are lent out. Books are referred to by their position in "bookshelf list".`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: runtimeOnError(a.setup),
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Configuration file (default "+config.DefaultPath()+")")
	pf.StringVar(&a.catalogPath, "catalog", "", "Catalog file (default "+storage.DefaultPath+")")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(
		a.addCmd(),
		a.listCmd(),
		a.transitionCmd("borrow", "Lend a book", (*storage.Catalog).Borrow),
		a.transitionCmd("return", "Take a lent book back", (*storage.Catalog).Return),
		a.removeCmd(),
		a.historyCmd(),
		a.journalCmd(),
		a.schemaCmd(),
		a.configCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version and exit",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				printVersion(a.stdout)
			},
		},
	)
	for _, c := range root.Commands() {
		if c.RunE != nil {
			c.RunE = runtimeOnError(c.RunE)
		}
	}
	return root
}

// runtimeOnError classifies the plain errors returned by fn, e.g. an
// unreadable config file or a failed write to stdout, as runtime errors.
func runtimeOnError(fn func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		var ee *exitError
		if err == nil || errors.As(err, &ee) {
			return err
		}
		return runtimeErr(err)
	}
}

// setup loads the configuration and applies the flags on top of it.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	a.cfgPath = a.configPath
	if a.cfgPath == "" {
		a.cfgPath = config.DefaultPath()
	}
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return runtimeErr(err)
	}
	if cmd.Flags().Changed("catalog") {
		if strings.TrimSpace(a.catalogPath) == "" {
			return &exitError{code: exitUsage, err: errors.New("--catalog must not be empty")}
		}
		cfg.Catalog = a.catalogPath
	}
	if cmd.Flags().Changed("log-level") {
		if _, err := config.ParseLevel(a.logLevel); err != nil {
			return &exitError{code: exitUsage, err: fmt.Errorf("--log-level: %w", err)}
		}
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return runtimeErr(fmt.Errorf("invalid config %s: %w", a.cfgPath, err))
	}
	lvl, _ := config.ParseLevel(cfg.LogLevel)
	a.level.Set(lvl)
	a.cfg = cfg
	slog.Debug("Configuration loaded", "path", a.cfgPath, "catalog", cfg.Catalog)
	return nil
}

// openCatalog loads the catalog with the optional history and journal.
// Failing to open either one is reported and the catalog is used without it.
func (a *app) openCatalog() *storage.Catalog {
	opts := []storage.Option{storage.WithReporter(a.notify)}
	if a.cfg.History {
		h, err := storage.OpenHistory(filepath.Dir(a.cfg.Catalog))
		if err != nil {
			a.notify.Report(apperrors.New(apperrors.ErrStorageError, apperrors.SeverityWarning,
				"History", "history is unavailable").Wrap(err))
		} else {
			opts = append(opts, storage.WithHistory(h))
		}
	}
	if a.cfg.Journal != "" {
		j, err := storage.OpenJournal(a.cfg.Journal)
		if err != nil {
			a.notify.Report(apperrors.New(apperrors.ErrStorageError, apperrors.SeverityWarning,
				"Journal", "journal is unavailable").Wrap(err))
		} else {
			opts = append(opts, storage.WithJournal(j))
		}
	}
	return storage.Open(a.cfg.Catalog, opts...)
}

// rejected notifies the user about invalid input and returns a usage error.
func (a *app) rejected(err error) error {
	if e, ok := apperrors.As(err); ok {
		a.notify.Report(e)
		return &exitError{code: exitUsage, reported: true, err: err}
	}
	return &exitError{code: exitUsage, err: err}
}

// failed wraps an error that the catalog already reported.
func failed(err error) error {
	return &exitError{code: exitRuntime, reported: true, err: err}
}

func runtimeErr(err error) error {
	return &exitError{code: exitRuntime, err: err}
}

func (a *app) addCmd() *cobra.Command {
	kind := "physical"
	cmd := &cobra.Command{
		Use:   "add <title> <author>",
		Short: "Add a book to the catalog",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ui.ValidateBook(args[0], args[1]); err != nil {
				return a.rejected(err)
			}
			k, err := ui.ParseKind(kind)
			if err != nil {
				return a.rejected(err)
			}
			c := a.openCatalog()
			b := models.NewBook(args[0], args[1], models.WithKind(k))
			if err := c.Add(b); err != nil {
				return failed(err)
			}
			a.notify.Info("Success", fmt.Sprintf("book '%s' added", b.Title()))
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", kind, "Kind of book (physical, digital)")
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	watch := false
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the books in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.openCatalog()
			if !watch {
				return ui.RenderTable(a.stdout, c.List())
			}
			return storage.Watch(cmd.Context(), c, func(books []*models.Book) {
				if err := ui.RenderTable(a.stdout, books); err != nil {
					slog.WarnContext(cmd.Context(), "Failed to render catalog", "err", err)
				}
			})
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep running and print the list again when the file changes")
	return cmd
}

func (a *app) transitionCmd(name, short string, fn func(*storage.Catalog, int) (models.Outcome, error)) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <n>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.openCatalog()
			i, err := ui.ParseSelection(args[0], c.Len())
			if err != nil {
				return a.rejected(err)
			}
			out, err := fn(c, i)
			a.notify.Outcome(out)
			if err != nil {
				return failed(err)
			}
			return nil
		},
	}
}

func (a *app) removeCmd() *cobra.Command {
	yes := false
	cmd := &cobra.Command{
		Use:   "remove <n>",
		Short: "Remove a book from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.openCatalog()
			i, err := ui.ParseSelection(args[0], c.Len())
			if err != nil {
				return a.rejected(err)
			}
			b, _ := c.At(i)
			if !yes && a.cfg.ConfirmRemove {
				if !a.interactive() {
					return &exitError{code: exitUsage, err: errors.New("not a terminal, use --yes to remove without confirmation")}
				}
				ok, err := a.confirm(fmt.Sprintf("Remove '%s'?", b.Title()))
				if err != nil {
					e := apperrors.Internal("confirmation prompt failed", err)
					a.notify.Report(e)
					return failed(e)
				}
				if !ok {
					return nil
				}
			}
			removed, ok, err := c.Remove(i)
			if err != nil {
				return failed(err)
			}
			if ok {
				a.notify.Info("Removed", fmt.Sprintf("book '%s' removed", removed.Title()))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func (a *app) historyCmd() *cobra.Command {
	n := 10
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the recorded changes of the catalog file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.History {
				return &exitError{code: exitUsage, err: fmt.Errorf("history is disabled, set \"history: true\" in %s", a.cfgPath)}
			}
			h, err := storage.OpenHistory(filepath.Dir(a.cfg.Catalog))
			if err != nil {
				return runtimeErr(err)
			}
			commits, err := h.Log(a.cfg.Catalog, n)
			if err != nil {
				return runtimeErr(err)
			}
			if len(commits) == 0 {
				_, err = fmt.Fprintln(a.stdout, "No history yet.")
				return err
			}
			for _, c := range commits {
				if _, err := fmt.Fprintf(a.stdout, "%s  %s  %s\n", c.Hash[:min(8, len(c.Hash))], c.Date.Local().Format(time.DateTime), c.Message); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", n, "Number of entries to show")
	return cmd
}

func (a *app) journalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "journal",
		Short: "Show the activity journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Journal == "" {
				return &exitError{code: exitUsage, err: fmt.Errorf("journal is disabled, set \"journal\" in %s", a.cfgPath)}
			}
			j, err := storage.OpenJournal(a.cfg.Journal)
			if err != nil {
				return runtimeErr(err)
			}
			if j.Len() == 0 {
				_, err = fmt.Fprintln(a.stdout, "The journal is empty.")
				return err
			}
			for e := range j.Events() {
				if _, err := fmt.Fprintf(a.stdout, "%s  %-6s  %s - %s\n", e.Time.Local().Format(time.DateTime), e.Op, e.Title, e.Author); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (a *app) schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the catalog file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := storage.FileSchema()
			if err != nil {
				return runtimeErr(err)
			}
			_, err = fmt.Fprintf(a.stdout, "%s\n", data)
			return err
		},
	}
}

func (a *app) configCmd() *cobra.Command {
	save := false
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if save {
				if err := a.cfg.Save(a.cfgPath); err != nil {
					return runtimeErr(err)
				}
				a.notify.Info("Saved", a.cfgPath)
				return nil
			}
			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return runtimeErr(err)
			}
			_, err = a.stdout.Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "Write the effective configuration to the configuration file")
	return cmd
}
