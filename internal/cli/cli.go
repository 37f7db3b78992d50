// Package cli is the interactive terminal editor. It keeps one editing
// session open at a time and saves it in the background as the outline
// changes.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/chzyer/readline"

	journalRepo "journal/internal/domain/repositories/journal"
	journalSvc "journal/internal/domain/services/journal"
	"journal/internal/outline"
	"journal/internal/session"
)

// ErrExit is returned by Execute when the user asked to leave.
var ErrExit = errors.New("exit requested")

var errNoDocument = errors.New("no document open (use 'open <id>' or 'new [title]')")

// Config wires the editor to storage.
type Config struct {
	Documents journalSvc.DocumentService
	Export    journalSvc.ExportService
	Store     journalRepo.DocumentRepository
	Media     session.MediaStore // nil disables attach
	IDs       outline.IDGenerator
	UserID    string

	AutoSaveDelay time.Duration
	Logger        *slog.Logger
	Out           io.Writer
}

type CLI struct {
	cfg    Config
	out    io.Writer
	logger *slog.Logger
	Prompt string

	sess   *session.Session
	saver  *session.AutoSaver
	cancel context.CancelFunc
}

func New(cfg Config) *CLI {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	if cfg.IDs == nil {
		cfg.IDs = outline.UUIDGenerator{}
	}
	c := &CLI{
		cfg:    cfg,
		out:    cfg.Out,
		logger: cfg.Logger,
	}
	c.updatePrompt()
	return c
}

// Run reads commands from rl until the user quits or input ends. The open
// document is saved before Run returns.
func (c *CLI) Run(ctx context.Context, rl *readline.Instance) error {
	defer c.closeSession(context.WithoutCancel(ctx))

	for {
		rl.SetPrompt(c.Prompt)
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				fmt.Fprintln(c.out, "Use 'quit' to exit.")
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		err = c.Execute(ctx, line)
		if errors.Is(err, ErrExit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(c.out, "Error:", err)
		}
	}
}

// Execute runs one command line.
func (c *CLI) Execute(ctx context.Context, line string) error {
	args := ParseArgs(strings.TrimSpace(line))
	if len(args) == 0 {
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command: %s (try 'help')", args[0])
	}
	if cmd.needsDocument && c.sess == nil {
		return errNoDocument
	}
	if len(args)-1 < cmd.minArgs {
		return fmt.Errorf("usage: %s", cmd.usage)
	}
	return cmd.run(c, ctx, args[1:])
}

// ParseArgs splits input on spaces. Double quotes group words.
func ParseArgs(input string) []string {
	var args []string
	var current strings.Builder
	inQuotes, quoted := false, false

	for _, r := range input {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			quoted = true
		case r == ' ' && !inQuotes:
			if current.Len() > 0 || quoted {
				args = append(args, current.String())
				current.Reset()
			}
			quoted = false
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 || quoted {
		args = append(args, current.String())
	}
	return args
}

// Completer completes command names.
func Completer() readline.AutoCompleter {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	items := make([]readline.PrefixCompleterInterface, 0, len(names))
	for _, name := range names {
		items = append(items, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(items...)
}

func (c *CLI) updatePrompt() {
	if c.sess == nil {
		c.Prompt = "journal> "
		return
	}
	title := c.sess.State().Title
	if title == "" {
		title = c.sess.State().DocID
	}
	if len([]rune(title)) > 24 {
		title = string([]rune(title)[:24]) + "…"
	}
	c.Prompt = fmt.Sprintf("journal:%s> ", title)
}

// openSession replaces the current session with one on doc.
func (c *CLI) openSession(ctx context.Context, documentID string) error {
	doc, err := c.cfg.Store.Get(ctx, documentID, c.cfg.UserID)
	if err != nil {
		return err
	}
	if err := c.closeSession(ctx); err != nil {
		return err
	}

	sess, report := session.Open(doc, session.Config{
		UserID: c.cfg.UserID,
		Store:  c.cfg.Store,
		Media:  c.cfg.Media,
		IDs:    c.cfg.IDs,
		Logger: c.logger,
	})
	saveCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.sess = sess
	c.cancel = cancel
	c.saver = session.NewAutoSaver(saveCtx, sess,
		session.WithDelay(c.cfg.AutoSaveDelay),
		session.WithOnSaved(func(rev uint64) {
			c.logger.Debug("autosaved", "document_id", documentID, "revision", rev)
		}),
		session.WithOnError(func(err error) {
			c.logger.Error("autosave failed", "document_id", documentID, "error", err)
		}),
	)

	for _, w := range report.Warnings {
		fmt.Fprintln(c.out, "warning:", w)
	}
	c.logger.Info("document opened", "document_id", documentID)
	c.updatePrompt()
	return nil
}

// closeSession saves and releases the current session.
func (c *CLI) closeSession(ctx context.Context) error {
	if c.sess == nil {
		return nil
	}
	_, err := c.saver.Flush(ctx)
	if err != nil {
		return fmt.Errorf("save %s: %w", c.sess.State().DocID, err)
	}
	c.saver.Close()
	c.cancel()
	c.sess, c.saver, c.cancel = nil, nil, nil
	c.updatePrompt()
	return nil
}
