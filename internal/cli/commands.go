package cli

import (
	"context"
	"fmt"
	"html"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"journal/internal/config"
	journalSvc "journal/internal/domain/services/journal"
	"journal/internal/outline"
	"journal/internal/session"
)

type command struct {
	usage         string
	summary       string
	minArgs       int
	needsDocument bool
	run           func(c *CLI, ctx context.Context, args []string) error
}

var commands map[string]command

// commands is filled in init because help reads it.
func init() {
	commands = map[string]command{
		"list":    {usage: "list", summary: "List your documents", run: (*CLI).handleList},
		"new":     {usage: "new [title]", summary: "Create a document and open it", run: (*CLI).handleNew},
		"open":    {usage: "open <id>", summary: "Open a document", minArgs: 1, run: (*CLI).handleOpen},
		"show":    {usage: "show", summary: "Print the visible outline with row numbers", needsDocument: true, run: (*CLI).handleShow},
		"add":     {usage: "add <text>", summary: "Append a root bullet", needsDocument: true, run: (*CLI).handleAdd},
		"child":   {usage: "child <row> [text]", summary: "Add a child at the end of a bullet", minArgs: 1, needsDocument: true, run: (*CLI).handleChild},
		"sibling": {usage: "sibling <row> [text]", summary: "Add a bullet right after a bullet", minArgs: 1, needsDocument: true, run: (*CLI).handleSibling},
		"edit":    {usage: "edit <row> <text>", summary: "Replace the text of a bullet", minArgs: 1, needsDocument: true, run: (*CLI).handleEdit},
		"del":     {usage: "del <row>", summary: "Delete a bullet and everything under it", minArgs: 1, needsDocument: true, run: (*CLI).handleDelete},
		"outdent": {usage: "outdent <row>", summary: "Move a bullet one level out", minArgs: 1, needsDocument: true, run: (*CLI).handleOutdent},
		"indent":  {usage: "indent <row>", summary: "Move a bullet under its previous sibling", minArgs: 1, needsDocument: true, run: (*CLI).handleIndent},
		"fold":    {usage: "fold <row>", summary: "Collapse or expand a bullet", minArgs: 1, needsDocument: true, run: (*CLI).handleFold},
		"section": {usage: "section [row] <label>", summary: "Insert a collapsible section", minArgs: 1, needsDocument: true, run: (*CLI).handleSection},
		"attach":  {usage: "attach <row> <file> [image|video]", summary: "Upload a file and attach it to a bullet", minArgs: 2, needsDocument: true, run: (*CLI).handleAttach},
		"resize":  {usage: "resize <media-id> <width> [height|auto] [left|center|right]", summary: "Change the size and alignment of an attachment", minArgs: 2, needsDocument: true, run: (*CLI).handleResize},
		"detach":  {usage: "detach <media-id>", summary: "Remove an attachment", minArgs: 1, needsDocument: true, run: (*CLI).handleDetach},
		"title":   {usage: "title <text>", summary: "Rename the document", minArgs: 1, needsDocument: true, run: (*CLI).handleTitle},
		"save":    {usage: "save", summary: "Save now", needsDocument: true, run: (*CLI).handleSave},
		"export":  {usage: "export <json|opml|markdown|yaml|docx> [file]", summary: "Write the document to a file", minArgs: 1, needsDocument: true, run: (*CLI).handleExport},
		"import":  {usage: "import <file> [opml|markdown]", summary: "Create a document from an OPML or Markdown file", minArgs: 1, run: (*CLI).handleImport},
		"help":    {usage: "help [command]", summary: "Show help", run: (*CLI).handleHelp},
		"quit":    {usage: "quit", summary: "Save and exit", run: (*CLI).handleQuit},
		"exit":    {usage: "exit", summary: "Save and exit", run: (*CLI).handleQuit},
	}
}

func (c *CLI) handleList(ctx context.Context, _ []string) error {
	docs, err := c.cfg.Documents.ListDocuments(ctx, c.cfg.UserID)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintln(c.out, "No documents yet. Use 'new' to start one.")
		return nil
	}

	current := ""
	if c.sess != nil {
		current = c.sess.State().DocID
	}
	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tTITLE\tUPDATED\t")
	for _, d := range docs {
		mark := " "
		if d.ID == current {
			mark = "*"
		}
		title := d.Title
		if d.IsPublished {
			title += " (published)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", mark, d.ID, title, d.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func (c *CLI) handleNew(ctx context.Context, args []string) error {
	doc, err := c.cfg.Documents.CreateDocument(ctx, &journalSvc.CreateDocumentRequest{
		UserID: c.cfg.UserID,
		Title:  strings.Join(args, " "),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Created %q (%s)\n", doc.Title, doc.ID)
	return c.openSession(ctx, doc.ID)
}

func (c *CLI) handleOpen(ctx context.Context, args []string) error {
	if err := c.openSession(ctx, args[0]); err != nil {
		return err
	}
	return c.handleShow(ctx, nil)
}

func (c *CLI) handleShow(_ context.Context, _ []string) error {
	render(c.out, c.sess.State())
	return nil
}

func (c *CLI) handleAdd(ctx context.Context, args []string) error {
	if _, ok := c.sess.AddRoot(bulletContent(args)); !ok {
		return fmt.Errorf("could not add bullet")
	}
	return c.handleShow(ctx, nil)
}

func (c *CLI) handleChild(ctx context.Context, args []string) error {
	row, err := c.row(args[0])
	if err != nil {
		return err
	}
	id, ok := c.sess.InsertChild(row.Node.ID)
	if !ok {
		return fmt.Errorf("could not add a child to row %s", args[0])
	}
	c.fill(id, args[1:])
	return c.handleShow(ctx, nil)
}

func (c *CLI) handleSibling(ctx context.Context, args []string) error {
	row, err := c.row(args[0])
	if err != nil {
		return err
	}
	id, ok := c.sess.InsertSiblingAfter(row.Node.ID)
	if !ok {
		return fmt.Errorf("could not add a bullet after row %s", args[0])
	}
	c.fill(id, args[1:])
	return c.handleShow(ctx, nil)
}

func (c *CLI) fill(id string, words []string) {
	if len(words) == 0 {
		return
	}
	c.sess.Dispatch(session.UpdateContent{ID: id, Content: bulletContent(words)})
}

func (c *CLI) handleEdit(ctx context.Context, args []string) error {
	row, err := c.row(args[0])
	if err != nil {
		return err
	}
	content := bulletContent(args[1:])
	if row.Node.Content == content {
		return nil
	}
	if !c.sess.Dispatch(session.UpdateContent{ID: row.Node.ID, Content: content}) {
		return fmt.Errorf("could not edit row %s", args[0])
	}
	return c.handleShow(ctx, nil)
}

func (c *CLI) handleDelete(ctx context.Context, args []string) error {
	return c.structural(ctx, args[0], "delete", func(id string) session.Action {
		return session.DeleteNode{ID: id}
	})
}

func (c *CLI) handleOutdent(ctx context.Context, args []string) error {
	return c.structural(ctx, args[0], "outdent", func(id string) session.Action {
		return session.Outdent{ID: id}
	})
}

func (c *CLI) handleIndent(ctx context.Context, args []string) error {
	return c.structural(ctx, args[0], "indent", func(id string) session.Action {
		return session.Indent{ID: id}
	})
}

func (c *CLI) structural(ctx context.Context, arg, verb string, action func(id string) session.Action) error {
	row, err := c.row(arg)
	if err != nil {
		return err
	}
	if !c.sess.Dispatch(action(row.Node.ID)) {
		return fmt.Errorf("cannot %s row %s", verb, arg)
	}
	return c.handleShow(ctx, nil)
}

func (c *CLI) handleFold(ctx context.Context, args []string) error {
	row, err := c.row(args[0])
	if err != nil {
		return err
	}
	if !row.HasChildren {
		return fmt.Errorf("row %s has nothing to fold", args[0])
	}
	c.sess.Dispatch(session.ToggleCollapse{ID: row.Node.ID})
	return c.handleShow(ctx, nil)
}

func (c *CLI) handleSection(ctx context.Context, args []string) error {
	target := ""
	if len(args) > 1 {
		if _, err := strconv.Atoi(args[0]); err == nil {
			row, err := c.row(args[0])
			if err != nil {
				return err
			}
			target = row.Node.ID
			args = args[1:]
		}
	}
	if _, _, ok := c.sess.InsertSection(target, bulletContent(args)); !ok {
		return fmt.Errorf("could not insert section")
	}
	return c.handleShow(ctx, nil)
}

func (c *CLI) handleAttach(ctx context.Context, args []string) error {
	row, err := c.row(args[0])
	if err != nil {
		return err
	}
	path := args[1]

	kind, err := mediaKind(path, args[2:])
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() > config.MaxUploadSize {
		return fmt.Errorf("%s is larger than %d MiB", path, config.MaxUploadSize>>20)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	id, done, err := c.sess.Upload(ctx, kind, row.Node.ID, filepath.Base(path), data)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Uploading %s...\n", id)
	res := <-done
	if res.Err != nil {
		return res.Err
	}
	fmt.Fprintf(c.out, "Attached %s %s (%dpx)\n", kind, res.Value.ID, res.Value.Width)
	return nil
}

// mediaKind takes the kind from an explicit argument or the file type.
func mediaKind(path string, args []string) (outline.MediaKind, error) {
	if len(args) > 0 {
		kind := outline.MediaKind(strings.ToLower(args[0]))
		if !kind.Valid() {
			return "", fmt.Errorf("unknown media kind %q (image or video)", args[0])
		}
		return kind, nil
	}
	typ := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	switch {
	case strings.HasPrefix(typ, "image/"):
		return outline.MediaImage, nil
	case strings.HasPrefix(typ, "video/"):
		return outline.MediaVideo, nil
	}
	return "", fmt.Errorf("cannot tell whether %s is an image or a video; pass the kind", filepath.Base(path))
}

var alignments = map[string]int{"left": 0, "center": 50, "right": 100}

func (c *CLI) handleResize(ctx context.Context, args []string) error {
	kind, err := c.attachmentKind(args[0])
	if err != nil {
		return err
	}
	width, err := dimension(args[1])
	if err != nil {
		return err
	}
	p := outline.Placement{Width: width}

	for _, arg := range args[2:] {
		if left, ok := alignments[arg]; ok {
			p.Left = &left
			continue
		}
		if arg == "auto" {
			p.Height = nil
			continue
		}
		h, err := dimension(arg)
		if err != nil {
			return err
		}
		p.Height = &h
	}

	if !c.sess.Dispatch(session.ResizeMedia{Kind: kind, ID: args[0], Placement: p}) {
		return fmt.Errorf("could not resize %s", args[0])
	}
	return c.handleShow(ctx, nil)
}

func dimension(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSuffix(arg, "px"))
	if err != nil || n < 1 || n > config.MaxMediaDimension {
		return 0, fmt.Errorf("size must be between 1 and %d pixels, got %q", config.MaxMediaDimension, arg)
	}
	return n, nil
}

func (c *CLI) handleDetach(ctx context.Context, args []string) error {
	kind, err := c.attachmentKind(args[0])
	if err != nil {
		return err
	}
	if !c.sess.Detach(ctx, kind, args[0]) {
		return fmt.Errorf("could not detach %s", args[0])
	}
	fmt.Fprintf(c.out, "Detached %s\n", args[0])
	return nil
}

func (c *CLI) attachmentKind(id string) (outline.MediaKind, error) {
	st := c.sess.State()
	if _, ok := st.Images.Get(id); ok {
		return outline.MediaImage, nil
	}
	if _, ok := st.Videos.Get(id); ok {
		return outline.MediaVideo, nil
	}
	return "", fmt.Errorf("no attachment %s", id)
}

func (c *CLI) handleTitle(_ context.Context, args []string) error {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if utf8.RuneCountInString(title) > config.MaxTitleLength {
		return fmt.Errorf("title is longer than %d characters", config.MaxTitleLength)
	}
	c.sess.Dispatch(session.SetTitle{Title: title})
	c.updatePrompt()
	return nil
}

func (c *CLI) handleSave(ctx context.Context, _ []string) error {
	saved, err := c.saver.Flush(ctx)
	if err != nil {
		return err
	}
	if saved {
		fmt.Fprintln(c.out, "Saved.")
	} else {
		fmt.Fprintln(c.out, "Nothing to save.")
	}
	return nil
}

func (c *CLI) handleExport(ctx context.Context, args []string) error {
	if _, err := c.saver.Flush(ctx); err != nil {
		return err
	}
	file, err := c.cfg.Export.Export(ctx, c.cfg.UserID, c.sess.State().DocID, args[0])
	if err != nil {
		return err
	}
	path := file.Filename
	if len(args) > 1 {
		path = args[1]
	}
	if err := os.WriteFile(path, file.Data, 0644); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Wrote %s (%d bytes)\n", path, len(file.Data))
	return nil
}

func (c *CLI) handleImport(ctx context.Context, args []string) error {
	path := args[0]
	format := ""
	if len(args) > 1 {
		format = args[1]
	} else {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".opml", ".xml":
			format = journalSvc.FormatOPML
		case ".md", ".markdown", ".txt":
			format = journalSvc.FormatMarkdown
		default:
			return fmt.Errorf("cannot tell the format of %s; pass opml or markdown", filepath.Base(path))
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := c.cfg.Export.Import(ctx, &journalSvc.ImportRequest{
		UserID: c.cfg.UserID,
		Format: format,
		Body:   f,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Imported %q (%s, %d bullets)\n", doc.Title, doc.ID, doc.Stats.Bullets)
	return c.handleOpen(ctx, []string{doc.ID})
}

func (c *CLI) handleHelp(_ context.Context, args []string) error {
	if len(args) > 0 {
		cmd, ok := commands[args[0]]
		if !ok {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		fmt.Fprintf(c.out, "%s\n  %s\n", cmd.usage, cmd.summary)
		return nil
	}

	names := make([]string, 0, len(commands))
	for name := range commands {
		if name != "exit" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(tw, "  %s\t%s\n", commands[name].usage, commands[name].summary)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Rows are the numbers printed by 'show'. Quote text to keep spaces.")
	return nil
}

func (c *CLI) handleQuit(ctx context.Context, _ []string) error {
	if err := c.closeSession(ctx); err != nil {
		return err
	}
	return ErrExit
}

// row resolves a visible row number.
func (c *CLI) row(arg string) (outline.Row, error) {
	rows := c.sess.State().Rows()
	n, err := strconv.Atoi(arg)
	if err != nil {
		return outline.Row{}, fmt.Errorf("expected a row number, got %q", arg)
	}
	if n < 1 || n > len(rows) {
		if len(rows) == 0 {
			return outline.Row{}, fmt.Errorf("the outline is empty (use 'add <text>')")
		}
		return outline.Row{}, fmt.Errorf("row %d out of range (1-%d)", n, len(rows))
	}
	return rows[n-1], nil
}

// bulletContent turns typed words into bullet HTML.
func bulletContent(words []string) string {
	return html.EscapeString(strings.Join(words, " "))
}
