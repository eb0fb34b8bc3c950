// client/shell/shell.go
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/vinizap/lumi/client/auth"
	"github.com/vinizap/lumi/client/domain"
	"github.com/vinizap/lumi/client/editor"
	"github.com/vinizap/lumi/client/events"
	httpclient "github.com/vinizap/lumi/client/http"
	"github.com/vinizap/lumi/client/store"
	"golang.org/x/term"
)

const (
	AppName     = "lumi"
	LoadingText = "Loading..."
)

// Editor lets the user change the form's fields.
type Editor interface {
	Edit(ctx context.Context, f *editor.Form) error
}

type Config struct {
	Session *auth.Session
	Auth    *auth.View
	Store   *store.Store
	Form    *editor.Form
	Editor  Editor
	Hub     *events.Hub
	In      io.Reader
	Out     io.Writer
	// Width is the terminal width in columns; 0 means DefaultWidth.
	Width int
	Log   zerolog.Logger
}

// Shell is the interactive front end: a command loop over In and Out that
// drives the auth view while signed out and the notes views once signed in.
type Shell struct {
	session *auth.Session
	auth    *auth.View
	store   *store.Store
	form    *editor.Form
	editor  Editor
	list    *ListView
	nav     Nav
	hub     *events.Hub
	sub     chan events.Message

	in     *bufio.Reader
	out    io.Writer
	secret func(prompt string) (string, error)
	width  int
	log    zerolog.Logger
}

func New(cfg Config) *Shell {
	s := &Shell{
		session: cfg.Session,
		auth:    cfg.Auth,
		store:   cfg.Store,
		form:    cfg.Form,
		editor:  cfg.Editor,
		hub:     cfg.Hub,
		sub:     cfg.Hub.Subscribe(),
		in:      bufio.NewReader(cfg.In),
		out:     cfg.Out,
		width:   cfg.Width,
		log:     cfg.Log.With().Str("component", "shell").Logger(),
	}
	if s.width <= 0 {
		s.width = DefaultWidth
	}
	s.list = NewListView(cfg.Store, cfg.Form, s)

	s.secret = s.readLineSecret
	if f, ok := cfg.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		s.secret = func(prompt string) (string, error) {
			fmt.Fprint(s.out, prompt)
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(s.out)
			return string(b), err
		}
	}
	return s
}

// Close stops listening for state changes.
func (s *Shell) Close() {
	s.hub.Unregister(s.sub)
}

// Run bootstraps the session and then serves commands until quit, end of
// input or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, LoadingText)
	if err := s.session.Bootstrap(ctx); err != nil {
		s.log.Warn().Err(err).Msg("stored session discarded")
	}
	s.sync(ctx)
	if !s.session.Authenticated() {
		s.showAuth()
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(s.out, s.prompt())
		line, err := s.readLine()
		if errors.Is(err, io.EOF) && line == "" {
			fmt.Fprintln(s.out)
			return nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read command: %w", err)
		}

		cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		arg = strings.TrimSpace(arg)
		if cmd == "" {
			continue
		}
		if cmd == "quit" || cmd == "exit" {
			return nil
		}

		if s.session.Authenticated() {
			s.notesCommand(ctx, cmd, arg)
		} else {
			s.authCommand(ctx, cmd, arg)
		}
		s.sync(ctx)
	}
}

func (s *Shell) prompt() string {
	if s.session.Authenticated() {
		return AppName + "> "
	}
	return s.auth.Mode.String() + "> "
}

func (s *Shell) authCommand(ctx context.Context, cmd, arg string) {
	switch cmd {
	case "login":
		s.auth.SetMode(auth.ModeLogin)
		s.submitAuth(ctx, arg)
	case "register":
		s.auth.SetMode(auth.ModeRegister)
		s.submitAuth(ctx, arg)
	case "mode":
		s.auth.Toggle()
		s.showAuth()
	case "help":
		fmt.Fprint(s.out, authHelp)
	default:
		fmt.Fprintf(s.out, "unknown command %q, try help\n", cmd)
	}
}

func (s *Shell) submitAuth(ctx context.Context, email string) {
	if email == "" {
		fmt.Fprint(s.out, "Email: ")
		line, err := s.readLine()
		if err != nil && line == "" {
			return
		}
		email = strings.TrimSpace(line)
	}
	password, err := s.secret("Password: ")
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}

	s.auth.Email = email
	s.auth.Password = password
	if err := s.auth.Submit(ctx); err != nil {
		s.log.Debug().Err(err).Str("mode", s.auth.Mode.String()).Msg("auth submit failed")
	}
	switch {
	case s.auth.Err != "":
		fmt.Fprintf(s.out, "error: %s\n", s.auth.Err)
	case s.auth.Message != "":
		fmt.Fprintln(s.out, s.auth.Message)
	}
}

func (s *Shell) showAuth() {
	fmt.Fprintf(s.out, "%s: %s (type %q or %q, \"mode\" to switch)\n",
		AppName, s.auth.Mode.SubmitLabel(), "login", "register")
}

func (s *Shell) notesCommand(ctx context.Context, cmd, arg string) {
	switch cmd {
	case "ls":
		s.render()
	case "reload":
		s.report(s.store.RefreshAll(ctx))
	case "search":
		s.report(s.store.SetSearch(ctx, arg))
	case "tag":
		if arg == "" {
			fmt.Fprintln(s.out, "usage: tag <name>")
			return
		}
		tag := domain.SanitizeTag(arg)
		if !domain.ValidTag(tag) {
			s.report(fmt.Errorf("%w: %q", domain.ErrInvalidTag, arg))
			return
		}
		s.report(s.store.ToggleTag(ctx, tag))
	case "all":
		s.report(s.store.ClearTags(ctx))
	case "tags":
		RenderSidebar(s.out, s.store.Tags(), s.store.Filter())
	case "sidebar":
		switch arg {
		case "open":
			s.nav.Open()
		case "close":
			s.nav.Close()
		default:
			s.nav.Toggle()
		}
		s.render()
	case "new":
		s.form.Open(nil)
		s.compose(ctx)
	case "edit":
		n, ok := s.cardNumber(arg)
		if !ok {
			return
		}
		if err := s.list.Edit(n); err != nil {
			s.report(err)
			return
		}
		s.compose(ctx)
	case "delete", "rm":
		n, ok := s.cardNumber(arg)
		if !ok {
			return
		}
		deleted, err := s.list.Delete(ctx, n)
		if err != nil {
			s.report(err)
			return
		}
		if deleted {
			fmt.Fprintln(s.out, "Deleted.")
		}
	case "logout":
		if err := s.session.Logout(); err != nil {
			s.report(err)
		}
	case "help":
		fmt.Fprint(s.out, notesHelp)
	default:
		fmt.Fprintf(s.out, "unknown command %q, try help\n", cmd)
	}
}

// compose runs the open form through the editor until it saves or the user
// gives up.
func (s *Shell) compose(ctx context.Context) {
	for s.form.IsOpen() {
		if hints := s.form.Suggestions(s.store.Tags()); len(hints) > 0 {
			fmt.Fprintf(s.out, "Known tags: %s\n", strings.Join(hints, ", "))
		}
		err := s.editor.Edit(ctx, s.form)
		switch {
		case errors.Is(err, editor.ErrBadDraft):
			s.report(err)
		case err != nil:
			s.report(err)
			s.form.Close()
			return
		default:
			if err := s.form.Submit(ctx); err == nil {
				fmt.Fprintln(s.out, "Saved.")
				return
			}
			s.report(s.form.Err)
		}

		again, err := s.Confirm("Edit again?")
		if err != nil || !again {
			s.form.Close()
			fmt.Fprintln(s.out, "Discarded.")
			return
		}
	}
}

func (s *Shell) cardNumber(arg string) (int, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		fmt.Fprintln(s.out, "usage: expects a note number from ls")
		return 0, false
	}
	return n, true
}

// Confirm asks a yes/no question on the shell's own input.
func (s *Shell) Confirm(prompt string) (bool, error) {
	fmt.Fprintf(s.out, "%s [y/N] ", prompt)
	line, err := s.readLine()
	if err != nil && line == "" {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// sync applies queued state changes until none are left and re-renders
// when the listing changed.
func (s *Shell) sync(ctx context.Context) {
	changed := false
	for {
		msgs := events.Drain(s.sub)
		if len(msgs) == 0 {
			break
		}
		for _, m := range msgs {
			switch m.Type {
			case events.SessionStarted:
				s.report(s.store.RefreshAll(ctx))
			case events.SessionEnded:
				s.store.Reset()
				s.nav.Close()
				fmt.Fprintln(s.out, "Signed out.")
				s.showAuth()
			case events.NotesRefreshed, events.TagsRefreshed:
				changed = true
			}
		}
	}
	if changed && s.session.Authenticated() {
		s.render()
	}
}

func (s *Shell) render() {
	user, _ := s.session.User()
	header := AppName + " | " + user.Email
	if f := s.store.Filter(); !f.Empty() {
		header += " | " + describeFilter(f)
	}
	fmt.Fprintln(s.out, header)
	s.list.Render(s.out)
	if s.nav.ShowSidebar(s.width) {
		RenderSidebar(s.out, s.store.Tags(), s.store.Filter())
	}
}

func describeFilter(f store.Filter) string {
	var parts []string
	if f.Search != "" {
		parts = append(parts, strconv.Quote(f.Search))
	}
	for _, t := range f.Tags {
		parts = append(parts, "#"+t)
	}
	return "filter " + strings.Join(parts, " ")
}

func (s *Shell) report(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, httpclient.ErrNetwork) {
		fmt.Fprintf(s.out, "error: %s\n", auth.MsgNetworkError)
		return
	}
	fmt.Fprintf(s.out, "error: %v\n", err)
}

func (s *Shell) readLine() (string, error) {
	line, err := s.in.ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}

func (s *Shell) readLineSecret(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	line, err := s.readLine()
	if err != nil && line == "" {
		return "", err
	}
	return line, nil
}

const authHelp = `commands:
  login [email]      sign in
  register [email]   create an account
  mode               switch between sign-in and register
  quit
`

const notesHelp = `commands:
  ls                 show notes
  reload             fetch notes and tags again
  search <text>      filter by text, empty to clear
  tag <name>         select or deselect a tag
  all                clear the tag selection
  tags               show the tag list
  sidebar [open|close]
                     show or hide the tag list on narrow terminals
  new                write a note
  edit <n>           edit note n
  delete <n>         delete note n
  logout
  quit
`
