// Command clauseease is a terminal client for the ClauseEase API. It drives
// the same session controller a graphical frontend would, rendering its view
// as plain text.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/clauseease/clauseease/internal/client"
	"github.com/clauseease/clauseease/internal/session"
	"golang.org/x/term"
)

func main() {
	var (
		serverURL = flag.String("server", "http://localhost:8080", "ClauseEase server URL")
		timeout   = flag.Duration("timeout", 60*time.Second, "request timeout")
	)
	flag.Parse()

	store := client.NewFileStore(sessionPath())
	backend := client.New(*serverURL, *timeout)
	ctrl := session.New(backend, session.WithStore(store))

	if ctrl.Restore() {
		fmt.Printf("Welcome back, %s\n", ctrl.User().Name)
	}

	app := &app{ctrl: ctrl, in: bufio.NewReader(os.Stdin)}
	app.run()
}

func sessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "clauseease", "session.json")
}

type app struct {
	ctrl *session.Controller
	in   *bufio.Reader
}

func (a *app) run() {
	fmt.Println("ClauseEase - legal text simplifier. Type 'help' for commands.")
	for {
		fmt.Print("> ")
		line, err := a.in.ReadString('\n')
		if err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		ctx := context.Background()
		cmd, args := fields[0], fields[1:]
		switch cmd {
		case "help":
			a.help()
		case "register":
			a.register(ctx)
		case "login":
			a.login(ctx)
		case "logout":
			a.ctrl.Logout()
			fmt.Println("Logged out.")
		case "whoami":
			a.whoami()
		case "analyze":
			a.analyze(ctx, strings.TrimSpace(strings.TrimPrefix(line, "analyze")))
		case "upload":
			a.upload(ctx, args)
		case "history":
			a.history(ctx)
		case "export":
			a.export(ctx)
		case "quit", "exit":
			return
		default:
			fmt.Printf("Unknown command %q. Type 'help' for commands.\n", cmd)
		}
	}
}

func (a *app) help() {
	fmt.Println(`Commands:
  register            create an account
  login               sign in
  logout              sign out and clear the saved session
  whoami              show the signed-in user
  analyze <text>      analyze pasted text
  upload <path>       analyze a document file
  history             list your past analyses (requires login)
  export              export the last result as a PDF report
  quit                exit`)
}

func (a *app) register(ctx context.Context) {
	a.ctrl.OpenRegister()
	name := a.prompt("Name: ")
	email := a.prompt("Email: ")
	password := a.promptPassword("Password: ")

	a.ctrl.SubmitAuth(ctx, name, email, password)
	if msg := a.ctrl.View().StatusMessage; msg != "" {
		fmt.Println(msg)
	}
	a.ctrl.CloseOverlay()
}

func (a *app) login(ctx context.Context) {
	a.ctrl.OpenLogin()
	email := a.prompt("Email: ")
	password := a.promptPassword("Password: ")

	a.ctrl.SubmitAuth(ctx, "", email, password)
	if msg := a.ctrl.View().StatusMessage; msg != "" {
		fmt.Println(msg)
	}
	if a.ctrl.State() != session.StateAuthenticated {
		// Give the confirmation timer a chance to settle the state.
		time.Sleep(time.Second)
	}
	if a.ctrl.State() != session.StateAuthenticated {
		a.ctrl.CloseOverlay()
	}
}

func (a *app) whoami() {
	user := a.ctrl.User()
	if user == nil {
		fmt.Println("Not logged in.")
		return
	}
	fmt.Printf("%s <%s>\n", user.Name, user.Email)
}

func (a *app) analyze(ctx context.Context, text string) {
	if text == "" {
		text = a.prompt("Text: ")
	}
	a.ctrl.SetTab(session.TabPaste)
	a.ctrl.SetText(text)
	a.ctrl.Analyze(ctx)
	a.renderAnalysis()
}

func (a *app) upload(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: upload <path>")
		return
	}
	content, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Printf("Cannot read %s: %v\n", args[0], err)
		return
	}
	a.ctrl.SetTab(session.TabUpload)
	a.ctrl.SelectFile(filepath.Base(args[0]), content)
	a.ctrl.Analyze(ctx)
	a.renderAnalysis()
}

func (a *app) renderAnalysis() {
	v := a.ctrl.View()
	if v.AnalysisStatus == session.AnalysisError {
		fmt.Println(v.AnalysisError)
		return
	}
	if v.Result == nil {
		return
	}

	r := v.Result
	fmt.Printf("Words: %d  Sentences: %d\n", r.WordCount, r.SentenceCount)
	fmt.Printf("Flesch-Kincaid grade: %.2f\n", r.Readability.FleschKincaidGrade)
	fmt.Printf("Gunning Fog index:    %.2f\n", r.Readability.GunningFog)
	fmt.Printf("Reading ease:         %.2f\n", r.Readability.FleschReadingEase)

	var complex []string
	for _, w := range r.WordAnalysis {
		if w.Complexity == "complex" {
			complex = append(complex, w.Text)
		}
	}
	if len(complex) > 0 {
		fmt.Printf("Complex words: %s\n", strings.Join(complex, ", "))
	}
}

func (a *app) history(ctx context.Context) {
	if err := a.ctrl.LoadHistory(ctx); err != nil {
		fmt.Println(err)
		return
	}
	v := a.ctrl.View()
	if v.NoHistory {
		fmt.Println("No history yet.")
		return
	}
	for _, e := range v.History {
		fmt.Printf("[%s] flesch=%.1f fog=%.1f  %s\n",
			e.CreatedAt.Format("2006-01-02 15:04"), e.FleschScore, e.FogScore, e.TextPreview)
	}
}

func (a *app) export(ctx context.Context) {
	filename, err := a.ctrl.Export(ctx)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("PDF generated: %s\n", filename)
}

func (a *app) prompt(label string) string {
	fmt.Print(label)
	line, _ := a.in.ReadString('\n')
	return strings.TrimSpace(line)
}

// promptPassword reads without echo when stdin is a terminal.
func (a *app) promptPassword(label string) string {
	fmt.Print(label)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		data, err := term.ReadPassword(fd)
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(data))
		}
	}
	line, _ := a.in.ReadString('\n')
	return strings.TrimSpace(line)
}
