package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/erkantaylan/marklite/internal/config"
	"github.com/erkantaylan/marklite/internal/document"
	"github.com/erkantaylan/marklite/internal/export"
	"github.com/erkantaylan/marklite/internal/highlight"
	"github.com/erkantaylan/marklite/internal/toc"
	"github.com/erkantaylan/marklite/internal/tui"
)

var version = "0.1.0"

var cfg *config.Store

var rootCmd = &cobra.Command{
	Use:   "marklite <file.md>",
	Short: "Live markdown viewer and editor",
	Long: `MarkLite serves a live preview of a markdown file in the browser,
with a highlighted code-editing mode, a table of contents and HTML export.`,
	Example: `  marklite README.md
  marklite --port 8080 docs/guide.md`,
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: setup,
	RunE:              runServe,
	SilenceUsage:      true,
}

var exportCmd = &cobra.Command{
	Use:   "export <file.md>",
	Short: "Export a markdown file to standalone HTML",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var tocCmd = &cobra.Command{
	Use:   "toc <file.md>",
	Short: "Print the table of contents",
	Args:  cobra.ExactArgs(1),
	RunE:  runTOC,
}

var highlightCmd = &cobra.Command{
	Use:   "highlight <file.md>",
	Short: "Print the file with markdown syntax colors",
	Args:  cobra.ExactArgs(1),
	RunE:  runHighlight,
}

var viewCmd = &cobra.Command{
	Use:   "view <file.md>",
	Short: "Browse the file and its table of contents in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE:  runView,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default $XDG_CONFIG_HOME/marklite/marklite.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("theme", "", "theme: dark, light, paper")
	rootCmd.Flags().IntP("port", "p", 0, "port to serve on")
	rootCmd.Flags().String("host", "", "address to listen on (default localhost)")

	exportCmd.Flags().StringP("output", "o", "", "output file (default <name>.html next to the input)")
	exportCmd.Flags().Bool("no-footer", false, "omit the export footer")

	rootCmd.AddCommand(exportCmd, tocCmd, highlightCmd, viewCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("config")
	store, err := config.Load(file)
	if err != nil {
		return err
	}
	v := store.Viper()
	for key, flag := range map[string]string{"host": "host", "port": "port", "theme": "theme", "log_level": "log-level"} {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	if err := config.Validate("theme", store.Config().Theme); err != nil {
		return err
	}
	cfg = store

	if level, err := log.ParseLevel(store.Config().LogLevel); err == nil {
		log.SetLevel(level)
	}
	log.SetReportTimestamp(true)
	return nil
}

func openDocument(path string) (*document.Document, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("error resolving path: %w", err)
	}
	return document.Open(absPath)
}

func runServe(cmd *cobra.Command, args []string) error {
	doc, err := openDocument(args[0])
	if err != nil {
		return err
	}
	c := cfg.Config()

	// Create components
	renderer := NewRenderer(c.Theme)
	ws := NewWorkspace(doc, renderer, c.ScrollMargin)
	hub := NewHub()
	watcher := NewWatcher()

	// Start hub
	go hub.Run()

	// Initial render
	hub.Publish(ws.State())

	// Watch for changes
	onChange := func() {
		msg, changed, err := ws.ReloadIfClean()
		if err != nil {
			hub.SetError(err.Error())
			return
		}
		if !changed {
			if ws.Dirty() {
				log.Warn("File changed on disk, keeping unsaved edits", "file", filepath.Base(ws.Path()))
			}
			return
		}
		hub.Publish(msg)
		log.Info("File updated", "file", msg.Filename)
	}

	if err := watcher.Watch(doc.Path, onChange); err != nil {
		return fmt.Errorf("error starting watcher: %w", err)
	}

	// Start server
	server := NewServer(hub, ws, cfg, watcher, c.Port)

	// Graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		watcher.Close()
		server.Shutdown(ctx)
		cancel()
	}()

	fmt.Printf("\n  MarkLite serving %s\n", doc.Name)
	fmt.Printf("  http://%s\n\n", net.JoinHostPort(c.Host, strconv.Itoa(c.Port)))

	if err := server.Start(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	doc, err := openDocument(args[0])
	if err != nil {
		return err
	}
	c := cfg.Config()

	body, err := NewRenderer(c.Theme).Render([]byte(doc.Content))
	if err != nil {
		return fmt.Errorf("render %s: %w", doc.Name, err)
	}
	noFooter, _ := cmd.Flags().GetBool("no-footer")
	title := export.Title(doc.Name)
	page, err := export.HTML(body, title, export.Options{
		Theme:    c.Theme,
		Font:     c.Font,
		FontSize: c.FontSize,
		Footer:   c.ExportFooter && !noFooter,
	})
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		out = filepath.Join(filepath.Dir(doc.Path), title+".html")
	}
	if err := os.WriteFile(out, []byte(page), 0644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	log.Info("Exported", "file", out)
	return nil
}

func runTOC(cmd *cobra.Command, args []string) error {
	doc, err := openDocument(args[0])
	if err != nil {
		return err
	}
	headings := toc.Extract(doc.Content)
	if len(headings) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No headings found")
		return nil
	}
	for _, h := range headings {
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s  (#%s)\n", strings.Repeat("  ", toc.Indent(h.Level)), h.Text, h.ID)
	}
	return nil
}

func runHighlight(cmd *cobra.Command, args []string) error {
	doc, err := openDocument(args[0])
	if err != nil {
		return err
	}
	styles := highlight.NewStyles(cfg.Config().Theme)
	for _, line := range highlight.ClassifyDocument(doc.Content) {
		fmt.Fprintln(cmd.OutOrStdout(), styles.Render(line))
	}
	return nil
}

func runView(cmd *cobra.Command, args []string) error {
	doc, err := openDocument(args[0])
	if err != nil {
		return err
	}
	return tui.Run(doc, cfg.Config().Theme)
}

func main() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
