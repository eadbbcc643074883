package main

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"chatwidget/chatapi"
	"chatwidget/config"
	"chatwidget/markdown"
	"chatwidget/widget"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chatwidget",
		Short: "Host page with an embedded chat widget",
		Long: "Renders a host HTML page in the terminal and embeds the chat widget on top of it.\n" +
			"The bot identity comes from the page's chat-widget.js script tag.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd)
		},
	}

	f := cmd.Flags()
	f.String("page", "", "host HTML page (env CHATWIDGET_PAGE)")
	f.String("embed", "", "embed declaration, overrides the page's own (env CHATWIDGET_EMBED)")
	f.String("endpoint", "", "chat endpoint URL (env CHATWIDGET_ENDPOINT)")
	f.String("ordering", "", "reply ordering: issue or arrival (env CHATWIDGET_ORDERING)")
	f.String("style-url", "", "remote glamour style sheet (env CHATWIDGET_STYLE_URL)")
	f.Duration("http-timeout", 0, "per-exchange timeout, 0 for none (env CHATWIDGET_HTTP_TIMEOUT)")
	f.String("log-file", "", "JSON log file (env CHATWIDGET_LOG_FILE)")
	f.String("log-level", "", "log level (env CHATWIDGET_LOG_LEVEL)")
	f.String("wire-log", "", "JSONL exchange log (env CHATWIDGET_WIRE_LOG)")
	f.String("export-dir", "", "transcript export directory (env CHATWIDGET_EXPORT_DIR)")
	return cmd
}

// applyFlags overrides cfg with the flags that were set explicitly.
func applyFlags(cfg *config.Host, cmd *cobra.Command) {
	f := cmd.Flags()
	strs := map[string]*string{
		"page":       &cfg.Page,
		"embed":      &cfg.Embed,
		"endpoint":   &cfg.Endpoint,
		"ordering":   &cfg.Ordering,
		"style-url":  &cfg.StyleURL,
		"log-file":   &cfg.LogFile,
		"log-level":  &cfg.LogLevel,
		"wire-log":   &cfg.WireLog,
		"export-dir": &cfg.ExportDir,
	}
	for name, dst := range strs {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	if f.Changed("http-timeout") {
		cfg.HTTPTimeout, _ = f.GetDuration("http-timeout")
	}
}

// documents returns the host page shown behind the widget and the document
// the widget reads its identity from. The page file is read once.
func documents(cfg *config.Host) (page, embed string, err error) {
	page, err = cfg.PageDocument()
	if err != nil {
		return "", "", err
	}
	if page == "" {
		page = defaultPage
	}
	return page, cfg.EmbedDocument(page), nil
}

func run(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.LoadHost()
	if err != nil {
		return err
	}
	applyFlags(cfg, cmd)

	logger, logCloser, err := cfg.Logger()
	if err != nil {
		return err
	}
	defer logCloser.Close()
	wireLog, wireCloser, err := cfg.WireLogger()
	if err != nil {
		return err
	}
	defer wireCloser.Close()

	doc, embed, err := documents(cfg)
	if err != nil {
		return err
	}

	client := chatapi.NewClient(cfg.Endpoint,
		chatapi.WithTimeout(cfg.HTTPTimeout),
		chatapi.WithLogger(logger),
	)
	w := widget.New(widget.Options{
		Embed:     embed,
		Exchanger: client,
		Ordering:  widget.ParseOrdering(cfg.Ordering),
		Markdown: []markdown.Option{
			markdown.WithStyleURL(cfg.StyleURL),
			markdown.WithLogger(logger),
		},
		ExportDir: cfg.ExportDir,
		Logger:    logger,
	})

	startup := []DiagnosticMsg{
		{Label: "bot", Message: "identity " + w.BotID().String()},
		{Label: "net", Message: fmt.Sprintf("endpoint %s, ordering %s", client.Endpoint(), widget.ParseOrdering(cfg.Ordering))},
	}
	if cfg.StyleURL != "" {
		startup = append(startup, DiagnosticMsg{Label: "md", Message: "loading style sheet " + cfg.StyleURL})
	}

	logger.Info().Str("endpoint", client.Endpoint()).Str("bot_id", w.BotID().String()).Msg("starting host")
	p := tea.NewProgram(NewModel(parsePage(doc), w, NewWireModel(wireLog), startup...))
	if _, err := p.Run(); err != nil {
		logger.Error().Err(err).Msg("program exited")
		return err
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
