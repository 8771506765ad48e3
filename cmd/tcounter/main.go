// Package main provides the CLI entrypoint for tcounter.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/tcounter/internal/config"
	"github.com/verte-zerg/tcounter/internal/counter"
	"github.com/verte-zerg/tcounter/internal/dashboard"
	"github.com/verte-zerg/tcounter/internal/feed"
	"github.com/verte-zerg/tcounter/internal/model"
	"github.com/verte-zerg/tcounter/internal/report"
	"github.com/verte-zerg/tcounter/internal/session"
	"github.com/verte-zerg/tcounter/internal/shutdown"
	"github.com/verte-zerg/tcounter/internal/snapshot"
	"github.com/verte-zerg/tcounter/internal/store"
	"github.com/verte-zerg/tcounter/internal/wordlist"
)

const (
	defaultDuration    = 300
	defaultPersistence = "file"
	defaultTop         = 10
	defaultLanguage    = "en"
	defaultFeedType    = "stdin"
	defaultLogLevel    = "info"
	defaultUserAgent   = "tcounter"
	defaultHistoryLast = 20
)

var (
	configPath string

	runDuration      int
	runPersistence   string
	runSnapshot      string
	runTop           int
	runLanguage      string
	runStopWords     []string
	runStopWordsFile string
	runSignals       []string
	runIdleDeadline  bool
	runFeedType      string
	runFeedPath      string
	runFeedURL       string
	runFeedToken     string
	runLogLevel      string
	runLogFile       string
	runHistory       bool
	runHistoryDB     string
	runTUI           bool

	topCount    int
	topSnapshot string

	historyLast int
	historyDB   string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tcounter",
		Short:         "Count word frequencies over a live message stream",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runSessionCmd,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "config file path")

	flags := rootCmd.Flags()
	flags.IntVar(&runDuration, "duration", defaultDuration, "session length in seconds")
	flags.StringVar(&runPersistence, "persistence", defaultPersistence, "snapshot persistence: none, file or lazy")
	flags.StringVar(&runSnapshot, "snapshot", config.DefaultSnapshotPath(), "snapshot file path")
	flags.IntVar(&runTop, "top", defaultTop, "number of words in the report")
	flags.StringVar(&runLanguage, "language", defaultLanguage, "language filter passed to the feed")
	flags.StringSliceVar(&runStopWords, "stop-words", nil, "comma-separated stop words")
	flags.StringVar(&runStopWordsFile, "stop-words-file", "", "file with one stop word per line")
	flags.StringSliceVar(&runSignals, "signals", shutdown.DefaultSignals, "signals that end the session")
	flags.BoolVar(&runIdleDeadline, "idle-deadline", false, "end the session at the deadline even without new messages")
	flags.StringVar(&runFeedType, "feed", defaultFeedType, "feed type: stdin, file or http")
	flags.StringVar(&runFeedPath, "feed-path", "", "input file for the file feed")
	flags.StringVar(&runFeedURL, "feed-url", "", "stream URL for the http feed")
	flags.StringVar(&runFeedToken, "feed-token", "", "bearer token for the http feed")
	flags.StringVar(&runLogLevel, "log-level", defaultLogLevel, "log level: debug, info, warn or error")
	flags.StringVar(&runLogFile, "log-file", "", "log file path (default: stderr)")
	flags.BoolVar(&runHistory, "history", true, "record the session in the history database")
	flags.StringVar(&runHistoryDB, "history-db", config.DefaultDBPath(), "history database path")
	flags.BoolVar(&runTUI, "tui", false, "show a live dashboard while counting")

	rootCmd.AddCommand(newTopCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

type feedSettings struct {
	Type      string
	Path      string
	URL       string
	Token     string
	UserAgent string
}

func runSessionCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "duration", &runDuration, fileCfg.Session.Duration)
	applyStringConfig(cmd, "persistence", &runPersistence, fileCfg.Session.Persistence)
	applyStringConfig(cmd, "snapshot", &runSnapshot, fileCfg.Session.Snapshot)
	applyIntConfig(cmd, "top", &runTop, fileCfg.Session.Top)
	applyStringConfig(cmd, "language", &runLanguage, fileCfg.Session.Language)
	applyStringsConfig(cmd, "stop-words", &runStopWords, fileCfg.Session.StopWords)
	applyStringConfig(cmd, "stop-words-file", &runStopWordsFile, fileCfg.Session.StopWordsFile)
	applyStringsConfig(cmd, "signals", &runSignals, fileCfg.Session.Signals)
	applyBoolConfig(cmd, "idle-deadline", &runIdleDeadline, fileCfg.Session.IdleDeadline)
	applyStringConfig(cmd, "feed", &runFeedType, fileCfg.Feed.Type)
	applyStringConfig(cmd, "feed-path", &runFeedPath, fileCfg.Feed.Path)
	applyStringConfig(cmd, "feed-url", &runFeedURL, fileCfg.Feed.URL)
	applyStringConfig(cmd, "feed-token", &runFeedToken, fileCfg.Feed.Token)
	applyStringConfig(cmd, "log-level", &runLogLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &runLogFile, fileCfg.Log.File)
	applyBoolConfig(cmd, "history", &runHistory, fileCfg.History.Enabled)
	applyStringConfig(cmd, "history-db", &runHistoryDB, fileCfg.History.DB)

	userAgent := defaultUserAgent
	if fileCfg.Feed.UserAgent != nil {
		userAgent = *fileCfg.Feed.UserAgent
	}
	fs := feedSettings{Type: runFeedType, Path: runFeedPath, URL: runFeedURL, Token: runFeedToken, UserAgent: userAgent}

	cfg, err := buildSessionConfig()
	if err != nil {
		return err
	}
	if err := validateFeed(fs, runTUI, cmd.InOrStdin()); err != nil {
		return err
	}

	logger, closeLog, err := newLogger(runLogLevel, runLogFile, runTUI)
	if err != nil {
		return err
	}
	defer closeLog()

	src, closeSrc, err := newSource(fs, cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeSrc(); cerr != nil {
			logger.Warn("failed to close feed input", "err", cerr)
		}
	}()

	var out io.Writer = cmd.OutOrStdout()
	var deferred bytes.Buffer
	if runTUI {
		out = &deferred
	}

	snapStore := snapshot.NewStore(cfg.SnapshotPath, cfg.Persistence, cfg.Top, out, logger)
	coord := shutdown.New(cfg.Duration)
	sess := session.New(cfg, src, snapStore, coord, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	coord.Watch(ctx, cfg.ShutdownSignals...)

	var res session.Result
	if runTUI {
		res, err = runWithDashboard(ctx, sess, coord, cfg.Top)
		if _, werr := io.Copy(cmd.OutOrStdout(), &deferred); werr != nil {
			logErrf("failed to write report: %v\n", werr)
		}
		if err != nil {
			return err
		}
	} else {
		res = sess.Run(ctx)
	}

	if runHistory {
		recordHistory(ctx, logger, runHistoryDB, cfg, res)
	}
	return nil
}

func runWithDashboard(ctx context.Context, sess *session.Session, coord *shutdown.Coordinator, top int) (session.Result, error) {
	view := dashboard.NewModel(top, func() { coord.Schedule(shutdown.ReasonUser) })
	program := tea.NewProgram(view, tea.WithAltScreen())
	sess.SetObserver(func(p session.Progress) {
		program.Send(dashboard.ProgressMsg(p))
	}, 0)

	done := make(chan session.Result, 1)
	go func() {
		done <- sess.Run(ctx)
	}()
	if _, err := program.Run(); err != nil {
		coord.Schedule(shutdown.ReasonUser)
		<-done
		return session.Result{}, fmt.Errorf("failed to run dashboard: %w", err)
	}
	return <-done, nil
}

func recordHistory(ctx context.Context, logger *slog.Logger, dbPath string, cfg model.Config, res session.Result) {
	st, err := store.Open(dbPath)
	if err != nil {
		logger.Error("failed to open history db", "path", dbPath, "err", err)
		return
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Warn("failed to close history db", "err", cerr)
		}
	}()
	if _, err := st.InsertSession(ctx, sessionRecord(cfg, res)); err != nil {
		logger.Error("failed to record session", "err", err)
	}
}

func sessionRecord(cfg model.Config, res session.Result) model.SessionRecord {
	rec := model.SessionRecord{
		StartedAt:     res.StartedAt,
		EndedAt:       res.EndedAt,
		Reason:        res.Reason,
		Persistence:   cfg.Persistence.String(),
		Messages:      res.Messages,
		Tokens:        res.Tokens,
		DistinctWords: res.Distinct,
		TopWords:      res.Top,
	}
	if res.SaveErr != nil {
		rec.SaveError = res.SaveErr.Error()
	}
	return rec
}

func newTopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the most frequent words in the snapshot",
		Args:  cobra.NoArgs,
		RunE:  runTopCmd,
	}
	cmd.Flags().IntVarP(&topCount, "n", "n", defaultTop, "number of words")
	cmd.Flags().StringVar(&topSnapshot, "snapshot", "", "snapshot file path (default: from config)")
	return cmd
}

func runTopCmd(cmd *cobra.Command, _ []string) error {
	if topCount <= 0 {
		return fmt.Errorf("--n must be > 0")
	}
	path := topSnapshot
	if path == "" {
		fileCfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		path = config.DefaultSnapshotPath()
		if fileCfg.Session.Snapshot != nil {
			path = *fileCfg.Session.Snapshot
		}
	}
	counts, err := snapshot.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load snapshot %s: %w", path, err)
	}
	tbl := counter.FromSnapshot(counts)
	return report.WriteTable(cmd.OutOrStdout(), tbl.TopK(topCount), tbl.Total())
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded counting sessions",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLast, "last", defaultHistoryLast, "limit to last N sessions (0 for all)")
	cmd.Flags().StringVar(&historyDB, "db", "", "history database path (default: from config)")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	path := historyDB
	if path == "" {
		fileCfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		path = config.DefaultDBPath()
		if fileCfg.History.DB != nil {
			path = *fileCfg.History.DB
		}
	}
	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	sessions, err := st.ListSessions(cmd.Context(), historyLast)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(sessions) == 0 {
		logErrln("No sessions recorded yet.")
		return nil
	}
	return report.WriteSessions(cmd.OutOrStdout(), sessions)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := configPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o600); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func buildSessionConfig() (model.Config, error) {
	if runDuration < 0 {
		return model.Config{}, fmt.Errorf("--duration must be >= 0")
	}
	if runTop <= 0 {
		return model.Config{}, fmt.Errorf("--top must be > 0")
	}
	mode, err := model.ParsePersistenceMode(runPersistence)
	if err != nil {
		return model.Config{}, fmt.Errorf("--persistence: %w", err)
	}
	if mode != model.PersistNone && strings.TrimSpace(runSnapshot) == "" {
		return model.Config{}, fmt.Errorf("--snapshot must not be empty")
	}
	sigs, err := shutdown.ParseSignals(runSignals)
	if err != nil {
		return model.Config{}, fmt.Errorf("--signals: %w", err)
	}
	lists := [][]string{runStopWords}
	if runStopWordsFile != "" {
		words, err := wordlist.LoadWords(runStopWordsFile)
		if err != nil {
			return model.Config{}, fmt.Errorf("failed to load stop words: %w", err)
		}
		lists = append(lists, words)
	}
	return model.Config{
		Duration:        time.Duration(runDuration) * time.Second,
		Persistence:     mode,
		SnapshotPath:    runSnapshot,
		Top:             runTop,
		StopWords:       wordlist.StopWordSet(lists...),
		Language:        strings.TrimSpace(runLanguage),
		ShutdownSignals: sigs,
		IdleDeadline:    runIdleDeadline,
	}, nil
}

func validateFeed(fs feedSettings, tui bool, stdin io.Reader) error {
	switch fs.Type {
	case "stdin":
		if tui && stdinIsTerminal(stdin) {
			return fmt.Errorf("--tui cannot be used with the stdin feed on a terminal")
		}
	case "file":
		if fs.Path == "" {
			return fmt.Errorf("--feed-path is required for the file feed")
		}
	case "http":
		if fs.URL == "" {
			return fmt.Errorf("--feed-url is required for the http feed")
		}
	default:
		return fmt.Errorf("unknown feed %q (expected stdin, file or http)", fs.Type)
	}
	return nil
}

var stdinIsTerminal = func(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newSource(fs feedSettings, stdin io.Reader) (feed.Source, func() error, error) {
	noop := func() error { return nil }
	switch fs.Type {
	case "stdin":
		return feed.NewLines(stdin), noop, nil
	case "file":
		f, err := os.Open(fs.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open feed input: %w", err)
		}
		return feed.NewLines(f), f.Close, nil
	case "http":
		return feed.NewHTTPStream(feed.HTTPConfig{
			URL:       fs.URL,
			Token:     fs.Token,
			UserAgent: fs.UserAgent,
		}), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown feed %q", fs.Type)
	}
}

func newLogger(level, file string, quiet bool) (*slog.Logger, func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	switch strings.ToLower(level) {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info", "":
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		return nil, nil, fmt.Errorf("--log-level must be one of debug, info, warn, error")
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case file != "" && file != "-":
		f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closeFn = func() {
			if cerr := f.Close(); cerr != nil {
				// Best-effort close of the log file.
				_ = cerr
			}
		}
	case quiet:
		// The dashboard owns the terminal.
		w = io.Discard
	}
	return slog.New(slog.NewTextHandler(w, opts)), closeFn, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyStringsConfig(cmd *cobra.Command, name string, target, value *[]string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = append([]string(nil), (*value)...)
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tcounter configuration
# Uncomment a value to enable it. CLI flags override config values.

[session]
# duration = %d               # Session length in seconds
# persistence = %q          # none, file or lazy
# snapshot = %q
# top = %d                     # Words in the report
# language = %q               # Language filter passed to the feed
# stop-words = ["the", "and", "to"]
# stop-words-file = "/path/to/stop-words.txt"
# signals = ["SIGINT", "SIGTERM"]
# idle-deadline = false         # End at the deadline even without new messages

[feed]
# type = %q               # stdin, file or http
# path = "/path/to/messages.txt"
# url = "https://stream.example.com/sample"
# token = ""
# user-agent = %q

[log]
# level = %q               # debug, info, warn or error
# file = ""                     # Empty logs to stderr

[history]
# enabled = true
# db = %q
`,
		defaultDuration,
		defaultPersistence,
		config.DefaultSnapshotPath(),
		defaultTop,
		defaultLanguage,
		defaultFeedType,
		defaultUserAgent,
		defaultLogLevel,
		config.DefaultDBPath(),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
