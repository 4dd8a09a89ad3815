package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/yiblet/sieve/internal/catalog"
	"github.com/yiblet/sieve/internal/clipboard"
	"github.com/yiblet/sieve/internal/clipboard/sysboard"
	"github.com/yiblet/sieve/internal/config"
	"github.com/yiblet/sieve/internal/ghost"
	"github.com/yiblet/sieve/internal/ingest"
	"github.com/yiblet/sieve/internal/logging"
	"github.com/yiblet/sieve/internal/session"
	"github.com/yiblet/sieve/internal/session/dbstore"
	"github.com/yiblet/sieve/internal/sievefs"
	"github.com/yiblet/sieve/internal/tui"
)

// CLI handles the command-line interface
type CLI struct {
	filesystem  *sievefs.SieveFS
	configMgr   *config.ConfigManager
	config      *config.Config
	sessions    session.Store
	sessionName string
	clipboard   clipboard.Clipboard
	logger      *log.Logger
	closeLog    func() error
	out         io.Writer
}

// New creates a new CLI instance
func New() (*CLI, error) {
	return NewWithArgs(nil)
}

// NewWithArgs creates a new CLI instance. Paths and the session name come
// from the flags when given, then from the configuration file.
func NewWithArgs(args *Args) (*CLI, error) {
	if args == nil {
		args = &Args{}
	}

	filesystem, err := sievefs.New()
	if err != nil {
		return nil, fmt.Errorf("failed to prepare application directory: %w", err)
	}

	configPath := filesystem.ConfigPath()
	if args.ConfigPath != nil {
		configPath = *args.ConfigPath
	}
	configMgr := config.NewConfigManagerWithPath(configPath)
	cfg, err := configMgr.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	location := cfg.SessionLocation
	if args.DBPath != nil {
		location = *args.DBPath
	}
	dbPath, err := filesystem.DBPath(location)
	if err != nil {
		return nil, err
	}

	sessions, err := dbstore.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		sessions.Close()
		return nil, err
	}
	logger, closeLog, err := logging.NewFile(filesystem.LogDir(), level)
	if err != nil {
		sessions.Close()
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	sessionName := cfg.SessionName
	if args.SessionName != nil {
		sessionName = *args.SessionName
	}

	return &CLI{
		filesystem:  filesystem,
		configMgr:   configMgr,
		config:      cfg,
		sessions:    sessions,
		sessionName: sessionName,
		clipboard:   sysboard.New(),
		logger:      logger.With("session", sessionName),
		closeLog:    closeLog,
		out:         os.Stdout,
	}, nil
}

// Close releases the session database and the log file
func (c *CLI) Close() error {
	err := c.sessions.Close()
	if c.closeLog != nil {
		if cerr := c.closeLog(); err == nil {
			err = cerr
		}
	}
	return err
}

// Execute runs the CLI command based on parsed arguments
func (c *CLI) Execute(args *Args) error {
	if err := args.Validate(); err != nil {
		return err
	}

	switch {
	case args.Query != nil:
		return c.executeQuery(args.Query)
	case args.Browse != nil:
		return c.executeBrowse(args.Browse)
	case args.Reset != nil:
		return c.executeReset()
	case args.Session != nil:
		return c.executeSession(args.Session)
	case args.Config != nil:
		return c.executeConfig(args.Config)
	default:
		return fmt.Errorf("no command specified")
	}
}

// openStore creates a catalog store bound to the current session and
// restores its saved state.
func (c *CLI) openStore(pagination catalog.Pagination) (*catalog.Store, func()) {
	store := catalog.New(catalog.Options{
		Session:    c.sessions.Session(c.sessionName),
		Logger:     c.logger,
		Locale:     c.config.Locale,
		Pagination: pagination,
	})
	unsubscribe := store.Subscribe(func(catalog.Snapshot) {})
	return store, func() {
		unsubscribe()
		store.Close()
	}
}

// loadCards reads the input file and extra cards into a registry feeding
// store.
func (c *CLI) loadCards(store *catalog.Store, in InputFlags) (*ghost.Registry, error) {
	var records []catalog.Record
	var err error
	if in.Format != nil {
		format, ferr := ingest.ParseFormat(*in.Format)
		if ferr != nil {
			return nil, ferr
		}
		f, ferr := os.Open(in.File)
		if ferr != nil {
			return nil, fmt.Errorf("failed to open input: %w", ferr)
		}
		records, err = ingest.Decode(f, format)
		f.Close()
	} else {
		records, err = ingest.Load(in.File)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", in.File, err)
	}

	for _, card := range in.Cards {
		rec, err := ParseCard(card)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	registry := ghost.NewRegistry(store)
	if _, err := registry.RegisterAll(records); err != nil {
		return nil, fmt.Errorf("failed to register cards: %w", err)
	}
	c.logger.Debug("cards loaded", "file", in.File, "count", registry.Len())
	return registry, nil
}

// executeQuery handles the 'sieve query' command
func (c *CLI) executeQuery(cmd *QueryCmd) error {
	store, closeStore := c.openStore(c.config.Pagination())
	defer closeStore()

	if _, err := c.loadCards(store, cmd.InputFlags); err != nil {
		return err
	}

	ranges := make([]RangeFlag, 0, len(cmd.Ranges))
	for _, r := range cmd.Ranges {
		flag, err := ParseRange(r)
		if err != nil {
			return err
		}
		ranges = append(ranges, flag)
	}

	store.Batch(func() {
		if cmd.Fresh {
			store.ResetFilters()
		}
		if cmd.PerPage != nil || cmd.Mode != nil || cmd.All {
			store.SetPagination(func(p *catalog.Pagination) {
				if cmd.PerPage != nil {
					p.ItemsPerPage = *cmd.PerPage
					p.Enabled = true
				}
				if cmd.Mode != nil {
					p.Mode, _ = catalog.ParseMode(*cmd.Mode)
				}
				if cmd.All {
					p.Enabled = false
				}
			})
		}
		for _, f := range cmd.Filters {
			key, value, _ := ParseFilter(f)
			store.SetFilter(key, value)
		}
		snap := store.Snapshot()
		for _, r := range ranges {
			key, value := r.Resolve(snap)
			store.SetFilter(key, value)
		}
		if cmd.Search != nil {
			store.SetSearch(*cmd.Search)
		}
		if cmd.Sort != nil {
			cfg, _ := ParseSort(*cmd.Sort)
			store.SetSort(cfg.Field, cfg.Direction, cfg.Type)
		}
	})
	if cmd.Page != nil {
		store.SetPage(*cmd.Page)
	}

	snap := store.Snapshot()
	switch {
	case cmd.JSON:
		return c.writeJSON(snap)
	case cmd.Clipboard:
		if err := clipboard.WriteText(c.clipboard, tui.FormatTSV(snap.Visible())); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Copied %d card(s) to clipboard\n", len(snap.Visible()))
		return nil
	default:
		fmt.Fprint(c.out, RenderTable(snap))
		return nil
	}
}

// executeBrowse handles the 'sieve browse' command
func (c *CLI) executeBrowse(cmd *BrowseCmd) error {
	store, closeStore := c.openStore(c.config.Pagination())
	defer closeStore()

	registry, err := c.loadCards(store, cmd.InputFlags)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := store.WatchReset(ctx, resetSignal(ctx)); err != nil && ctx.Err() == nil {
			c.logger.Warn("reset watcher stopped", "err", err)
		}
	}()

	model := tui.New(store, tui.Options{
		Clipboard: c.clipboard,
		Registry:  registry,
		Debounce:  time.Duration(c.config.SearchDebounceMs) * time.Millisecond,
		Logger:    c.logger,
		Title:     cmd.File,
	})
	defer model.Close()

	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// executeReset handles the 'sieve reset' command
func (c *CLI) executeReset() error {
	store, closeStore := c.openStore(c.config.Pagination())
	defer closeStore()

	hadCriteria := store.Snapshot().HasCriteria()
	store.ResetFilters()

	if hadCriteria {
		fmt.Fprintf(c.out, "Cleared saved criteria for session %q\n", c.sessionName)
	} else {
		fmt.Fprintf(c.out, "Session %q has no saved criteria\n", c.sessionName)
	}
	return nil
}

// executeSession handles the 'sieve session' command
func (c *CLI) executeSession(cmd *SessionCmd) error {
	if cmd.All {
		names, err := c.sessions.Names()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Fprintln(c.out, "No saved sessions.")
			return nil
		}
		for _, name := range names {
			fmt.Fprintln(c.out, name)
		}
		return nil
	}

	entries, err := c.sessions.Session(c.sessionName).List()
	if err != nil {
		return fmt.Errorf("failed to list session entries: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintf(c.out, "Session %q has nothing saved.\n", c.sessionName)
		return nil
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(c.out, "Session %q:\n", c.sessionName)
	for _, k := range keys {
		fmt.Fprintf(c.out, "  %s = %s\n", k, entries[k])
	}
	return nil
}

// executeConfig handles the 'sieve config' command
func (c *CLI) executeConfig(cmd *ConfigCmd) error {
	switch {
	case cmd.Get != nil:
		value, err := c.configMgr.Get(cmd.Get.Key)
		if err != nil {
			return fmt.Errorf("failed to get config value: %w", err)
		}
		fmt.Fprintf(c.out, "%s\n", value)
		return nil
	case cmd.Set != nil:
		if err := c.configMgr.Update(cmd.Set.Key, cmd.Set.Value); err != nil {
			return fmt.Errorf("failed to set config value: %w", err)
		}
		fmt.Fprintf(c.out, "Set %s = %s\n", cmd.Set.Key, cmd.Set.Value)
		return nil
	case cmd.List != nil:
		values, err := c.configMgr.List()
		if err != nil {
			return fmt.Errorf("failed to list config values: %w", err)
		}
		fmt.Fprintf(c.out, "Current configuration (%s):\n", c.configMgr.GetConfigPath())
		for _, key := range config.Keys() {
			fmt.Fprintf(c.out, "  %s = %s\n", key, values[key])
		}
		return nil
	default:
		return fmt.Errorf("no config subcommand specified")
	}
}

// queryResult is the JSON shape of 'sieve query --json'
type queryResult struct {
	Items      []*catalog.Item                `json:"items"`
	Total      int                            `json:"total"`
	Page       int                            `json:"page"`
	Pages      int                            `json:"pages"`
	PerPage    int                            `json:"per_page"`
	Filters    map[string]catalog.FilterValue `json:"filters"`
	Search     string                         `json:"search,omitempty"`
	Sort       *catalog.SortConfig            `json:"sort,omitempty"`
	HasMore    bool                           `json:"has_more"`
	Pagination bool                           `json:"pagination"`
}

func (c *CLI) writeJSON(snap catalog.Snapshot) error {
	result := queryResult{
		Items:      snap.Visible(),
		Total:      snap.Pagination.TotalItems,
		Page:       snap.Pagination.CurrentPage,
		Pages:      snap.TotalPages(),
		PerPage:    snap.Pagination.ItemsPerPage,
		Filters:    snap.Filters,
		Search:     snap.Search,
		HasMore:    snap.HasMore(),
		Pagination: snap.Pagination.Enabled,
	}
	if !snap.Sort.IsNatural() {
		result.Sort = &snap.Sort
	}

	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to write json: %w", err)
	}
	return nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Faint(true)
)

// RenderTable renders the visible cards as a table followed by a summary
// footer.
func RenderTable(snap catalog.Snapshot) string {
	var b strings.Builder
	visible := snap.Visible()

	if len(visible) == 0 {
		if snap.HasCriteria() {
			b.WriteString("No cards match the current filters.\n")
		} else {
			b.WriteString("No cards.\n")
		}
	} else {
		columns := tui.Columns(visible)
		headers := append([]string{"#", "id"}, columns...)
		rows := make([][]string, 0, len(visible))
		offset := visibleOffset(snap)
		for i, it := range visible {
			row := []string{fmt.Sprintf("%d", offset+i+1), it.ID()}
			for _, col := range columns {
				row = append(row, tui.TruncateTitle(tui.SanitizeTitle(it.String(col)), 32))
			}
			rows = append(rows, row)
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers(headers...).
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})
		b.WriteString(t.Render())
		b.WriteString("\n")
	}

	b.WriteString(footerStyle.Render(Summary(snap)))
	b.WriteString("\n")
	return b.String()
}

// Summary describes the visible window, the active criteria and the sort.
func Summary(snap catalog.Snapshot) string {
	var parts []string

	total := snap.Pagination.TotalItems
	visible := len(snap.Visible())
	if visible == 0 {
		parts = append(parts, fmt.Sprintf("0 of %d cards", total))
	} else {
		start := visibleOffset(snap) + 1
		parts = append(parts, fmt.Sprintf("%d-%d of %d cards", start, start+visible-1, total))
	}
	if snap.Pagination.Enabled && snap.TotalPages() > 0 {
		parts = append(parts, fmt.Sprintf("page %d/%d", snap.Pagination.CurrentPage, snap.TotalPages()))
	}
	if total != len(snap.Items) {
		parts = append(parts, fmt.Sprintf("%d unfiltered", len(snap.Items)))
	}

	tags := snap.ActiveTags()
	if len(tags) > 0 {
		labels := make([]string, len(tags))
		for i, tag := range tags {
			labels[i] = tag.Label
		}
		parts = append(parts, "filters: "+strings.Join(labels, ", "))
	}
	if !snap.Sort.IsNatural() {
		parts = append(parts, fmt.Sprintf("sort: %s %s", snap.Sort.Field, snap.Sort.Direction))
	}
	return strings.Join(parts, " · ")
}

// visibleOffset is the position of the first visible card in the filtered
// result.
func visibleOffset(snap catalog.Snapshot) int {
	p := snap.Pagination
	if !p.Enabled || p.Mode != catalog.ModePagination {
		return 0
	}
	return (p.CurrentPage - 1) * p.ItemsPerPage
}
