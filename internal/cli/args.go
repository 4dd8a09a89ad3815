package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/yiblet/sieve/internal/catalog"
)

// Args represents the top-level command structure
type Args struct {
	Query   *QueryCmd   `arg:"subcommand:query" help:"Filter, search, sort and page a card file"`
	Browse  *BrowseCmd  `arg:"subcommand:browse" help:"Browse a card file interactively"`
	Reset   *ResetCmd   `arg:"subcommand:reset" help:"Clear the criteria saved in the session"`
	Session *SessionCmd `arg:"subcommand:session" help:"Show what the session has saved"`
	Config  *ConfigCmd  `arg:"subcommand:config" help:"Manage configuration"`

	SessionName *string `arg:"-s,--session" help:"Session name (default from config)"`
	DBPath      *string `arg:"--db" help:"Session database path (default ~/.config/sieve/session.db)"`
	ConfigPath  *string `arg:"--config" help:"Configuration file path (default ~/.config/sieve/config.yaml)"`
}

// InputFlags are shared by every command that loads cards
type InputFlags struct {
	File   string   `arg:"positional,required" help:"JSON, YAML or CSV file of cards"`
	Format *string  `arg:"--format" help:"Input format: json, yaml or csv (default from the file extension)"`
	Cards  []string `arg:"--card,separate" help:"Extra card as field=value;field=value (repeatable)"`
}

// QueryCmd represents the 'sieve query' command
type QueryCmd struct {
	InputFlags

	Filters   []string `arg:"-f,--filter,separate" help:"Multi-select filter FIELD=a,b (repeatable, empty value clears)"`
	Ranges    []string `arg:"-r,--range,separate" help:"Range filter FIELD=MIN:MAX (repeatable)"`
	Search    *string  `arg:"-q,--search" help:"Search text"`
	Sort      *string  `arg:"--sort" help:"FIELD[:asc|desc[:string|number|date]], empty for natural order"`
	Page      *int     `arg:"-p,--page" help:"Page to show"`
	PerPage   *int     `arg:"--per-page" help:"Cards per page"`
	Mode      *string  `arg:"--mode" help:"pagination, loadMore or autoScroll"`
	All       bool     `arg:"--all" help:"Show every matching card"`
	JSON      bool     `arg:"--json" help:"Print JSON instead of a table"`
	Clipboard bool     `arg:"-c,--clipboard" help:"Copy the visible cards to the clipboard"`
	Fresh     bool     `arg:"--fresh" help:"Start from a clean slate instead of the saved criteria"`
}

// BrowseCmd represents the 'sieve browse' command
type BrowseCmd struct {
	InputFlags
}

// ResetCmd represents the 'sieve reset' command
type ResetCmd struct{}

// SessionCmd represents the 'sieve session' command
type SessionCmd struct {
	All bool `arg:"-a,--all" help:"List every session name instead of entries"`
}

// ConfigCmd represents the 'sieve config' command
type ConfigCmd struct {
	Get  *ConfigGetCmd  `arg:"subcommand:get" help:"Get configuration value"`
	Set  *ConfigSetCmd  `arg:"subcommand:set" help:"Set configuration value"`
	List *ConfigListCmd `arg:"subcommand:list" help:"List all configuration values"`
}

// ConfigGetCmd represents the 'sieve config get' command
type ConfigGetCmd struct {
	Key string `arg:"positional,required" help:"Configuration key"`
}

// ConfigSetCmd represents the 'sieve config set' command
type ConfigSetCmd struct {
	Key   string `arg:"positional,required" help:"Configuration key"`
	Value string `arg:"positional,required" help:"Configuration value"`
}

// ConfigListCmd represents the 'sieve config list' command
type ConfigListCmd struct{}

// Description returns the program description
func (Args) Description() string {
	return "sieve - filter, search, sort and page collections of cards"
}

// Version returns the program version
func (Args) Version() string {
	return "sieve 0.1.0"
}

// Epilogue returns additional help text
func (Args) Epilogue() string {
	return `Examples:
  sieve query cards.json -f color=red,blue       # Multi-select filter
  sieve query cards.csv -r price=10:50 -q linen  # Range filter and search
  sieve query cards.yaml --sort price:desc:number --page 2
  sieve query cards.json                         # Same criteria as last time
  sieve query cards.json --fresh                 # Ignore saved criteria
  sieve browse cards.json                        # Interactive browser
  sieve reset                                    # Forget saved criteria

Criteria are saved per session (--session) and restored on the next run.
While browsing, SIGUSR1 clears every filter.`
}

// Validate performs validation on the parsed arguments
func (args *Args) Validate() error {
	if args.SessionName != nil && strings.TrimSpace(*args.SessionName) == "" {
		return fmt.Errorf("session name cannot be empty")
	}
	switch {
	case args.Query != nil:
		return args.Query.Validate()
	case args.Browse != nil:
		return args.Browse.InputFlags.Validate()
	case args.Config != nil:
		return args.Config.Validate()
	}
	return nil
}

// Validate validates the input flags
func (f *InputFlags) Validate() error {
	if strings.TrimSpace(f.File) == "" {
		return fmt.Errorf("an input file is required")
	}
	for _, card := range f.Cards {
		if _, err := ParseCard(card); err != nil {
			return err
		}
	}
	return nil
}

// Validate validates query command arguments
func (q *QueryCmd) Validate() error {
	if err := q.InputFlags.Validate(); err != nil {
		return err
	}
	for _, f := range q.Filters {
		if _, _, err := ParseFilter(f); err != nil {
			return err
		}
	}
	for _, r := range q.Ranges {
		if _, err := ParseRange(r); err != nil {
			return err
		}
	}
	if q.Sort != nil {
		if _, err := ParseSort(*q.Sort); err != nil {
			return err
		}
	}
	if q.Page != nil && *q.Page < 1 {
		return fmt.Errorf("page must be at least 1")
	}
	if q.PerPage != nil && *q.PerPage < 1 {
		return fmt.Errorf("per-page must be at least 1")
	}
	if q.Mode != nil {
		if _, err := catalog.ParseMode(*q.Mode); err != nil {
			return err
		}
	}
	if q.All && (q.Page != nil || q.PerPage != nil) {
		return fmt.Errorf("cannot combine --all with --page or --per-page")
	}
	if q.JSON && q.Clipboard {
		return fmt.Errorf("cannot specify both json and clipboard output")
	}
	return nil
}

// Validate validates config command arguments
func (c *ConfigCmd) Validate() error {
	if c.Get == nil && c.Set == nil && c.List == nil {
		return fmt.Errorf("no config subcommand specified")
	}
	return nil
}

// ParseFilter parses FIELD=a,b into a filter key and value. An empty option
// list yields an empty value, which clears the filter.
func ParseFilter(s string) (string, catalog.FilterValue, error) {
	field, raw, ok := strings.Cut(s, "=")
	field = strings.TrimSpace(field)
	if !ok || field == "" {
		return "", catalog.FilterValue{}, fmt.Errorf("invalid filter %q: expected FIELD=a,b", s)
	}

	var opts []string
	for _, opt := range strings.Split(raw, ",") {
		if opt = strings.TrimSpace(opt); opt != "" {
			opts = append(opts, opt)
		}
	}
	return field, catalog.AnyOf(opts...), nil
}

// RangeFlag is a parsed FIELD=MIN:MAX flag. A nil bound is open and is
// filled from the data when resolved.
type RangeFlag struct {
	Field string
	Min   *float64
	Max   *float64
}

// ParseRange parses FIELD=MIN:MAX. Either bound may be left empty.
func ParseRange(s string) (RangeFlag, error) {
	field, raw, ok := strings.Cut(s, "=")
	field = strings.TrimSpace(field)
	lo, hi, ok2 := strings.Cut(raw, ":")
	if !ok || !ok2 || field == "" {
		return RangeFlag{}, fmt.Errorf("invalid range %q: expected FIELD=MIN:MAX", s)
	}

	flag := RangeFlag{Field: field}
	var err error
	if flag.Min, err = parseBound(lo); err != nil {
		return RangeFlag{}, fmt.Errorf("invalid range %q: %w", s, err)
	}
	if flag.Max, err = parseBound(hi); err != nil {
		return RangeFlag{}, fmt.Errorf("invalid range %q: %w", s, err)
	}
	if flag.Min != nil && flag.Max != nil && *flag.Min > *flag.Max {
		return RangeFlag{}, fmt.Errorf("invalid range %q: min is greater than max", s)
	}
	return flag, nil
}

// Resolve returns the filter key and value, taking open bounds from the
// numeric extent of the field in snap.
func (f RangeFlag) Resolve(snap catalog.Snapshot) (string, catalog.FilterValue) {
	lo, hi, ok := snap.Bounds(f.Field)
	if !ok {
		lo, hi = -math.MaxFloat64, math.MaxFloat64
	}
	if f.Min != nil {
		lo = *f.Min
	}
	if f.Max != nil {
		hi = *f.Max
	}
	return catalog.RangeKey(f.Field), catalog.Between(lo, hi)
}

func parseBound(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ParseSort parses FIELD[:DIRECTION[:TYPE]]. An empty string restores
// natural order.
func ParseSort(s string) (catalog.SortConfig, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) > 3 {
		return catalog.SortConfig{}, fmt.Errorf("invalid sort %q: expected FIELD[:DIRECTION[:TYPE]]", s)
	}

	dir := catalog.Asc
	typ := catalog.SortString
	var err error
	if len(parts) > 1 {
		if dir, err = catalog.ParseDirection(parts[1]); err != nil {
			return catalog.SortConfig{}, err
		}
	}
	if len(parts) > 2 {
		if typ, err = catalog.ParseSortType(parts[2]); err != nil {
			return catalog.SortConfig{}, err
		}
	}
	return catalog.SortBy(parts[0], dir, typ), nil
}

// ParseCard parses field=value;field=value into a record. Values may not
// contain ';'.
func ParseCard(s string) (catalog.Record, error) {
	rec := catalog.Record{}
	for _, pair := range strings.Split(s, ";") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		field, value, ok := strings.Cut(pair, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid card %q: expected field=value;field=value", s)
		}
		rec[field] = strings.TrimSpace(value)
	}
	if len(rec) == 0 {
		return nil, fmt.Errorf("invalid card %q: no fields", s)
	}
	return rec, nil
}
