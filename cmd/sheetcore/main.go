// Command sheetcore validates a sequencer sample sheet, resolves barcode
// sequences from kit tables or the kit catalog, and writes the resolved
// manifest together with per-lane mismatch recommendations.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"sheetcore/internal/blob"
	"sheetcore/internal/catalog"
	"sheetcore/internal/core"
	"sheetcore/internal/table"
	"sheetcore/pkg/domain"
)

var exitFunc = os.Exit

// metrics is process-wide: expvar names may be published only once.
var metrics = core.NewExpvarMetricsRecorder("sheetcore")

// Exit codes: 0 success, 1 fatal input error, 2 validation errors present.
const (
	exitOK    = 0
	exitFatal = 1
	exitedBad = 2
)

func main() {
	exitFunc(run(os.Args[1:], os.Stdout, os.Stderr))
}

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

type options struct {
	input    string
	output   string
	i7Maps   stringList
	i5Maps   stringList
	pairMaps stringList
	i7Kits   stringList
	i5Kits   stringList
	pairKits stringList
	publish  string
	dryRun   bool
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	fs := flag.NewFlagSet("sheetcore", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.input, "i", "", "input sample sheet (.csv or .tsv; blob:KEY reads from the blob store)")
	fs.StringVar(&opts.output, "o", "", "output resolved sample sheet")
	fs.Var(&opts.i7Maps, "i7-map", "repeatable: path:ID_COL:SEQ_COL for an i7 kit table")
	fs.Var(&opts.i5Maps, "i5-map", "repeatable: path:ID_COL:SEQ_COL for an i5 kit table")
	fs.Var(&opts.pairMaps, "pair-map", "repeatable: path:PAIR_ID_COL:I7_COL:I5_COL for a paired kit table")
	fs.Var(&opts.i7Kits, "i7-kit", "repeatable: i7 kit name from the catalog")
	fs.Var(&opts.i5Kits, "i5-kit", "repeatable: i5 kit name from the catalog")
	fs.Var(&opts.pairKits, "pair-kit", "repeatable: paired kit name from the catalog")
	fs.StringVar(&opts.publish, "publish", "", "blob key to publish the resolved sheet to (requires SHEETCORE_BLOB_* config)")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "validate only, do not write the resolved sheet")
	if err := fs.Parse(args); err != nil {
		return exitFatal
	}
	if opts.input == "" {
		fmt.Fprintln(stderr, "sheetcore: -i input sheet is required")
		return exitFatal
	}
	if opts.output == "" && !opts.dryRun && opts.publish == "" {
		fmt.Fprintln(stderr, "sheetcore: -o output sheet is required unless --dry-run or --publish is used")
		return exitFatal
	}

	ctx := context.Background()
	code, err := execute(ctx, opts, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "sheetcore: %v\n", err)
		return exitFatal
	}
	return code
}

func execute(ctx context.Context, opts options, stdout io.Writer) (int, error) {
	src := &tableSource{}
	lookups, err := loadLookups(ctx, opts, src)
	if err != nil {
		return exitFatal, err
	}

	tbl, err := src.readSheet(ctx, opts.input)
	if err != nil {
		return exitFatal, err
	}

	svc := core.NewService(lookups, core.WithMetrics(metrics))
	rows, result, err := svc.Prepare(ctx, tbl)
	if err != nil {
		return exitFatal, err
	}

	printProblems(stdout, result.Problems)
	printLaneMismatches(stdout, result.LaneMismatches)

	if result.HasErrors() {
		fmt.Fprintln(stdout, "\nValidation failed (errors found).")
		return exitedBad, nil
	}

	if opts.dryRun {
		fmt.Fprintln(stdout, "\nDry run: validation passed.")
		return exitOK, nil
	}
	if opts.output != "" {
		if err := writeSheet(opts.output, core.ResolvedTable(rows, result.LaneMismatches)); err != nil {
			return exitFatal, err
		}
		fmt.Fprintf(stdout, "\nWrote: %s\n", opts.output)
	}
	if opts.publish != "" {
		store, err := src.openStore(ctx)
		if err != nil {
			return exitFatal, err
		}
		info, err := svc.PublishResolved(ctx, store, opts.publish, rows, result.LaneMismatches)
		if err != nil {
			return exitFatal, err
		}
		fmt.Fprintf(stdout, "\nPublished: %s (%d bytes, %s driver)\n", info.Key, info.Size, store.Driver())
	}
	return exitOK, nil
}

// loadLookups builds the merged i7/i5/pair lookups from --*-map table files
// and --*-kit catalog references.
func loadLookups(ctx context.Context, opts options, src *tableSource) (core.Lookups, error) {
	var cat catalog.Store
	if len(opts.i7Kits)+len(opts.i5Kits)+len(opts.pairKits) > 0 {
		var err error
		cat, err = catalog.Open(ctx)
		if err != nil {
			return core.Lookups{}, fmt.Errorf("open kit catalog: %w", err)
		}
		defer func() { _ = cat.Close() }()
	}

	i7, err := singleLookups(ctx, cat, src, opts.i7Maps, opts.i7Kits)
	if err != nil {
		return core.Lookups{}, err
	}
	i5, err := singleLookups(ctx, cat, src, opts.i5Maps, opts.i5Kits)
	if err != nil {
		return core.Lookups{}, err
	}

	lookups := core.Lookups{I7: i7, I5: i5}
	if len(opts.pairMaps)+len(opts.pairKits) > 0 {
		var pairs []domain.PairLookup
		for _, spec := range opts.pairMaps {
			path, cols, err := parsePairMapSpec(spec)
			if err != nil {
				return core.Lookups{}, err
			}
			tbl, err := src.readSheet(ctx, path)
			if err != nil {
				return core.Lookups{}, err
			}
			entries, err := core.LoadPairedIndexTable(path, tbl, cols)
			if err != nil {
				return core.Lookups{}, err
			}
			pairs = append(pairs, core.BuildPairLookup(entries))
		}
		for _, name := range opts.pairKits {
			kit, err := cat.PairKit(ctx, name)
			if err != nil {
				return core.Lookups{}, err
			}
			entries, err := core.PreparePairIndexEntries("catalog:"+name, kit.Entries)
			if err != nil {
				return core.Lookups{}, err
			}
			pairs = append(pairs, core.BuildPairLookup(entries))
		}
		merged, err := core.MergePairLookups(pairs)
		if err != nil {
			return core.Lookups{}, err
		}
		lookups.Pair = merged
	}
	return lookups, nil
}

func singleLookups(ctx context.Context, cat catalog.Store, src *tableSource, specs, kits []string) (domain.Lookup, error) {
	var lookups []domain.Lookup
	for _, spec := range specs {
		path, cols, err := parseMapSpec(spec)
		if err != nil {
			return nil, err
		}
		tbl, err := src.readSheet(ctx, path)
		if err != nil {
			return nil, err
		}
		entries, err := core.LoadSingleIndexTable(path, tbl, cols)
		if err != nil {
			return nil, err
		}
		lookups = append(lookups, core.BuildSingleLookup(entries))
	}
	for _, name := range kits {
		kit, err := cat.Kit(ctx, name)
		if err != nil {
			return nil, err
		}
		entries, err := core.PrepareSingleIndexEntries("catalog:"+name, kit.Entries)
		if err != nil {
			return nil, err
		}
		lookups = append(lookups, core.BuildSingleLookup(entries))
	}
	return core.MergeSingleLookups(lookups)
}

// splitSpecPath peels an optional blob: scheme off a map spec so the colon
// split only sees the path and column names.
func splitSpecPath(spec string) (scheme, rest string) {
	if strings.HasPrefix(spec, blobScheme) {
		return blobScheme, strings.TrimPrefix(spec, blobScheme)
	}
	return "", spec
}

// parseMapSpec parses "path:ID_COL:SEQ_COL"; the path may carry a blob: prefix.
func parseMapSpec(spec string) (string, core.SingleIndexColumns, error) {
	scheme, rest := splitSpecPath(spec)
	parts := strings.Split(rest, ":")
	if len(parts) != 3 {
		return "", core.SingleIndexColumns{}, fmt.Errorf("invalid map spec %q: expected path:ID_COL:SEQ_COL", spec)
	}
	path, id, seq := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2])
	if path == "" || id == "" || seq == "" {
		return "", core.SingleIndexColumns{}, fmt.Errorf("invalid map spec %q: empty field", spec)
	}
	return scheme + path, core.SingleIndexColumns{ID: id, Sequence: seq}, nil
}

// parsePairMapSpec parses "path:PAIR_ID_COL:I7_COL:I5_COL"; the path may carry
// a blob: prefix.
func parsePairMapSpec(spec string) (string, core.PairedIndexColumns, error) {
	scheme, rest := splitSpecPath(spec)
	parts := strings.Split(rest, ":")
	if len(parts) != 4 {
		return "", core.PairedIndexColumns{}, fmt.Errorf("invalid pair-map spec %q: expected path:PAIR_ID_COL:I7_COL:I5_COL", spec)
	}
	path, id, i7, i5 := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2]), strings.TrimSpace(parts[3])
	if path == "" || id == "" || i7 == "" || i5 == "" {
		return "", core.PairedIndexColumns{}, fmt.Errorf("invalid pair-map spec %q: empty field", spec)
	}
	return scheme + path, core.PairedIndexColumns{PairID: id, I7: i7, I5: i5}, nil
}

// blobScheme marks an input path as a blob store key instead of a local file.
const blobScheme = "blob:"

// tableSource reads input tables from the local filesystem or, for paths
// carrying the blob: prefix, from the configured blob store. The store is
// opened lazily on first use and shared with the publish step.
type tableSource struct {
	store blob.Store
}

func (s *tableSource) openStore(ctx context.Context) (blob.Store, error) {
	if s.store == nil {
		store, err := blob.Open(ctx)
		if err != nil {
			return nil, err
		}
		s.store = store
	}
	return s.store, nil
}

func (s *tableSource) readSheet(ctx context.Context, path string) (*table.Table, error) {
	if strings.HasPrefix(path, blobScheme) {
		key := strings.TrimPrefix(path, blobScheme)
		store, err := s.openStore(ctx)
		if err != nil {
			return nil, err
		}
		_, rc, err := store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", path, err)
		}
		defer func() { _ = rc.Close() }()
		return table.ReadDelimited(rc, table.DelimiterFor(key))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return table.ReadDelimited(f, table.DelimiterFor(path))
}

func writeSheet(path string, tbl *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := table.WriteDelimited(f, tbl, table.DelimiterFor(path)); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func printProblems(w io.Writer, problems []domain.Problem) {
	for _, p := range problems {
		head := fmt.Sprintf("[%s] %s", p.Severity, p.Code)
		// Lane 0 means the problem is not bound to a lane; omit the field.
		if p.Lane != 0 {
			head += fmt.Sprintf(" lane=%d", p.Lane)
		}
		if p.SampleID != "" {
			head += " sample_id=" + p.SampleID
		}
		fmt.Fprintf(w, "%s - %s\n", head, p.Message)
	}
}

func printLaneMismatches(w io.Writer, mismatches map[int]int) {
	if len(mismatches) == 0 {
		return
	}
	fmt.Fprintln(w, "\nLane barcode mismatch recommendations:")
	for lane := 1; lane <= 8; lane++ {
		if mm, ok := mismatches[lane]; ok {
			fmt.Fprintf(w, "  Lane %d: barcode_mismatches = %d\n", lane, mm)
		}
	}
}
