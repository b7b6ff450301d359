// Command sheetcore-kits manages the barcode kit catalog: it imports kit
// tables from delimited files and lists the kits a catalog holds.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"sheetcore/internal/catalog"
	"sheetcore/internal/core"
	"sheetcore/internal/table"
)

var exitFunc = os.Exit

func main() {
	exitFunc(run(os.Args[1:], os.Stdout, os.Stderr))
}

type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func run(args []string, stdout, stderr io.Writer) int {
	var imports, pairImports stringList
	var list bool
	fs := flag.NewFlagSet("sheetcore-kits", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Var(&imports, "import", "repeatable: NAME:path:ID_COL:SEQ_COL imports a single-index kit")
	fs.Var(&pairImports, "import-pair", "repeatable: NAME:path:PAIR_ID_COL:I7_COL:I5_COL imports a paired kit")
	fs.BoolVar(&list, "list", false, "list catalog kits")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if len(imports) == 0 && len(pairImports) == 0 && !list {
		fmt.Fprintln(stderr, "sheetcore-kits: nothing to do, use -import, -import-pair or -list")
		return 1
	}

	ctx := context.Background()
	store, err := catalog.Open(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "sheetcore-kits: open catalog: %v\n", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	if err := execute(ctx, store, imports, pairImports, list, stdout); err != nil {
		fmt.Fprintf(stderr, "sheetcore-kits: %v\n", err)
		return 1
	}
	return 0
}

func execute(ctx context.Context, store catalog.Store, imports, pairImports []string, list bool, stdout io.Writer) error {
	for _, spec := range imports {
		name, kit, err := importSingle(spec)
		if err != nil {
			return err
		}
		if err := store.SaveKit(ctx, kit); err != nil {
			return fmt.Errorf("save kit %s: %w", name, err)
		}
		fmt.Fprintf(stdout, "Imported kit %s (%d entries)\n", name, len(kit.Entries))
	}
	for _, spec := range pairImports {
		name, kit, err := importPaired(spec)
		if err != nil {
			return err
		}
		if err := store.SavePairKit(ctx, kit); err != nil {
			return fmt.Errorf("save pair kit %s: %w", name, err)
		}
		fmt.Fprintf(stdout, "Imported pair kit %s (%d entries)\n", name, len(kit.Entries))
	}
	if list {
		single, paired, err := store.ListKits(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Catalog (%s driver):\n", store.Driver())
		for _, name := range single {
			fmt.Fprintf(stdout, "  kit %s\n", name)
		}
		for _, name := range paired {
			fmt.Fprintf(stdout, "  pair kit %s\n", name)
		}
	}
	return nil
}

// importSingle parses "NAME:path:ID_COL:SEQ_COL" and loads the validated kit.
func importSingle(spec string) (string, catalog.Kit, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 4 {
		return "", catalog.Kit{}, fmt.Errorf("invalid import spec %q: expected NAME:path:ID_COL:SEQ_COL", spec)
	}
	name, path := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	cols := core.SingleIndexColumns{ID: strings.TrimSpace(parts[2]), Sequence: strings.TrimSpace(parts[3])}
	if name == "" || path == "" || cols.ID == "" || cols.Sequence == "" {
		return "", catalog.Kit{}, fmt.Errorf("invalid import spec %q: empty field", spec)
	}
	tbl, err := readTable(path)
	if err != nil {
		return "", catalog.Kit{}, err
	}
	entries, err := core.LoadSingleIndexTable(path, tbl, cols)
	if err != nil {
		return "", catalog.Kit{}, err
	}
	return name, catalog.Kit{Name: name, Entries: entries}, nil
}

// importPaired parses "NAME:path:PAIR_ID_COL:I7_COL:I5_COL".
func importPaired(spec string) (string, catalog.PairKit, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 5 {
		return "", catalog.PairKit{}, fmt.Errorf("invalid import-pair spec %q: expected NAME:path:PAIR_ID_COL:I7_COL:I5_COL", spec)
	}
	name, path := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	cols := core.PairedIndexColumns{
		PairID: strings.TrimSpace(parts[2]),
		I7:     strings.TrimSpace(parts[3]),
		I5:     strings.TrimSpace(parts[4]),
	}
	if name == "" || path == "" || cols.PairID == "" || cols.I7 == "" || cols.I5 == "" {
		return "", catalog.PairKit{}, fmt.Errorf("invalid import-pair spec %q: empty field", spec)
	}
	tbl, err := readTable(path)
	if err != nil {
		return "", catalog.PairKit{}, err
	}
	entries, err := core.LoadPairedIndexTable(path, tbl, cols)
	if err != nil {
		return "", catalog.PairKit{}, err
	}
	return name, catalog.PairKit{Name: name, Entries: entries}, nil
}

func readTable(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return table.ReadDelimited(f, table.DelimiterFor(path))
}
