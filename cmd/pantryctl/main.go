// pantryctl 在本機以 JSON 目錄快照解析食材名稱、查詢候選與維護同義詞。
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"pantry-resolver/internal/core/pantry"
	"pantry-resolver/internal/core/recipe"
	"pantry-resolver/internal/infrastructure/catalog"
	"pantry-resolver/internal/infrastructure/config"
	"pantry-resolver/internal/infrastructure/synonym"
	"pantry-resolver/internal/pkg/common"
)

const usage = `Usage: pantryctl <command> [flags] [args]

Commands:
  resolve  NAME...        resolve ingredient names against the catalog
  suggest  NAME           list the closest catalog entries
  synonym  add NAME ID    record a confirmed synonym
  synonym  list           print stored synonyms
  import   --db FILE      load the JSON catalog into a SQLite database

Run "pantryctl <command> --help" for command flags.
`

// errUsage 參數錯誤，以代碼 2 結束
var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var err error
	switch cmd, rest := args[0], args[1:]; cmd {
	case "resolve":
		err = runResolve(ctx, rest, stdout)
	case "suggest":
		err = runSuggest(ctx, rest, stdout)
	case "synonym":
		err = runSynonym(ctx, rest, stdout)
	case "import":
		err = runImport(ctx, rest, stdout)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, pflag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "pantryctl: %v\n", err)
		return 2
	default:
		fmt.Fprintf(stderr, "pantryctl: %v\n", err)
		return 1
	}
}

// options 各指令共用的旗標
type options struct {
	catalogPath     string
	synonymsPath    string
	excludeImported bool
	threshold       int
	suggestions     int
	verbose         bool
}

func newFlagSet(name string, opts *options) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVarP(&opts.catalogPath, "catalog", "c", "data/pantry.json", "JSON catalog snapshot")
	fs.StringVarP(&opts.synonymsPath, "synonyms", "s", "data/synonyms.json", "synonym file (empty to disable)")
	fs.BoolVar(&opts.excludeImported, "exclude-imported", false, "ignore auto-imported (IMP-) entries")
	fs.IntVar(&opts.threshold, "threshold", pantry.DefaultThreshold, "fuzzy match threshold (0-100)")
	fs.IntVarP(&opts.suggestions, "top", "n", pantry.DefaultSuggestions, "number of suggestions")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "write debug logs")
	return fs
}

// parse 解析旗標並依需要開啟日誌
func parse(fs *pflag.FlagSet, opts *options, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if opts.threshold < 0 || opts.threshold > 100 {
		return fmt.Errorf("%w: threshold must be between 0 and 100", errUsage)
	}
	if opts.verbose {
		if err := common.InitLogger("debug"); err != nil {
			return err
		}
	}
	return nil
}

// service 以檔案目錄與檔案同義詞建立解析服務
func (o *options) service() *recipe.ResolutionService {
	var synonyms pantry.SynonymStore
	if o.synonymsPath != "" {
		synonyms = synonym.NewFileStore(o.synonymsPath)
	}

	policy := pantry.IncludeImported
	if o.excludeImported {
		policy = pantry.ExcludeImported
	}
	return recipe.NewResolutionService(
		catalog.NewFileSource(o.catalogPath),
		synonyms,
		config.ResolverConfig{Threshold: o.threshold, Suggestions: o.suggestions},
		policy,
	)
}

func runResolve(ctx context.Context, args []string, stdout io.Writer) error {
	var opts options
	fs := newFlagSet("resolve", &opts)
	if err := parse(fs, &opts, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: resolve needs at least one name", errUsage)
	}

	svc := opts.service()
	results, err := svc.ResolveNames(ctx, fs.Args())
	if err != nil {
		return err
	}
	return writeJSON(stdout, results)
}

func runSuggest(ctx context.Context, args []string, stdout io.Writer) error {
	var opts options
	fs := newFlagSet("suggest", &opts)
	if err := parse(fs, &opts, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: suggest needs a name", errUsage)
	}

	svc := opts.service()
	suggestions, err := svc.Suggest(ctx, strings.Join(fs.Args(), " "), opts.suggestions)
	if err != nil {
		return err
	}
	return writeJSON(stdout, suggestions)
}

func runSynonym(ctx context.Context, args []string, stdout io.Writer) error {
	var opts options
	fs := newFlagSet("synonym", &opts)
	if err := parse(fs, &opts, args); err != nil {
		return err
	}
	if opts.synonymsPath == "" {
		return fmt.Errorf("%w: --synonyms is required", errUsage)
	}

	svc := opts.service()
	switch sub := fs.Arg(0); sub {
	case "add":
		if fs.NArg() != 3 {
			return fmt.Errorf("%w: synonym add NAME ID", errUsage)
		}
		name, id := fs.Arg(1), fs.Arg(2)
		if err := svc.AddSynonym(ctx, name, id); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s -> %s\n", pantry.Fold(name), strings.TrimSpace(id))
		return nil
	case "list":
		synonyms, err := svc.Synonyms(ctx)
		if err != nil {
			return err
		}
		return writeJSON(stdout, synonyms)
	default:
		return fmt.Errorf("%w: unknown synonym command %q", errUsage, sub)
	}
}

func runImport(ctx context.Context, args []string, stdout io.Writer) error {
	var opts options
	fs := newFlagSet("import", &opts)
	dsn := fs.String("db", "", "SQLite database file")
	if err := parse(fs, &opts, args); err != nil {
		return err
	}
	if *dsn == "" {
		return fmt.Errorf("%w: --db is required", errUsage)
	}

	entries, err := catalog.NewFileSource(opts.catalogPath).Entries(ctx)
	if err != nil {
		return err
	}

	db, err := catalog.OpenSQLite(*dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.Import(ctx, entries)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "imported %d of %d entries into %s\n", n, len(entries), *dsn)
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
