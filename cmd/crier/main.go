package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ghodss/yaml"
	"github.com/imdario/mergo"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/crierhq/crier/config"
	"github.com/crierhq/crier/runner"
	"github.com/crierhq/crier/search"
	"github.com/crierhq/crier/vcs/gitcli"
)

var (
	// these are overridden by go build -X
	Version string
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(rawArgs []string) error {
	cfg := config.New(nil)

	var help bool
	var version bool
	var cfgFile string
	var baseline string
	var readStats bool
	var readRisk bool
	var checkCommits []string
	var checkCommitsFromGit bool
	var searchMode bool
	var jsonOut bool
	var debugConfig string
	var printConfig bool
	q := search.Query{}
	var since string
	var until string
	flags := pflag.NewFlagSet("crier", pflag.ExitOnError)
	flags.BoolVarP(&help, "help", "h", false, "show help")
	flags.BoolVarP(&version, "version", "V", false, "print version and exit")
	flags.BoolVar(&cfg.InCI, "ci", false, "Run in CI mode")
	flags.StringVarP(&baseline, "baseline", "b", "", "bump from `version` instead of the latest release tag")
	flags.BoolVarP(&readStats, "stats", "S", false, "print commit distribution stats")
	flags.BoolVarP(&readRisk, "risk", "R", false, "print a change risk assessment")
	flags.StringArrayVar(&checkCommits, "check-commit", nil, "only validate provided commit `body`")
	flags.BoolVarP(&checkCommitsFromGit, "check", "C", false, "only validate commits in the range")
	flags.BoolVar(&searchMode, "search", false, "query commits in the range")
	flags.StringVarP(&q.Keyword, "keyword", "k", "", "search for `keyword` in subjects and bodies")
	flags.StringArrayVar(&q.Types, "type", nil, "filter search results by commit `type`s")
	flags.StringArrayVar(&q.Scopes, "scope", nil, "filter search results by scope `name`s")
	flags.StringArrayVar(&q.Authors, "author", nil, "filter search results by author `name`s")
	flags.StringVar(&since, "since", "", "only match commits authored at or after `date` (RFC3339)")
	flags.StringVar(&until, "until", "", "only match commits authored before `date` (RFC3339)")
	flags.StringVar(&q.SortBy, "sort", "", "sort search results by `field` (date, type, relevance)")
	flags.StringVar(&q.SortOrder, "order", "", "sort search results in `direction` (asc, desc)")
	flags.IntVar(&q.Page, "page", 1, "read page `n` of search results")
	flags.IntVar(&q.PageSize, "page-size", 20, "read `n` search results per page")
	flags.StringArrayVar(&cfg.AllowedScopes, "allowed-scope", nil, "declare allowed scopes' `name`s")
	flags.StringArrayVar(&cfg.Types, "allowed-type", cfg.Types, "declare allowed commit `type`s")
	flags.StringArrayVar(&cfg.CoreModulePatterns, "core-module", nil, "declare core module path `glob`s for risk scoring")
	flags.BoolVarP(&jsonOut, "json", "j", false, "print results as JSON")
	flags.BoolVarP(&cfg.Debug, "verbose", "v", false, "print additional debugging info")
	flags.BoolVarP(&cfg.Quiet, "quiet", "q", false, "print as little as necessary")
	flags.StringVarP(&cfgFile, "config", "c", "", "specify config `file`")
	flags.BoolVar(&printConfig, "print-config", false, "Print default configuration and exit")
	flags.StringVar(&debugConfig, "debug-config", "", "Write configuration to `file` and exit")

	if err := flags.Parse(rawArgs); err != nil {
		return err
	}
	args := flags.Args()[1:]

	if help {
		usage(cfg, flags)
		return nil
	}
	if version {
		cfg.Printf("%s", Version)
		return nil
	}
	if printConfig {
		b, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		cfg.Printf("%s", string(b))
		return nil
	}
	if !cfg.InCI {
		if env := os.Getenv("CI"); env == "true" || env == "1" || env == "yes" {
			cfg.InCI = true
		}
	}

	crierYAML, err := readCrierYAML(cfgFile)
	if err != nil {
		return err
	}
	if crierYAML != nil {
		if err := mergo.Merge(&cfg, crierYAML, mergo.WithOverride); err != nil {
			return err
		}
	}
	if cfg.Debug {
		b, err := json.MarshalIndent(cfg, "", "  ")
		die(err)
		cfg.Debugf("config: %s", string(b))
	}

	if debugConfig != "" {
		b, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		if debugConfig == "-" {
			cfg.Printf("%s", b)
		} else {
			if err := ioutil.WriteFile(debugConfig, b, 0644); err != nil {
				return err
			}
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if debugConfig != "" {
		return nil
	}
	// done setting up config

	var from, to string
	if len(args) > 0 {
		from, to = splitRange(args[0])
	}

	git := gitcli.New(cfg, "")
	rnr, err := runner.New(cfg, git)
	if err != nil {
		return err
	}
	ctx := context.Background()

	stdoutfd := os.Stdout.Fd()
	istty := isatty.IsTerminal(stdoutfd)

	if readStats {
		stats, err := rnr.Stats(ctx, from, to)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(cfg, stats)
		}
		return stats.TextSummary(cfg.Term.Stdout)
	}

	if readRisk {
		assessment, err := rnr.Risk(ctx, from, to)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(cfg, assessment)
		}
		cfg.Printf("risk: %d/100 (%s)", assessment.Score, assessment.Level)
		for _, factor := range assessment.Factors {
			cfg.Printf("  - %s", factor)
		}
		return nil
	}

	if searchMode {
		if since != "" {
			t, err := time.Parse(time.RFC3339, since)
			if err != nil {
				return fmt.Errorf("--since: %w", err)
			}
			q.Since = t
		}
		if until != "" {
			t, err := time.Parse(time.RFC3339, until)
			if err != nil {
				return fmt.Errorf("--until: %w", err)
			}
			q.Until = t
		}
		res, err := rnr.Search(ctx, from, to, q)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(cfg, res)
		}
		for _, rec := range res.Entries {
			cfg.Printf("%s %s", rec.ShortID(), rec.Subject)
		}
		if !cfg.Quiet {
			cfg.Printf("page %d of %d result(s)", res.Page, res.Total)
		}
		return nil
	}

	shouldCheckCommits := checkCommitsFromGit || flags.Lookup("check-commit").Changed
	if shouldCheckCommits {
		hasPipe := !isatty.IsTerminal(os.Stdin.Fd())
		var err error
		if checkCommitsFromGit {
			_, err = rnr.CheckCommitsFromGit(ctx, from, to)
		} else if hasPipe && len(checkCommits) == 1 && checkCommits[0] == "-" {
			_, err = rnr.CheckReadCommits(ctx, os.Stdin)
		} else {
			_, err = rnr.CheckCommitSubjects(ctx, checkCommits)
		}
		if err != nil {
			cf := runner.CheckFailure{}
			if errors.As(err, &cf) {
				if err := cf.WriteFailure(os.Stdout); err != nil {
					fmt.Fprintln(os.Stderr, "failed to write invalid commit information:", err)
				}
			}
			return err
		}
		cfg.Printf("OK")
		return nil
	}

	res, err := rnr.Suggest(ctx, baseline, from, to)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(cfg, res)
	}
	rec := res.Recommended
	if cfg.Quiet {
		if istty {
			fmt.Println(rec.Version)
		} else {
			fmt.Print(rec.Version)
		}
		return nil
	}
	cfg.Printf("-> %s (%s, confidence %.2f)", rec.Version, rec.BumpName, rec.Confidence)
	cfg.Printf("   %s", rec.Reason)
	for _, alt := range res.Suggestions {
		if alt == rec {
			continue
		}
		cfg.Printf("   or %s (%s, confidence %.2f)", alt.Version, alt.BumpName, alt.Confidence)
	}
	return nil
}

func printJSON(cfg config.Config, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	cfg.Printf("%s", string(b))
	return nil
}

// splitRange turns a git revision range into from and to parts. A bare
// revision is treated as the lower bound.
func splitRange(s string) (string, string) {
	if i := strings.Index(s, ".."); i >= 0 {
		return s[:i], strings.TrimPrefix(s[i+2:], ".")
	}
	return s, ""
}

func die(err error) {
	if err != nil {
		panic(err)
	}
}

func usage(cfg config.Config, flags *pflag.FlagSet) {
	cfg.Printf(`%s [range]

A utility for analyzing conventional commit history.

FLAGS
%s

EXAMPLES

# suggest the next version based on commits since the last release tag
$ crier

# suggest the next version for an explicit baseline and range
$ crier -b 1.2.3 v1.2.3..HEAD

# score the risk of the changes on a branch
$ crier --risk main..HEAD

# print commit distribution stats for the whole history
$ crier --stats

# find fix commits mentioning a keyword
$ crier --search -k timeout --type fix

# validate commits against allowed types and scopes:
$ crier --check v1.2.3..HEAD
`, os.Args[0], flags.FlagUsages())
}

func readCrierYAML(p string) (*config.Config, error) {
	if p != "" {
		b, err := ioutil.ReadFile(p)
		if err != nil {
			return nil, err
		}
		cfg := &config.Config{}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	for {
		candPath := filepath.Join(wd, "crier.yaml")
		b, err := ioutil.ReadFile(candPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				wd, _ = filepath.Split(filepath.Clean(wd))
				if wd == "/" {
					break
				}
				continue
			}
			return nil, err
		}

		cfg := &config.Config{}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return nil, nil
}
