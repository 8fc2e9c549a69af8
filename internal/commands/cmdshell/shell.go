package cmdshell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/leocov-dev/mrbulk/cmd"
	"github.com/leocov-dev/mrbulk/config"
	"github.com/leocov-dev/mrbulk/core"
	"github.com/leocov-dev/mrbulk/internal/shared"
)

const helpText = `Commands:
  search <text>     search Modrinth (empty text lists the most downloaded)
  version <mc>      change the game version
  category [name]   filter by category, or clear the filter
  sort <index>      relevance, downloads, follows, newest or updated
  toggle <n|name>   select or deselect a result
  add <n|name>      select the newest compatible version of a result
  pick <n|name>     choose the version of a result
  list              show the selection
  remove <id>       drop a package from the selection
  clear             empty the selection
  download          download the selection
  bundle            download the selection into one archive
  quit`

type shell struct {
	cfg          config.Config
	registry     core.Registry
	resolver     *core.Resolver
	session      *core.SearchSession
	store        *core.SelectionStore
	orchestrator *core.Orchestrator
}

func newShell(cfg config.Config, registry core.Registry, orchestrator *core.Orchestrator) *shell {
	return &shell{
		cfg:      cfg,
		registry: registry,
		resolver: core.NewResolver(registry),
		session: core.NewSearchSession(registry, core.SessionOptions{
			Debounce:    cfg.Debounce,
			Limit:       cfg.Limit,
			ProjectType: core.ProjectType(cfg.ProjectType),
			GameVersion: cfg.GameVersion,
			Loaders:     cfg.Loaders,
			OnError: func(err error) {
				fmt.Printf("Search failed: %v\n", err)
			},
		}),
		store:        core.NewSelectionStore(),
		orchestrator: orchestrator,
	}
}

func (s *shell) resolveOptions() core.ResolveOptions {
	opts := s.cfg.ResolveOptions()
	opts.GameVersion = s.session.Criteria().GameVersion
	return opts
}

// target finds a package by 1-based result number, id, slug or fuzzy title match
func (s *shell) target(ctx context.Context, term string) (core.PackageSummary, error) {
	results := s.session.Results()
	if n, err := strconv.Atoi(term); err == nil {
		if n < 1 || n > len(results) {
			return core.PackageSummary{}, fmt.Errorf("no result number %d", n)
		}
		return results[n-1], nil
	}
	if pkg, ok := shared.FindPackage(term, results); ok {
		return pkg, nil
	}
	return s.registry.GetPackage(ctx, term)
}

func (s *shell) showResults(ctx context.Context) error {
	if err := s.session.Wait(ctx); err != nil {
		return err
	}
	shared.PrintResults(s.session.Current().Results, s.store)
	return nil
}

var errQuit = errors.New("quit")

func (s *shell) exec(ctx context.Context, line string) error {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "":
		return nil
	case "help", "?":
		fmt.Println(helpText)
	case "quit", "exit", "q":
		return errQuit
	case "search", "s":
		s.session.SetQuery(arg)
		return s.showResults(ctx)
	case "version", "gv":
		if arg == "" {
			return errors.New("usage: version <mc>")
		}
		s.session.SetGameVersion(arg)
		return s.showResults(ctx)
	case "category", "cat":
		s.session.SetCategory(arg)
		return s.showResults(ctx)
	case "sort":
		sort, err := core.ParseSortIndex(arg)
		if err != nil {
			return err
		}
		s.session.SetSort(sort)
		return s.showResults(ctx)
	case "toggle", "t":
		pkg, err := s.target(ctx, arg)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", pkg.DisplayName(), s.store.Toggle(pkg))
	case "add", "a", "pick", "p":
		pkg, err := s.target(ctx, arg)
		if err != nil {
			return err
		}
		return shared.QueuePackage(ctx, s.resolver, s.store, pkg, s.resolveOptions(), name == "pick" || name == "p")
	case "list", "ls":
		shared.PrintSelection(s.store.Snapshot())
	case "remove", "rm":
		if !s.store.Remove(arg) {
			if pkg, err := s.target(ctx, arg); err == nil && s.store.Remove(pkg.ID) {
				return nil
			}
			return fmt.Errorf("%s is not selected", arg)
		}
	case "clear":
		s.store.Clear()
	case "download", "bundle":
		if s.store.Len() == 0 {
			return errors.New("nothing selected")
		}
		batchCtx, stop := batchContext(ctx)
		defer stop()
		shared.Retrieve(batchCtx, s.orchestrator, s.store.Snapshot(), name == "bundle", shared.BundleLabel(s.cfg.OutputDir))
	default:
		return fmt.Errorf("unknown command %q, try help", name)
	}
	return nil
}

// batchContext is cancelled by an interrupt received while one batch runs.
// Earlier interrupts and the cancellation of ctx do not carry over.
func batchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.WithoutCancel(ctx), os.Interrupt)
}

func (s *shell) run(ctx context.Context, in io.Reader) {
	s.session.Start()
	if err := s.showResults(ctx); err != nil {
		logrus.WithError(err).Debug("initial listing")
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Print("mrbulk> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		err := s.exec(ctx, scanner.Text())
		if errors.Is(err, errQuit) {
			return
		}
		if err != nil {
			fmt.Println(err)
		}
	}
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive session to search, select and download many projects",
	Args:  cobra.NoArgs,
	Run: func(c *cobra.Command, args []string) {
		cfg := shared.LoadConfig()
		sh := newShell(cfg, shared.NewRegistry(cfg), shared.NewOrchestrator(cfg))
		defer sh.session.Close()

		fmt.Println("Type help for a list of commands")
		// an interrupt only abandons a running download, quit or EOF ends the shell
		sh.run(context.WithoutCancel(c.Context()), os.Stdin)
	},
}

func init() {
	cmd.Add(shellCmd)
}
