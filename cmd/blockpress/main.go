// Package main provides the blockpress binary: the web server plus
// maintenance commands for the database and search index.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eringen/blockpress"
	"github.com/eringen/blockpress/blocks"
	"github.com/eringen/blockpress/content"
	"github.com/eringen/blockpress/logger"
	"github.com/eringen/blockpress/search"
	"github.com/eringen/blockpress/seo"
	"github.com/eringen/blockpress/views"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	load := func() (blockpress.SiteConfig, error) {
		return blockpress.LoadConfig(configPath)
	}

	cmd := &cobra.Command{
		Use:           "blockpress",
		Short:         "Block-based blog engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c",
		blockpress.EnvOr("BLOCKPRESS_CONFIG", ""), "Config file path (YAML)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the web server",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := load()
				if err != nil {
					return err
				}
				return serve(cfg)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or upgrade the database schema",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := load()
				if err != nil {
					return err
				}
				store, err := blockpress.NewStore(cfg.DatabasePath)
				if err != nil {
					return err
				}
				defer store.Close()
				fmt.Fprintf(cmd.OutOrStdout(), "database ready at %s\n", cfg.DatabasePath)
				return nil
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Insert example categories and a welcome post",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := load()
				if err != nil {
					return err
				}
				store, err := blockpress.NewStore(cfg.DatabasePath)
				if err != nil {
					return err
				}
				defer store.Close()
				report, err := blockpress.Seed(store)
				for _, line := range report {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", line)
				}
				return err
			},
		},
		&cobra.Command{
			Use:   "health",
			Short: "Check configuration, database and search index",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := load()
				if err != nil {
					return err
				}
				return health(cmd.OutOrStdout(), cfg)
			},
		},
		&cobra.Command{
			Use:   "reindex",
			Short: "Rebuild the search index from published posts",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := load()
				if err != nil {
					return err
				}
				return reindex(cmd.OutOrStdout(), cfg)
			},
		},
		&cobra.Command{
			Use:   "render [file]",
			Short: "Render a block document (JSON) to HTML; reads stdin without a file",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				doc, err := readDocument(cmd.InOrStdin(), args)
				if err != nil {
					return err
				}
				_, err = io.WriteString(cmd.OutOrStdout(), blocks.RenderHTML(doc)+"\n")
				return err
			},
		},
		scoreCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "blockpress %s\n", version)
			},
		},
	)
	return cmd
}

func scoreCmd() *cobra.Command {
	var in seo.Input
	cmd := &cobra.Command{
		Use:   "score [file]",
		Short: "Score a block document (JSON) against the SEO rules",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			res := content.Process(doc.Content, in.Excerpt)
			in.Excerpt = res.Excerpt
			in.ContentHTML = res.ContentHTML
			in.ContentText = res.ContentText
			in.WordCount = res.WordCount
			if in.Slug == "" {
				in.Slug = blockpress.GenerateSlug(in.Title)
			}
			result := seo.Score(in)
			out := cmd.OutOrStdout()
			for _, c := range result.Checks {
				fmt.Fprintf(out, "%-5s %-26s %s\n", c.Status, c.ID, c.Message)
			}
			fmt.Fprintf(out, "\noverall: %s\n", result.Overall)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Title, "title", "", "Post title")
	f.StringVar(&in.Slug, "slug", "", "Post slug (derived from the title when empty)")
	f.StringVar(&in.Excerpt, "excerpt", "", "Excerpt (derived from the content when empty)")
	f.StringVar(&in.MetaTitle, "meta-title", "", "Meta title override")
	f.StringVar(&in.MetaDescription, "meta-description", "", "Meta description")
	f.StringVar(&in.FocusKeyword, "keyword", "", "Focus keyword")
	f.StringVar(&in.CoverImageURL, "cover", "", "Cover image URL")
	return cmd
}

func readDocument(stdin io.Reader, args []string) (blocks.Document, error) {
	var data []byte
	var err error
	if len(args) == 1 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(stdin)
	}
	if err != nil {
		return blocks.Document{}, err
	}
	return blocks.Parse(data)
}

func serve(cfg blockpress.SiteConfig) error {
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	app := blockpress.New(cfg, views.Default(cfg), blockpress.WithLogger(log))

	errCh := make(chan error, 1)
	go func() { errCh <- app.Start() }()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case err := <-errCh:
		app.Close()
		return err
	case s := <-sig:
		log.Info("shutting down", zap.String("signal", s.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Echo.Shutdown(ctx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
	return app.Close()
}

func health(out io.Writer, cfg blockpress.SiteConfig) error {
	failed := false
	check := func(name string, err error, ok string) {
		if err != nil {
			failed = true
			fmt.Fprintf(out, "  ✗ %s: %v\n", name, err)
			return
		}
		fmt.Fprintf(out, "  ✓ %s: %s\n", name, ok)
	}

	check("Config", cfg.Validate(), "all required settings present")

	store, err := blockpress.NewStore(cfg.DatabasePath)
	if err == nil {
		defer store.Close()
		err = store.Ping()
	}
	check("Database", err, cfg.DatabasePath)

	idx, err := search.Open(cfg.SearchIndexPath)
	var docs uint64
	if err == nil {
		defer idx.Close()
		docs, err = idx.Count()
	}
	check("Search index", err, fmt.Sprintf("%d documents", docs))

	if failed {
		return errors.New("some checks failed")
	}
	fmt.Fprintln(out, "  All checks passed!")
	return nil
}

func reindex(out io.Writer, cfg blockpress.SiteConfig) error {
	store, err := blockpress.NewStore(cfg.DatabasePath)
	if err != nil {
		return err
	}
	idx, err := search.Open(cfg.SearchIndexPath)
	if err != nil {
		store.Close()
		return err
	}
	app := blockpress.New(cfg, blockpress.ViewFuncs{},
		blockpress.WithStore(store),
		blockpress.WithSearchIndex(idx),
		blockpress.WithLogger(zap.NewNop()),
	)
	defer app.Close()
	n, err := app.Reindex()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "indexed %d posts\n", n)
	return nil
}
