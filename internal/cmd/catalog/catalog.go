// Package catalog provides commands for browsing the statute library.
package catalog

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	lawcatalog "github.com/dgallion1/lawref/internal/catalog"
	"github.com/dgallion1/lawref/internal/view"
)

type catalogOptions struct {
	lawsDir string
	db      string
	output  string
	noColor bool
	out     io.Writer
}

// NewCmdCatalog creates the catalog command.
func NewCmdCatalog() *cobra.Command {
	opts := &catalogOptions{}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse statute categories and laws",
		Long: `Commands for listing the categories and laws of the statute library.

By default the library folder is walked directly. With --db the
SQLite catalog is queried instead; populate it with 'lawref catalog sync'.`,
	}

	cmd.PersistentFlags().StringVar(&opts.lawsDir, "laws-dir", "assets/Laws", "root folder of the statute library")
	cmd.PersistentFlags().StringVar(&opts.db, "db", "", "SQLite catalog database")

	cmd.AddCommand(newCmdCategories(opts))
	cmd.AddCommand(newCmdSubCategories(opts))
	cmd.AddCommand(newCmdLaws(opts))
	cmd.AddCommand(newCmdSync(opts))

	return cmd
}

func (o *catalogOptions) bind(cmd *cobra.Command) error {
	o.output, _ = cmd.Flags().GetString("output")
	o.noColor, _ = cmd.Flags().GetBool("no-color")
	o.out = cmd.OutOrStdout()
	return view.ValidateFormat(o.output)
}

func (o *catalogOptions) renderer() *view.Renderer {
	format := view.Format(o.output)
	if format == "" || format == view.FormatOutline {
		format = view.FormatTable
	}
	r := view.NewRenderer(format, o.noColor)
	r.SetWriter(o.out)
	return r
}

// openStore returns the SQLite catalog when --db is set, else the folder walk.
func (o *catalogOptions) openStore() (lawcatalog.Store, func() error, error) {
	if o.db != "" {
		db, err := lawcatalog.NewSQLiteStore(o.db)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open catalog database: %w", err)
		}
		return db, db.Close, nil
	}
	if _, err := os.Stat(o.lawsDir); err != nil {
		return nil, nil, fmt.Errorf("laws directory: %w", err)
	}
	return lawcatalog.NewAssetStore(os.DirFS(o.lawsDir)), func() error { return nil }, nil
}

func newCmdCategories(opts *catalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cats"},
		Short:   "List top-level categories",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.bind(cmd); err != nil {
				return err
			}
			return runCategories(cmd.Context(), opts)
		},
	}
}

func runCategories(ctx context.Context, opts *catalogOptions) error {
	store, closeStore, err := opts.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	cats, err := store.Categories(ctx)
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}
	return renderCategories(opts.renderer(), cats)
}

func newCmdSubCategories(opts *catalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "subcategories <category>",
		Short: "List the sub-categories of a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.bind(cmd); err != nil {
				return err
			}
			return runSubCategories(cmd.Context(), opts, args[0])
		},
	}
}

func runSubCategories(ctx context.Context, opts *catalogOptions, category string) error {
	store, closeStore, err := opts.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	subs, err := store.SubCategories(ctx, category)
	if err != nil {
		return fmt.Errorf("failed to list sub-categories: %w", err)
	}
	return renderCategories(opts.renderer(), subs)
}

func renderCategories(r *view.Renderer, cats []lawcatalog.Category) error {
	if len(cats) == 0 {
		r.RenderText("No categories found.")
		return nil
	}
	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, []string{c.ID, c.Name, strconv.Itoa(c.Order)})
	}
	return r.RenderTable([]string{"ID", "NAME", "ORDER"}, rows)
}

func newCmdLaws(opts *catalogOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "laws <category>",
		Short: "List the laws of a category",
		Example: `  # Laws directly under a category
  lawref catalog laws 民法

  # Include the laws of its sub-categories
  lawref catalog laws 民法 --all -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.bind(cmd); err != nil {
				return err
			}
			return runLaws(cmd.Context(), opts, args[0], all)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include laws of sub-categories")

	return cmd
}

func runLaws(ctx context.Context, opts *catalogOptions, category string, all bool) error {
	store, closeStore, err := opts.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	var laws []lawcatalog.Law
	if all {
		laws, err = store.AllLaws(ctx, category)
	} else {
		laws, err = store.Laws(ctx, category)
	}
	if err != nil {
		return fmt.Errorf("failed to list laws: %w", err)
	}

	r := opts.renderer()
	if len(laws) == 0 {
		r.RenderText("No laws found.")
		return nil
	}
	rows := make([][]string, 0, len(laws))
	for _, l := range laws {
		rows = append(rows, []string{l.Name, l.CategoryID, l.Path})
	}
	return r.RenderTable([]string{"NAME", "CATEGORY", "PATH"}, rows)
}

func newCmdSync(opts *catalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Populate the SQLite catalog from the statute folder",
		Example: `  lawref catalog sync --laws-dir assets/Laws --db data/lawref.db`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.bind(cmd); err != nil {
				return err
			}
			return runSync(cmd.Context(), opts)
		},
	}
}

func runSync(ctx context.Context, opts *catalogOptions) error {
	if opts.db == "" {
		return fmt.Errorf("--db is required")
	}
	if _, err := os.Stat(opts.lawsDir); err != nil {
		return fmt.Errorf("laws directory: %w", err)
	}

	db, err := lawcatalog.NewSQLiteStore(opts.db)
	if err != nil {
		return fmt.Errorf("failed to open catalog database: %w", err)
	}
	defer db.Close()

	res, err := db.Sync(ctx, lawcatalog.NewAssetStore(os.DirFS(opts.lawsDir)))
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	opts.renderer().Success(fmt.Sprintf("synced %d categories and %d laws into %s", res.Categories, res.Laws, opts.db))
	return nil
}
