// npindex maintains the index of locally downloaded items whose
// thumbnails the nowplaying daemon reads.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/llehouerou/nowplaying/internal/artwork"
	"github.com/llehouerou/nowplaying/internal/config"
	"github.com/llehouerou/nowplaying/internal/downloads"
	"github.com/llehouerou/nowplaying/internal/errmsg"
)

const usage = `usage: npindex [-db path] <command> [args]

commands:
  add <item-id> <directory> [name]   index a downloaded item
  remove <item-id>                   drop an item from the index
  show <item-id>                     print one item
  list                               print all items
`

func main() {
	fs := flag.NewFlagSet("npindex", flag.ExitOnError)
	dbFlag := fs.String("db", "", "downloads index path (default from config)")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	_ = fs.Parse(os.Args[1:])

	dbPath := *dbFlag
	if dbPath == "" {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintln(os.Stderr, errmsg.Format(errmsg.OpConfigLoad, err))
			os.Exit(1)
		}
		if dbPath, err = cfg.DownloadsDBPath(); err != nil {
			fmt.Fprintln(os.Stderr, errmsg.Format(errmsg.OpIndexLookupPath, err))
			os.Exit(1)
		}
	}

	index, err := downloads.Open(dbPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, errmsg.FormatWith(errmsg.OpIndexOpen, dbPath, err))
		os.Exit(1)
	}
	defer index.Close()

	if err := run(context.Background(), index, fs.Args(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "npindex: %v\n", err)
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		index.Close()
		os.Exit(1)
	}
}

var errUsage = errors.New("invalid arguments")

func run(ctx context.Context, index *downloads.Index, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "add":
		if len(rest) < 2 || len(rest) > 3 {
			return errUsage
		}
		dir, err := filepath.Abs(rest[1])
		if err != nil {
			return err
		}
		item := downloads.Item{ID: rest[0], Directory: dir}
		if len(rest) == 3 {
			item.Name = rest[2]
		}
		if err := index.Put(ctx, item); err != nil {
			return fmt.Errorf("add %s: %w", item.ID, err)
		}
		if !hasThumbnail(&item) {
			fmt.Fprintf(out, "warning: %s has no %s\n", dir, artwork.ThumbnailFileName)
		}
		return nil

	case "remove":
		if len(rest) != 1 {
			return errUsage
		}
		return index.Delete(ctx, rest[0])

	case "show":
		if len(rest) != 1 {
			return errUsage
		}
		item, err := index.Lookup(ctx, rest[0])
		if err != nil {
			return fmt.Errorf("show %s: %w", rest[0], err)
		}
		return printItems(out, []downloads.Item{*item})

	case "list":
		if len(rest) != 0 {
			return errUsage
		}
		items, err := index.List(ctx)
		if err != nil {
			return err
		}
		return printItems(out, items)
	}

	return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
}

func hasThumbnail(item *downloads.Item) bool {
	_, err := os.Stat(item.ThumbnailPath(artwork.ThumbnailFileName))
	return err == nil
}

func printItems(out io.Writer, items []downloads.Item) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDIRECTORY\tTHUMBNAIL\tADDED")
	for i := range items {
		item := &items[i]
		thumb := "no"
		if hasThumbnail(item) {
			thumb = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			item.ID, item.Name, item.Directory, thumb, humanize.Time(item.CreatedAt))
	}
	return w.Flush()
}
