package main

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/charlesng35/filecache/internal/cache"
)

// withCache opens the runtime for the duration of fn.
func (c *cli) withCache(fn func(engine *cache.Engine) error) error {
	stack, err := bootstrapRuntime(c.cfg)
	if err != nil {
		return err
	}
	defer stack.Close()

	return fn(stack.Cache)
}

func (c *cli) addCmd() *cobra.Command {
	var (
		name string
		move bool
	)

	cmd := &cobra.Command{
		Use:   "add <key> <source>",
		Short: "Store a file under key and print the stored path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, source := args[0], args[1]
			if name == "" {
				name = filepath.Base(source)
			}
			mode := cache.Copy
			if move {
				mode = cache.Move
			}

			return c.withCache(func(engine *cache.Engine) error {
				stored, err := engine.Add(cmd.Context(), key, source, name, mode)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), stored)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Stored file name (default: base name of source)")
	cmd.Flags().BoolVar(&move, "move", false, "Move the source into the cache instead of copying it")
	return cmd
}

func (c *cli) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the stored path for key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCache(func(engine *cache.Engine) error {
				path, ok, err := engine.GetPath(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no entry for key %q", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	}
}

func (c *cli) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <key>...",
		Short: "Delete entries and their files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCache(func(engine *cache.Engine) error {
				var failures cache.EvictionFailures
				for _, key := range args {
					failed, err := engine.Delete(cmd.Context(), key)
					failures = append(failures, failed...)
					if err != nil {
						return multierr.Append(err, reportFailures(cmd.ErrOrStderr(), failures))
					}
				}
				return reportFailures(cmd.ErrOrStderr(), failures)
			})
		},
	}
}

func (c *cli) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every entry and its file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCache(func(engine *cache.Engine) error {
				failures, err := engine.Clear(cmd.Context())
				if err != nil {
					return err
				}
				return reportFailures(cmd.ErrOrStderr(), failures)
			})
		},
	}
}

func (c *cli) expireCmd() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "expire",
		Short: "Delete entries older than a duration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("older-than") {
				olderThan = c.cfg.Maintenance.Retention
			}
			return c.withCache(func(engine *cache.Engine) error {
				failures, err := engine.DeleteOlderThan(cmd.Context(), olderThan)
				if err != nil {
					return err
				}
				return reportFailures(cmd.ErrOrStderr(), failures)
			})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Maximum entry age (default: maintenance.retention)")
	return cmd
}

func (c *cli) lsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List entries ordered by key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withCache(func(engine *cache.Engine) error {
				entries, err := engine.Entries(cmd.Context())
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "KEY\tFILE\tCREATED")
				for _, entry := range entries {
					created := "-"
					if !entry.CreatedAt.IsZero() {
						created = cache.FormatTimestamp(entry.CreatedAt)
					}
					fmt.Fprintf(w, "%s\t%s\t%s\n", entry.Key, entry.FileName, created)
				}
				return w.Flush()
			})
		},
	}
}

// reportFailures lists entries whose files could not be removed and turns
// them into a non-zero exit.
func reportFailures(w io.Writer, failures cache.EvictionFailures) error {
	if len(failures) == 0 {
		return nil
	}
	for _, failure := range failures {
		fmt.Fprintf(w, "%s\t%s\t%v\n", failure.Key, failure.FileName, failure.Err)
	}
	return fmt.Errorf("%d entries could not be evicted", len(failures))
}
