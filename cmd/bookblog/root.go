package main

import (
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/bookblog/bookblog-server/internal/config"
	"github.com/bookblog/bookblog-server/internal/di"
)

// cli carries the configuration overrides shared by every subcommand.
type cli struct {
	flags config.Flags
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "bookblog",
		Short: "BookBlog catalog server",
		Long: `BookBlog keeps a small book catalog with comments and cover images
in flat JSON documents, and can export, import, back up and restore them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	c.flags.Register(root.PersistentFlags())

	root.AddCommand(
		c.serveCmd(),
		c.exportCmd(),
		c.importCmd(),
		c.backupCmd(),
		c.restoreCmd(),
		c.usersCmd(),
		c.pruneCommentsCmd(),
	)
	return root
}

// run builds a container for one command invocation and tears it down after.
func (c *cli) run(fn func(i do.Injector) error) error {
	injector := di.NewContainer(c.flags)
	defer injector.Shutdown()
	return fn(injector)
}
