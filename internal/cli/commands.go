package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ato/corvoid/pkg/errors"
	"github.com/ato/corvoid/pkg/pom"
	"github.com/ato/corvoid/pkg/resolve"
)

// classpathCommand prints the classpath. It only fetches manifests.
func (c *CLI) classpathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "classpath",
		Short: "Print the classpath of the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, tree, err := c.resolve(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tree.Classpath())
			return nil
		},
	}
}

// depsCommand downloads every artifact of the tree.
func (c *CLI) depsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Download the dependencies of the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			stop := spin(ctx, "Fetching dependencies")
			defer stop()

			s, tree, err := c.resolve(cmd)
			if err != nil {
				return err
			}
			prog := newProgress(s.logger)
			n, err := tree.FetchDependencies(ctx)
			if err != nil {
				return err
			}
			stop()
			prog.debug("fetched %d artifacts", n)

			out := cmd.OutOrStdout()
			downloaded, size := c.downloads.snapshot()
			printSuccess(out, "%d artifacts in %s", n, s.cache.Root())
			printStats(out, fmt.Sprintf("%d files downloaded", downloaded), strings.TrimSpace(formatBytes(size)))
			if un := tree.Unconstrained(); len(un) > 0 {
				printWarning(out, "%d unconstrained dependencies skipped", len(un))
				for _, u := range un {
					printDetail(out, "%s", u)
				}
			}
			return nil
		},
	}
}

// outdatedCommand lists dependencies with newer stable releases.
func (c *CLI) outdatedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "outdated",
		Short: "List dependencies with newer stable releases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, m, err := c.project(cmd)
			if err != nil {
				return err
			}
			updates, err := resolve.Outdated(cmd.Context(), m, s.cache)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, u := range updates {
				printUpdate(out, u.Coord.String(), u.Current, u.Latest)
			}
			return nil
		},
	}
}

// latestCommand prints the newest stable release of one coordinate.
func (c *CLI) latestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "latest <groupId:artifactId>",
		Short: "Print the latest stable version of an artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, err := pom.ParseCoord(args[0])
			if err != nil {
				return err
			}
			s, err := c.open(cmd)
			if err != nil {
				return err
			}
			v, err := s.cache.LatestVersion(cmd.Context(), coord)
			if err != nil {
				return err
			}
			if v == "" {
				return errors.New(errors.ErrCodeNotFound, "no stable version of %s", coord)
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

// modulesCommand lists the modules of the local build.
func (c *CLI) modulesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "List the modules of the local build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := c.project(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range s.ws.Modules() {
				path, _ := s.ws.LocalModulePOM(m)
				fmt.Fprintf(out, "%s\t%s\n", m, path)
			}
			return nil
		},
	}
}
