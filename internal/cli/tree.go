package cli

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ato/corvoid/pkg/resolve"
)

const labelWidth = 60

// treeCommand creates the tree command.
func (c *CLI) treeCommand() *cobra.Command {
	var sortBySize, showGroup bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the dependency tree",
		Long: `Print the resolved dependency tree of the project with the size of each
cached artifact, the total size of its subtree and its license.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stop := spin(cmd.Context(), "Resolving dependencies")
			_, tree, err := c.resolve(cmd)
			stop()
			if err != nil {
				return err
			}
			p := newTreePrinter(cmd.OutOrStdout())
			p.sort, p.group = sortBySize, showGroup
			p.print(tree)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&sortBySize, "sort", "s", false, "sort children by total size, largest first")
	cmd.Flags().BoolVar(&showGroup, "group", false, "show group ids")
	return cmd
}

// treePrinter renders a resolved tree as an aligned table.
type treePrinter struct {
	w     io.Writer
	sort  bool
	group bool
	size  func(path string) (int64, bool)

	totals map[*resolve.Node]int64
}

func newTreePrinter(w io.Writer) *treePrinter {
	return &treePrinter{w: w, size: fileSize, totals: make(map[*resolve.Node]int64)}
}

// fileSize returns the size of a regular file.
func fileSize(path string) (int64, bool) {
	if path == "" {
		return 0, false
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return 0, false
	}
	return info.Size(), true
}

func (p *treePrinter) print(tree *resolve.Tree) {
	header := fmt.Sprintf("%-*s %8s %8s %6s   %s", labelWidth, "Artifact", "Size", "Total", "%", "License")
	fmt.Fprintln(p.w, StyleDim.Render(header))

	p.node(tree.Root, "", true, p.total(tree.Root))

	if un := tree.Unconstrained(); len(un) > 0 {
		fmt.Fprintln(p.w)
		fmt.Fprintln(p.w, StyleError.Render("Unconstrained:"))
		for _, c := range un {
			fmt.Fprintln(p.w, c)
		}
	}
}

// total is the size of n's artifact plus the totals of its children.
func (p *treePrinter) total(n *resolve.Node) int64 {
	if t, ok := p.totals[n]; ok {
		return t
	}
	t, _ := p.size(n.ArtifactPath())
	for _, c := range n.Children() {
		t += p.total(c)
	}
	p.totals[n] = t
	return t
}

func (p *treePrinter) node(n *resolve.Node, prefix string, last bool, rootTotal int64) {
	var branch, next string
	if !n.IsRoot() {
		branch, next = "├── ", "│   "
		if last {
			branch, next = "└── ", "    "
		}
		branch = StyleDim.Render(prefix + branch)
		next = prefix + next
	}

	label := branch + p.name(n)
	if pad := labelWidth - lipgloss.Width(label); pad > 0 {
		label += strings.Repeat(" ", pad)
	}

	own := ""
	if size, ok := p.size(n.ArtifactPath()); ok && !n.IsRoot() {
		own = formatBytes(size)
	}
	total := p.total(n)
	totalStr := ""
	if len(n.Children()) > 0 && total > 0 {
		totalStr = formatBytes(total)
	}

	fmt.Fprintf(p.w, "%s %8s %8s %6s   %s\n", label, own, totalStr, percent(total, rootTotal, n.IsRoot()), licenses(n))

	children := n.Children()
	if p.sort {
		children = slices.Clone(children)
		slices.SortStableFunc(children, func(a, b *resolve.Node) int {
			return cmp.Compare(p.total(b), p.total(a))
		})
	}
	for i, c := range children {
		p.node(c, next, i == len(children)-1, rootTotal)
	}
}

func (p *treePrinter) name(n *resolve.Node) string {
	c := n.Coord()
	name := StyleArtifact.Render(c.ArtifactID) + " " + StyleVersion.Render(n.Version())
	if p.group && c.GroupID != c.ArtifactID {
		name = StyleDim.Render(c.GroupID+":") + name
	}
	return name
}

func percent(total, rootTotal int64, root bool) string {
	switch {
	case rootTotal > 0:
		v := 100 * float64(total) / float64(rootTotal)
		if v < 10 {
			return fmt.Sprintf("%.1f%%", v)
		}
		return fmt.Sprintf("%.0f%%", v)
	case root:
		return "100.0%"
	}
	return ""
}

// formatBytes renders n with a binary unit, e.g. "4.2 MB" or " 12   B".
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%3d   B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 5; m /= unit {
		div *= unit
		exp++
	}
	v := float64(n) / float64(div)
	if v < 10 {
		return fmt.Sprintf("%3.1f %cB", v, "KMGTPE"[exp])
	}
	return fmt.Sprintf("%3.0f %cB", v, "KMGTPE"[exp])
}

// licenses returns the node's normalized license names, sorted and
// deduplicated.
func licenses(n *resolve.Node) string {
	m := n.Model()
	if m == nil {
		return ""
	}
	var names []string
	for _, l := range m.Licenses {
		if l.Name != "" {
			names = append(names, normalizeLicense(l.Name))
		}
	}
	slices.Sort(names)
	return strings.Join(slices.Compact(names), ", ")
}

// normalizeLicense maps common spellings of license names to a short form.
func normalizeLicense(name string) string {
	switch name {
	case "Apache License, Version 2.0", "The Apache Software License, Version 2.0",
		"The Apache License, Version 2.0", "Apache 2.0 license", "Apache License 2.0", "Apache-2.0":
		return "Apache 2.0"
	case "The MIT License", "MIT License":
		return "MIT"
	case "BSD License":
		return "BSD"
	case "GNU General Public License, version 2 with the GNU Classpath Exception", "GPL2 w/ CPE":
		return "GPLv2 w/ CPE"
	case "GNU General Public License v3.0":
		return "GPLv3"
	case "GNU Lesser General Public License", "GNU Lesser General Public License (LGPL)":
		return "LGPL"
	case "GNU Lesser General Public License version 2.1 or later":
		return "LGPLv2.1+"
	case "Mozilla Public License 1.1 (MPL 1.1)":
		return "MPL 1.1"
	case "Eclipse Public License v. 2.0":
		return "EPL 2.0"
	}
	return name
}
