package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/unildd"
	"github.com/simonhull/unildd/internal/registry"
	"github.com/simonhull/unildd/internal/types"
)

// treeNode is one entry of the container structure of a file.
type treeNode struct {
	Label    string
	Children []*treeNode
}

func newTreeCmd() *cobra.Command {
	var maxDepth int

	cmd := &cobra.Command{
		Use:   "tree <file>",
		Short: "Show the container structure of a file",
		Long: `Print the nesting of archives and fat binaries inside a file as a tree.

Each member shows its offset and size inside its parent and the format it
was classified as. No object is parsed beyond its member table.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read file: %w", err)
			}
			root := buildTree(filepath.Base(args[0]), "", data, 0, maxDepth)
			_, err = fmt.Fprint(cmd.OutOrStdout(), renderTree(root))
			return err
		},
	}

	cmd.Flags().IntVar(&maxDepth, "max-depth", unildd.DefaultMaxDepth, "Maximum container nesting to descend into")
	return cmd
}

// buildTree classifies data and, for containers, descends into members.
// at locates data inside its parent and is empty for the input itself.
func buildTree(name, at string, data []byte, depth, maxDepth int) *treeNode {
	c := types.Classify(data)
	node := &treeNode{Label: fmt.Sprintf("%s%s [%s, %d bytes]", name, at, describe(c), len(data))}

	if !c.Kind.Container() {
		return node
	}
	if depth >= maxDepth {
		node.Label += " (depth limit)"
		return node
	}

	cp := registry.GetContainer(c.Format)
	if cp == nil {
		node.Label += " (unsupported)"
		return node
	}
	members, err := cp.Members(data, name)
	if err != nil {
		node.Label += fmt.Sprintf(" (error: %v)", err)
		return node
	}

	for _, m := range members {
		if m.Err != nil {
			node.Children = append(node.Children, &treeNode{
				Label: fmt.Sprintf("%s @%#x (error: %v)", m.Name, m.Offset, m.Err),
			})
			continue
		}
		node.Children = append(node.Children, buildTree(m.Name, fmt.Sprintf(" @%#x", m.Offset), m.Data, depth+1, maxDepth))
	}
	return node
}

func describe(c types.Classification) string {
	if c.Kind == types.KindUnknown {
		if c.Magic == 0 {
			return "unknown"
		}
		return fmt.Sprintf("unknown magic %#08x", c.Magic)
	}
	return c.Format.String()
}

// renderTree renders a tree structure in ASCII art format.
func renderTree(root *treeNode) string {
	var buf strings.Builder
	buf.WriteString(root.Label + "\n")
	for i, child := range root.Children {
		renderTreeNode(&buf, child, "", i == len(root.Children)-1)
	}
	return buf.String()
}

func renderTreeNode(buf *strings.Builder, node *treeNode, prefix string, isLast bool) {
	connector := "├─"
	if isLast {
		connector = "└─"
	}
	fmt.Fprintf(buf, "%s%s %s\n", prefix, connector, node.Label)

	childPrefix := prefix
	if isLast {
		childPrefix += "   "
	} else {
		childPrefix += "│  "
	}
	for i, child := range node.Children {
		renderTreeNode(buf, child, childPrefix, i == len(node.Children)-1)
	}
}
