// File: pkg/loader/tree.go
package loader

import (
	"path/filepath"
	"sort"
	"strings"
)

type treeNode struct {
	name     string
	children map[string]*treeNode
}

func (n *treeNode) child(name string) *treeNode {
	if n.children == nil {
		n.children = make(map[string]*treeNode)
	}
	c, ok := n.children[name]
	if !ok {
		c = &treeNode{name: name}
		n.children[name] = c
	}
	return c
}

func (n *treeNode) isDir() bool {
	return n.children != nil
}

// RenderTree draws the relative file paths as an ASCII tree under rootName.
// Directories come before files, each group sorted case-insensitively.
func RenderTree(rootName string, files []string) string {
	root := &treeNode{name: rootName}
	for _, file := range files {
		node := root
		for _, part := range strings.Split(filepath.ToSlash(file), "/") {
			if part == "" || part == "." {
				continue
			}
			node = node.child(part)
		}
	}

	var b strings.Builder
	b.WriteString(rootName + "/\n")
	renderChildren(&b, root, "")
	return b.String()
}

func renderChildren(b *strings.Builder, n *treeNode, prefix string) {
	children := make([]*treeNode, 0, len(n.children))
	for _, c := range n.children {
		children = append(children, c)
	}
	sort.Slice(children, func(i, j int) bool {
		if children[i].isDir() != children[j].isDir() {
			return children[i].isDir()
		}
		li, lj := strings.ToLower(children[i].name), strings.ToLower(children[j].name)
		if li != lj {
			return li < lj
		}
		return children[i].name < children[j].name
	})

	for i, c := range children {
		connector := "├── "
		extension := "│   "
		if i == len(children)-1 {
			connector = "└── "
			extension = "    "
		}

		if c.isDir() {
			b.WriteString(prefix + connector + c.name + "/\n")
			renderChildren(b, c, prefix+extension)
			continue
		}
		b.WriteString(prefix + connector + c.name + "\n")
	}
}
