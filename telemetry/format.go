package telemetry

import (
	"fmt"
	"io"
	"time"

	"github.com/beanls/beanls/output"
)

// slowThreshold marks operations worth highlighting in the report.
const slowThreshold = 100 * time.Millisecond

// formatTimingTree writes the timing tree in a hierarchical format:
//
//	check main.beancount: 125ms
//	├─ parse: 45ms
//	├─ index: 5ms
//	└─ diagnostics: 40ms
func formatTimingTree(w io.Writer, root *timerNode, styles *output.Styles) {
	duration := root.end.Sub(root.start)

	name := root.name
	if styles != nil {
		name = styles.Keyword(name)
	}
	_, _ = fmt.Fprintf(w, "%s: %s\n", name, formatDuration(duration))

	for i, child := range root.children {
		formatNode(w, child, "", i == len(root.children)-1, styles)
	}
}

// formatNode writes one node and recurses into its children.
func formatNode(w io.Writer, node *timerNode, prefix string, isLast bool, styles *output.Styles) {
	duration := node.end.Sub(node.start)

	var branch, extension string
	if isLast {
		branch = "└─ "
		extension = "   "
	} else {
		branch = "├─ "
		extension = "│  "
	}

	treeChars := prefix + branch
	timing := formatDuration(duration)
	if styles != nil {
		treeChars = styles.Dim(treeChars)
		if duration >= slowThreshold {
			timing = styles.Warning(timing)
		} else {
			timing = styles.Dim(timing)
		}
	}
	_, _ = fmt.Fprintf(w, "%s%s: %s\n", treeChars, node.name, timing)

	childPrefix := prefix + extension
	for i, child := range node.children {
		formatNode(w, child, childPrefix, i == len(node.children)-1, styles)
	}
}

// formatDuration shows milliseconds under a second, seconds above.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.2fs", float64(d)/float64(time.Second))
}
