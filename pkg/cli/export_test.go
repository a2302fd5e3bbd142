package cli

import (
	"context"
	"io"
)

// RunForTest runs the CLI with output written to w
func RunForTest(ctx context.Context, args []string, w io.Writer) error {
	return run(ctx, args, "test", w)
}

// IndexCollectionsForTest returns the collection names that get indexes
func IndexCollectionsForTest(prefix string) []string {
	var names []string
	for _, c := range getIndexConfig(prefix).Collections {
		names = append(names, c.Name)
	}
	return names
}
