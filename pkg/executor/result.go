package executor

import "github.com/cuemby/quill/pkg/catalog"

// Result is what Executor.Execute returns: the fields populated depend
// on which statement kind ran.
type Result struct {
	Tables   []string        // Show
	Rows     [][]catalog.Value // Select
	Affected int             // Insert (1), Update, Delete
}
