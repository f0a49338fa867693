package embedded

import (
	"embed"
)

// FS embeds the curated seed batches at build time, one file per authoring
// generation under batches/.
//
//go:embed batches/*.yaml
var FS embed.FS

// Dir is the directory inside FS holding the batch files.
const Dir = "batches"
