package schema

import _ "embed"

// SQL creates the posts table and its indexes. It is idempotent.
//
//go:embed schema.sql
var SQL string
