//go:build tools

package schemaevolve

import (
	_ "github.com/dmarkham/enumer"
)
