package cli

import (
	"fmt"

	"github.com/kitsuyui/mure/internal/config"
)

const binName = "mure"

// ShellShims renders the cd helper that users source into their shell. The
// function name comes from shell.cd_shims.
func ShellShims(cfg *config.Config) string {
	return fmt.Sprintf("function %s() { local p=$(%s path \"$1\") && cd \"$p\" }\n", cfg.CDShims(), binName)
}
