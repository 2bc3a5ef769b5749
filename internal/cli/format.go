package cli

import (
	"strings"

	"github.com/mrlokans/wordbook/internal/utils"
)

// oneLine flattens multi-line translations for table output.
func oneLine(s string) string {
	return utils.Truncate(strings.Join(strings.Fields(s), " "), 60)
}
