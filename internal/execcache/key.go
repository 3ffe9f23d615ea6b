// Package execcache persists code-block execution results in the build
// directory, keyed by a content hash of the block. Entries survive across
// conversion runs and are invalidated by content change, a missing backing
// artifact file, or an explicit no-cache flag on the block.
package execcache

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// keyVersion is folded into every hash so a format change invalidates
// old entries instead of misreading them.
const keyVersion = "md2tex-exec-v1"

// Key derives the cache key for an executable block from its language and
// exact source text. Pure-visibility flags (show/hide code, show/hide
// output, highlight lines) are deliberately excluded: blocks differing
// only in presentation share one execution. The tuple is length-prefixed
// so no two (language, source) pairs can collide by concatenation.
func Key(language, source string) string {
	h := blake3.New()
	fmt.Fprintf(h, "%s\x00%d:%s\x00%d:%s", keyVersion, len(language), language, len(source), source)
	return hex.EncodeToString(h.Sum(nil))
}
