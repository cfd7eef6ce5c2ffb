// Package runid generates short, human-distinguishable identifiers for
// correlating one benchmark invocation's log lines and trace events.
package runid

import (
	"encoding/binary"
	"encoding/hex"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/blake2b"
)

var counter uint64

// processEpoch is fixed at package init so every ID generated by this
// process hashes against the same base, while different processes (or
// the same binary run twice) land on different ones.
var processEpoch = time.Now().UnixNano()

// New returns a 12-character hex identifier derived from a
// process-lifetime counter and the process start time. It is not a
// security token: collisions across processes are merely unlikely, not
// prevented.
func New() string {
	n := atomic.AddUint64(&counter, 1)

	var seed [16]byte
	binary.LittleEndian.PutUint64(seed[0:8], uint64(processEpoch))
	binary.LittleEndian.PutUint64(seed[8:16], n)

	sum := blake2b.Sum256(seed[:])
	return hex.EncodeToString(sum[:6])
}
