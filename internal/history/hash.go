package history

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// Hash returns the content fingerprint of the event as lowercase hex SHA-256.
//
// Within each item the payloads are ordered by type tag, so the order in which
// the platform happened to report formats does not matter. Items themselves
// keep capture order: copying A then B is a different event from B then A.
// The timestamp is not part of the fingerprint.
func (e Event) Hash() string {
	h := sha256.New()
	for _, it := range e.Items {
		ps := make([]Payload, len(it.Payloads))
		copy(ps, it.Payloads)
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].Type < ps[j].Type })

		for _, p := range ps {
			h.Write([]byte(p.Type))
			h.Write(p.Data)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
