package logging

import (
	"github.com/tapnet/tap-core/model/tap"
)

// IDs returns the hex form of the receipt ids, for zerolog's Strs.
func IDs(ids []tap.ReceiptID) []string {
	ss := make([]string, 0, len(ids))
	for _, id := range ids {
		ss = append(ss, id.String())
	}
	return ss
}
