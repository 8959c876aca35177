package operation

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tapnet/tap-core/model/tap"
)

const (
	// codes for indices of receipt identities
	codeReceiptIdentity = 10

	// codes for the reference checks data
	codeAllocation = 20
	codeSender     = 21
	codeAppraisal  = 22

	// codes for countersigned vouchers
	codeLatestRAV = 30
)

func makePrefix(code byte, keys ...interface{}) []byte {
	prefix := make([]byte, 1)
	prefix[0] = code
	for _, key := range keys {
		prefix = append(prefix, b(key)...)
	}
	return prefix
}

func b(v interface{}) []byte {
	switch i := v.(type) {
	case uint8:
		return []byte{i}
	case uint32:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, i)
		return b
	case uint64:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, i)
		return b
	case string:
		return []byte(i)
	case common.Address:
		return i[:]
	case tap.ReceiptID:
		return i[:]
	case tap.UniqueKey:
		return i[:]
	default:
		panic(fmt.Sprintf("unsupported type to convert (%T)", v))
	}
}
