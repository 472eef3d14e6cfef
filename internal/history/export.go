package history

import (
	"github.com/jszwec/csvutil"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/filepanel/backend/internal/models"
)

// EncodeMsgpack serializes entries for the panel's compact transfer encoding.
func EncodeMsgpack(entries []models.ActivityEntry) ([]byte, error) {
	return msgpack.Marshal(entries)
}

// EncodeCSV serializes entries as CSV with a header row, for the panel's
// activity export download.
func EncodeCSV(entries []models.ActivityEntry) ([]byte, error) {
	return csvutil.Marshal(entries)
}
