package models

import "time"

// Activity operations recorded in the history log.
const (
	OpUpload   = "upload"
	OpRename   = "rename"
	OpCopy     = "copy"
	OpMove     = "move"
	OpDelete   = "delete"
	OpConvert  = "convert"
	OpCompress = "compress"
)

// ActivityEntry is one row of the panel's activity feed.
type ActivityEntry struct {
	ID         int64     `json:"id" msgpack:"id" csv:"id"`
	Operation  string    `json:"operation" msgpack:"operation" csv:"operation"`
	FileID     string    `json:"fileId" msgpack:"fileId" csv:"file_id"`
	FileName   string    `json:"fileName" msgpack:"fileName" csv:"file_name"`
	Detail     string    `json:"detail,omitempty" msgpack:"detail" csv:"detail"`
	OccurredAt time.Time `json:"occurredAt" msgpack:"occurredAt" csv:"occurred_at"`
}
