package ops

import (
	"time"

	"github.com/harperdb/harperdb-sdk-go/pkg/constants"
)

// Row is one record as sent to or returned by the server.
type Row = map[string]any

type Attribute struct {
	Attribute string `json:"attribute"`
}

// TableDescription is the metadata returned by describe_table, and the
// per-table entries of describe_schema and describe_all.
type TableDescription struct {
	Name          string      `json:"name"`
	Schema        string      `json:"schema"`
	ID            string      `json:"id"`
	HashAttribute string      `json:"hash_attribute"`
	Residence     any         `json:"residence"`
	Attributes    []Attribute `json:"attributes"`
	RecordCount   int64       `json:"record_count"`
	CreatedTime   float64     `json:"__createdtime__"`
	UpdatedTime   float64     `json:"__updatedtime__"`
}

// AttributeNames lists the table's attributes without the system timestamps.
func (d *TableDescription) AttributeNames() []string {
	names := make([]string, 0, len(d.Attributes))
	for _, a := range d.Attributes {
		if constants.IsSystemAttribute(a.Attribute) {
			continue
		}
		names = append(names, a.Attribute)
	}
	return names
}

func (d *TableDescription) Created() time.Time {
	return EpochMillis(d.CreatedTime)
}

func (d *TableDescription) Updated() time.Time {
	return EpochMillis(d.UpdatedTime)
}

// EpochMillis converts a HarperDB timestamp to local time.
func EpochMillis(ms float64) time.Time {
	return time.Unix(0, int64(ms*float64(time.Millisecond)))
}

type InsertResult struct {
	Message        string `json:"message"`
	InsertedHashes []any  `json:"inserted_hashes"`
	SkippedHashes  []any  `json:"skipped_hashes"`
}

type UpdateResult struct {
	Message       string `json:"message"`
	UpdateHashes  []any  `json:"update_hashes"`
	SkippedHashes []any  `json:"skipped_hashes"`
}

type DeleteResult struct {
	Message       string `json:"message"`
	DeletedHashes []any  `json:"deleted_hashes"`
	SkippedHashes []any  `json:"skipped_hashes"`
}

// JobResult is returned by operations that run as a background job on the server.
type JobResult struct {
	Message string `json:"message"`
	JobID   string `json:"job_id"`
}

// Subscription describes one channel of a cluster node.
type Subscription struct {
	Channel   string `json:"channel"`
	Subscribe bool   `json:"subscribe"`
	Publish   bool   `json:"publish"`
}

// S3Target is the destination of export_to_s3.
type S3Target struct {
	AWSAccessKeyID     string `json:"aws_access_key_id"`
	AWSSecretAccessKey string `json:"aws_secret_access_key"`
	Bucket             string `json:"bucket"`
	Key                string `json:"key"`
}

// ReadLogOptions are the parameters of read_log. Zero Limit and Order take
// the server's documented defaults of 1000 and "desc"; empty From and Until
// are omitted.
type ReadLogOptions struct {
	Limit int
	Start int
	From  string
	Until string
	Order string
}
