package harperdb

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/harperdb/harperdb-sdk-go/pkg/constants"
	"github.com/harperdb/harperdb-sdk-go/pkg/ops"
)

// Record is a handle for one record, identified by its table and key. It
// holds no field data: every read fetches the row and every write updates
// it on the server.
type Record struct {
	table *Table
	key   any
}

func (r *Record) Key() any {
	return r.key
}

func (r *Record) Table() *Table {
	return r.table
}

func (r *Record) String() string {
	return fmt.Sprintf("%s[%v]", r.table.fullName(), r.key)
}

// Get returns one field of the record. A record that does not exist is a
// *NotFoundError; an existing record without the field is a
// *MissingFieldError.
func (r *Record) Get(ctx context.Context, field string) (any, error) {
	row, err := r.fetch(ctx)
	if err != nil {
		return nil, err
	}
	value, ok := row[field]
	if !ok {
		return nil, &MissingFieldError{Key: r.key, Field: field}
	}
	return value, nil
}

// Set updates one field of the record. Nothing is kept locally; the new
// value is visible to Get once the server has applied it.
func (r *Record) Set(ctx context.Context, field string, value any) error {
	hashAttribute, err := r.table.HashAttribute(ctx)
	if err != nil {
		return err
	}

	t := r.table
	res, err := t.ops().Update(ctx, t.schema.name, t.name, []Row{{
		hashAttribute: r.key,
		field:         value,
	}})
	if err != nil {
		return err
	}
	if len(res.SkippedHashes) > 0 {
		return t.notFound(r.key)
	}
	return nil
}

// Delete deletes the record. Like Table.Delete, a record the server skips
// is reported as a *NotFoundError.
func (r *Record) Delete(ctx context.Context) error {
	return r.table.Delete(ctx, r.key)
}

// Snapshot returns the record's fields without the system timestamps.
func (r *Record) Snapshot(ctx context.Context) (Row, error) {
	row, err := r.fetch(ctx)
	if err != nil {
		return nil, err
	}
	snapshot := make(Row, len(row))
	for k, v := range row {
		if constants.IsSystemAttribute(k) {
			continue
		}
		snapshot[k] = v
	}
	return snapshot, nil
}

func (r *Record) CreatedTime(ctx context.Context) (time.Time, error) {
	return r.timestamp(ctx, constants.CreatedTimeAttribute)
}

func (r *Record) UpdatedTime(ctx context.Context) (time.Time, error) {
	return r.timestamp(ctx, constants.UpdatedTimeAttribute)
}

func (r *Record) timestamp(ctx context.Context, attribute string) (time.Time, error) {
	value, err := r.Get(ctx, attribute)
	if err != nil {
		return time.Time{}, err
	}
	ms, err := epochMillis(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s of %v: %w", attribute, r.key, err)
	}
	return ops.EpochMillis(ms), nil
}

func (r *Record) fetch(ctx context.Context) (Row, error) {
	t := r.table
	rows, err := t.ops().SearchByHash(ctx, t.schema.name, t.name, []any{r.key})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, t.notFound(r.key)
	}
	return rows[0], nil
}

func epochMillis(value any) (float64, error) {
	switch v := value.(type) {
	case json.Number:
		return v.Float64()
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%w: timestamp %v of type %T", constants.ErrUnexpectedResponse, value, value)
	}
}
