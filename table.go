package harperdb

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"

	"github.com/harperdb/harperdb-sdk-go/pkg/constants"
	"github.com/harperdb/harperdb-sdk-go/pkg/ops"
)

// Row is a record's fields keyed by attribute name.
type Row = ops.Row

// Table is a handle for one table in a schema. All metadata accessors query
// the server, except HashAttribute which is remembered once known.
type Table struct {
	schema *Schema
	name   string

	hashAttribute atomic.Pointer[string]
}

func (t *Table) Name() string {
	return t.name
}

func (t *Table) Schema() *Schema {
	return t.schema
}

func (t *Table) ops() *ops.Client {
	return t.schema.db.ops
}

// Record returns a handle for the record with the given key without
// checking that it exists.
func (t *Table) Record(key any) *Record {
	return &Record{table: t, key: key}
}

// Delete deletes the record with the given key. A key the server skips is
// reported as a *NotFoundError.
func (t *Table) Delete(ctx context.Context, key any) error {
	res, err := t.ops().Delete(ctx, t.schema.name, t.name, []any{key})
	if err != nil {
		return err
	}
	if len(res.SkippedHashes) > 0 {
		return t.notFound(key)
	}
	return nil
}

// Drop drops this table.
func (t *Table) Drop(ctx context.Context) error {
	return t.schema.DropTable(ctx, t.name)
}

// DropAttribute removes attribute from every record of the table.
func (t *Table) DropAttribute(ctx context.Context, attribute string) error {
	_, err := t.ops().DropAttribute(ctx, t.schema.name, t.name, attribute)
	return err
}

// SearchByValue returns handles for the records whose attribute matches
// value. The server expands * in value as a wildcard.
func (t *Table) SearchByValue(ctx context.Context, attribute string, value any) ([]*Record, error) {
	hashAttribute, err := t.HashAttribute(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := t.ops().SearchByValue(ctx, t.schema.name, t.name, attribute, value)
	if err != nil {
		return nil, err
	}

	records := make([]*Record, 0, len(rows))
	for _, row := range rows {
		key, ok := row[hashAttribute]
		if !ok {
			return nil, fmt.Errorf("%w: search_by_value row without %q", constants.ErrUnexpectedResponse, hashAttribute)
		}
		records = append(records, t.Record(key))
	}
	return records, nil
}

// Upsert inserts records and then updates those whose key already existed.
//
// The result holds a handle per record that is on the server afterwards:
// first the inserted keys in the order the server reported them, then the
// updated ones. A record skipped by both operations is left out without an
// error. Upsert with no records returns an empty slice without contacting
// the server.
func (t *Table) Upsert(ctx context.Context, records ...Row) ([]*Record, error) {
	keys, err := t.upsert(ctx, records)
	if err != nil {
		return nil, err
	}

	handles := make([]*Record, 0, len(keys))
	for _, key := range keys {
		handles = append(handles, t.Record(key))
	}
	return handles, nil
}

// UpsertOne is Upsert for a single record. It returns nil and no error when
// the record was skipped by both operations.
func (t *Table) UpsertOne(ctx context.Context, record Row) (*Record, error) {
	keys, err := t.upsert(ctx, []Row{record})
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}
	return t.Record(keys[0]), nil
}

func (t *Table) upsert(ctx context.Context, records []Row) ([]any, error) {
	if len(records) == 0 {
		return []any{}, nil
	}

	inserted, err := t.ops().Insert(ctx, t.schema.name, t.name, records)
	if err != nil {
		return nil, err
	}
	upserted := append([]any{}, inserted.InsertedHashes...)
	if len(inserted.SkippedHashes) == 0 {
		return upserted, nil
	}

	hashAttribute, err := t.HashAttribute(ctx)
	if err != nil {
		return nil, err
	}

	skipped := make(map[string]struct{}, len(inserted.SkippedHashes))
	for _, key := range inserted.SkippedHashes {
		skipped[keyString(key)] = struct{}{}
	}

	// records without a key can only have been inserted
	candidates := make([]Row, 0, len(inserted.SkippedHashes))
	for _, record := range records {
		key, ok := record[hashAttribute]
		if !ok || key == nil {
			continue
		}
		if _, ok := skipped[keyString(key)]; ok {
			candidates = append(candidates, record)
		}
	}
	if len(candidates) == 0 {
		return upserted, nil
	}

	updated, err := t.ops().Update(ctx, t.schema.name, t.name, candidates)
	if err != nil {
		return nil, err
	}
	upserted = append(upserted, updated.UpdateHashes...)

	t.schema.db.log.Debug("Upserted records",
		"table", t.fullName(),
		"inserted", len(inserted.InsertedHashes),
		"updated", len(updated.UpdateHashes),
		"skipped", len(updated.SkippedHashes),
	)
	return upserted, nil
}

// keyString is the form hash values are compared in, so that a key given
// as 1 or 1e6 matches the "1" or "1000000" a server reports.
func keyString(key any) string {
	switch v := key.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		if f, err := v.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(key)
	}
}

// Describe returns the table's current description.
func (t *Table) Describe(ctx context.Context) (*ops.TableDescription, error) {
	d, err := t.ops().DescribeTable(ctx, t.schema.name, t.name)
	if err != nil {
		return nil, err
	}
	if d.HashAttribute != "" && t.hashAttribute.Load() == nil {
		hashAttribute := d.HashAttribute
		t.hashAttribute.Store(&hashAttribute)
	}
	return d, nil
}

// HashAttribute returns the name of the table's primary key attribute.
func (t *Table) HashAttribute(ctx context.Context) (string, error) {
	if h := t.hashAttribute.Load(); h != nil {
		return *h, nil
	}
	d, err := t.Describe(ctx)
	if err != nil {
		return "", err
	}
	if d.HashAttribute == "" {
		return "", fmt.Errorf("%w: table %s has no hash_attribute", constants.ErrUnexpectedResponse, t.fullName())
	}
	return d.HashAttribute, nil
}

// ID returns the server's internal id for the table.
func (t *Table) ID(ctx context.Context) (string, error) {
	d, err := t.Describe(ctx)
	if err != nil {
		return "", err
	}
	return d.ID, nil
}

// Attributes returns the table's attribute names without the system
// timestamps.
func (t *Table) Attributes(ctx context.Context) ([]string, error) {
	d, err := t.Describe(ctx)
	if err != nil {
		return nil, err
	}
	return d.AttributeNames(), nil
}

func (t *Table) RecordCount(ctx context.Context) (int64, error) {
	d, err := t.Describe(ctx)
	if err != nil {
		return 0, err
	}
	return d.RecordCount, nil
}

// Len is RecordCount.
func (t *Table) Len(ctx context.Context) (int64, error) {
	return t.RecordCount(ctx)
}

func (t *Table) CreatedTime(ctx context.Context) (time.Time, error) {
	d, err := t.Describe(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return d.Created(), nil
}

func (t *Table) UpdatedTime(ctx context.Context) (time.Time, error) {
	d, err := t.Describe(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return d.Updated(), nil
}

func (t *Table) fullName() string {
	return t.schema.name + "." + t.name
}

func (t *Table) notFound(key any) error {
	return &NotFoundError{Key: key, Schema: t.schema.name, Table: t.name}
}
