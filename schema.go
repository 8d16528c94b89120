package harperdb

import (
	"context"
	"fmt"
	"iter"

	"github.com/buger/jsonparser"
	"github.com/goccy/go-json"

	"github.com/harperdb/harperdb-sdk-go/pkg/constants"
	"github.com/harperdb/harperdb-sdk-go/pkg/ops"
)

// Schema is a handle for one named schema.
type Schema struct {
	db   *DB
	name string
}

func (s *Schema) Name() string {
	return s.name
}

func (s *Schema) DB() *DB {
	return s.db
}

// Table returns a handle for the named table without checking that it
// exists. Its hash attribute is looked up on first use.
func (s *Schema) Table(name string) *Table {
	return &Table{schema: s, name: name}
}

func (s *Schema) tableWithHash(name, hashAttribute string) *Table {
	t := s.Table(name)
	if hashAttribute != "" {
		t.hashAttribute.Store(&hashAttribute)
	}
	return t
}

// CreateTable creates a table keyed by hashAttribute.
func (s *Schema) CreateTable(ctx context.Context, name, hashAttribute string) (*Table, error) {
	if _, err := s.db.ops.CreateTable(ctx, s.name, name, hashAttribute); err != nil {
		return nil, err
	}
	return s.tableWithHash(name, hashAttribute), nil
}

func (s *Schema) DropTable(ctx context.Context, name string) error {
	_, err := s.db.ops.DropTable(ctx, s.name, name)
	return err
}

// Delete is DropTable.
func (s *Schema) Delete(ctx context.Context, name string) error {
	return s.DropTable(ctx, name)
}

// Drop drops this schema.
func (s *Schema) Drop(ctx context.Context) error {
	return s.db.DropSchema(ctx, s.name)
}

// Tables yields a handle per table, each carrying its hash attribute. Each
// range over the sequence issues a new describe_schema.
func (s *Schema) Tables(ctx context.Context) iter.Seq2[*Table, error] {
	return func(yield func(*Table, error) bool) {
		listing, err := s.describe(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, d := range listing.tables {
			if !yield(s.tableWithHash(d.Name, d.HashAttribute), nil) {
				return
			}
		}
	}
}

// Count returns the number of tables currently in the schema.
func (s *Schema) Count(ctx context.Context) (int, error) {
	listing, err := s.describe(ctx)
	if err != nil {
		return 0, err
	}
	return len(listing.tables), nil
}

func (s *Schema) describe(ctx context.Context) (*tableListing, error) {
	raw, err := s.db.ops.DescribeSchema(ctx, s.name)
	if err != nil {
		return nil, err
	}
	listing, err := decodeTableListing(raw)
	if err != nil {
		return nil, fmt.Errorf("describe_schema %s: %w", s.name, err)
	}
	s.db.log.Debug("Described schema", "schema", s.name, "shape", listing.shape.String(), "tables", len(listing.tables))
	return listing, nil
}

type listingShape int

const (
	// shapeByName is {"table": {...description...}, ...}.
	shapeByName listingShape = iota
	// shapeList is [{...description...}, ...], returned by older servers.
	shapeList
)

func (l listingShape) String() string {
	switch l {
	case shapeByName:
		return "by-name"
	case shapeList:
		return "list"
	default:
		return fmt.Sprintf("listingShape(%d)", int(l))
	}
}

// tableListing is a describe_schema body normalized from either shape.
type tableListing struct {
	shape  listingShape
	tables []ops.TableDescription
}

func decodeTableListing(data []byte) (*tableListing, error) {
	_, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", constants.ErrUnexpectedResponse, err)
	}

	switch dataType {
	case jsonparser.Object:
		return decodeByName(data)
	case jsonparser.Array:
		return decodeList(data)
	default:
		return nil, fmt.Errorf("%w: expected an object or array, got %s", constants.ErrUnexpectedResponse, dataType)
	}
}

func decodeByName(data []byte) (*tableListing, error) {
	listing := &tableListing{shape: shapeByName, tables: []ops.TableDescription{}}
	err := jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
		name, err := jsonparser.ParseString(key)
		if err != nil {
			return err
		}
		if dataType != jsonparser.Object {
			return fmt.Errorf("table %q: expected an object, got %s", name, dataType)
		}

		var d ops.TableDescription
		if err := json.Unmarshal(value, &d); err != nil {
			return fmt.Errorf("table %q: %w", name, err)
		}
		if d.Name == "" {
			d.Name = name
		}
		listing.tables = append(listing.tables, d)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", constants.ErrUnexpectedResponse, err)
	}
	return listing, nil
}

func decodeList(data []byte) (*tableListing, error) {
	listing := &tableListing{shape: shapeList, tables: []ops.TableDescription{}}
	if err := json.Unmarshal(data, &listing.tables); err != nil {
		return nil, fmt.Errorf("%w: %v", constants.ErrUnexpectedResponse, err)
	}
	return listing, nil
}
