package fakehdb

import (
	"fmt"
	"net/http"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// operationError is answered with its status and message.
type operationError struct {
	status  int
	message string
}

func newOperationError(status int, format string, args ...any) *operationError {
	return &operationError{status: status, message: fmt.Sprintf(format, args...)}
}

func (e *operationError) Error() string {
	return e.message
}

type table struct {
	id            string
	name          string
	schema        string
	hashAttribute string
	createdTime   int64
	updatedTime   int64
	attributes    []string
	keys          []string
	records       map[string]map[string]any
}

func (t *table) addAttributes(row map[string]any) {
	for name := range row {
		if !slices.Contains(t.attributes, name) {
			t.attributes = append(t.attributes, name)
		}
	}
}

func (t *table) describe() map[string]any {
	attributes := make([]map[string]any, 0, len(t.attributes))
	for _, a := range t.attributes {
		attributes = append(attributes, map[string]any{"attribute": a})
	}
	return map[string]any{
		"__createdtime__": t.createdTime,
		"__updatedtime__": t.updatedTime,
		"hash_attribute":  t.hashAttribute,
		"id":              t.id,
		"name":            t.name,
		"residence":       nil,
		"schema":          t.schema,
		"attributes":      attributes,
		"record_count":    len(t.records),
	}
}

type schema struct {
	tables     map[string]*table
	tableNames []string
}

// store holds every schema. Each handler runs with the lock held.
type store struct {
	mu          sync.Mutex
	schemas     map[string]*schema
	schemaNames []string
	now         func() time.Time
}

func newStore() *store {
	return &store{
		schemas: map[string]*schema{},
		now:     time.Now,
	}
}

func (st *store) millis() int64 {
	return st.now().UnixMilli()
}

func (st *store) schema(name string) (*schema, error) {
	sc, ok := st.schemas[name]
	if !ok {
		return nil, newOperationError(http.StatusNotFound, "Schema '%s' does not exist", name)
	}
	return sc, nil
}

func (st *store) table(schemaName, tableName string) (*table, error) {
	sc, err := st.schema(schemaName)
	if err != nil {
		return nil, err
	}
	t, ok := sc.tables[tableName]
	if !ok {
		return nil, newOperationError(http.StatusNotFound, "Table '%s.%s' does not exist", schemaName, tableName)
	}
	return t, nil
}

type handler func(st *store, req Request) (any, error)

var operations = map[string]handler{
	"create_schema":   locked(createSchema),
	"drop_schema":     locked(dropSchema),
	"describe_all":    locked(describeAll),
	"create_table":    locked(createTable),
	"drop_table":      locked(dropTable),
	"describe_table":  locked(describeTable),
	"drop_attribute":  locked(dropAttribute),
	"insert":          locked(insert),
	"update":          locked(update),
	"delete":          locked(deleteRecords),
	"search_by_hash":  locked(searchByHash),
	"search_by_value": locked(searchByValue),
}

func locked(h handler) handler {
	return func(st *store, req Request) (any, error) {
		st.mu.Lock()
		defer st.mu.Unlock()
		return h(st, req)
	}
}

func stringField(req Request, field string) (string, error) {
	v, ok := req[field].(string)
	if !ok || v == "" {
		return "", newOperationError(http.StatusBadRequest, "'%s' is required", field)
	}
	return v, nil
}

func listField(req Request, field string) ([]any, error) {
	v, ok := req[field].([]any)
	if !ok {
		return nil, newOperationError(http.StatusBadRequest, "'%s' must be an array", field)
	}
	return v, nil
}

func schemaAndTable(st *store, req Request) (*table, error) {
	schemaName, err := stringField(req, "schema")
	if err != nil {
		return nil, err
	}
	tableName, err := stringField(req, "table")
	if err != nil {
		return nil, err
	}
	return st.table(schemaName, tableName)
}

func keyString(v any) string {
	return fmt.Sprint(v)
}

func message(format string, args ...any) map[string]any {
	return map[string]any{"message": fmt.Sprintf(format, args...)}
}

func createSchema(st *store, req Request) (any, error) {
	name, err := stringField(req, "schema")
	if err != nil {
		return nil, err
	}
	if _, ok := st.schemas[name]; ok {
		return nil, newOperationError(http.StatusBadRequest, "Schema '%s' already exists", name)
	}
	st.schemas[name] = &schema{tables: map[string]*table{}}
	st.schemaNames = append(st.schemaNames, name)
	return message("schema '%s' successfully created", name), nil
}

func dropSchema(st *store, req Request) (any, error) {
	name, err := stringField(req, "schema")
	if err != nil {
		return nil, err
	}
	if _, err := st.schema(name); err != nil {
		return nil, err
	}
	delete(st.schemas, name)
	st.schemaNames = slices.DeleteFunc(st.schemaNames, func(n string) bool { return n == name })
	return message("successfully deleted schema '%s'", name), nil
}

func describeSchemaTables(sc *schema) map[string]any {
	out := make(map[string]any, len(sc.tables))
	for _, name := range sc.tableNames {
		out[name] = sc.tables[name].describe()
	}
	return out
}

func describeAll(st *store, _ Request) (any, error) {
	out := make(map[string]any, len(st.schemas))
	for _, name := range st.schemaNames {
		out[name] = describeSchemaTables(st.schemas[name])
	}
	return out, nil
}

// describeSchema answers in the current shape, or in the legacy array shape
// when legacy is set.
func describeSchema(st *store, req Request, legacy bool) (any, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	name, err := stringField(req, "schema")
	if err != nil {
		return nil, err
	}
	sc, err := st.schema(name)
	if err != nil {
		return nil, err
	}
	if !legacy {
		return describeSchemaTables(sc), nil
	}

	out := make([]any, 0, len(sc.tables))
	for _, tableName := range sc.tableNames {
		out = append(out, sc.tables[tableName].describe())
	}
	return out, nil
}

func createTable(st *store, req Request) (any, error) {
	schemaName, err := stringField(req, "schema")
	if err != nil {
		return nil, err
	}
	tableName, err := stringField(req, "table")
	if err != nil {
		return nil, err
	}
	hashAttribute, err := stringField(req, "hash_attribute")
	if err != nil {
		return nil, err
	}
	sc, err := st.schema(schemaName)
	if err != nil {
		return nil, err
	}
	if _, ok := sc.tables[tableName]; ok {
		return nil, newOperationError(http.StatusBadRequest, "Table '%s' already exists in schema '%s'", tableName, schemaName)
	}

	now := st.millis()
	sc.tables[tableName] = &table{
		id:            uuid.NewString(),
		name:          tableName,
		schema:        schemaName,
		hashAttribute: hashAttribute,
		createdTime:   now,
		updatedTime:   now,
		attributes:    []string{hashAttribute, "__createdtime__", "__updatedtime__"},
		records:       map[string]map[string]any{},
	}
	sc.tableNames = append(sc.tableNames, tableName)
	return message("table '%s.%s' successfully created.", schemaName, tableName), nil
}

func dropTable(st *store, req Request) (any, error) {
	t, err := schemaAndTable(st, req)
	if err != nil {
		return nil, err
	}
	sc := st.schemas[t.schema]
	delete(sc.tables, t.name)
	sc.tableNames = slices.DeleteFunc(sc.tableNames, func(n string) bool { return n == t.name })
	return message("successfully deleted table '%s.%s'", t.schema, t.name), nil
}

func describeTable(st *store, req Request) (any, error) {
	t, err := schemaAndTable(st, req)
	if err != nil {
		return nil, err
	}
	return t.describe(), nil
}

func dropAttribute(st *store, req Request) (any, error) {
	t, err := schemaAndTable(st, req)
	if err != nil {
		return nil, err
	}
	attribute, err := stringField(req, "attribute")
	if err != nil {
		return nil, err
	}
	if attribute == t.hashAttribute || strings.HasPrefix(attribute, "__") {
		return nil, newOperationError(http.StatusBadRequest, "cannot drop attribute '%s'", attribute)
	}
	if !slices.Contains(t.attributes, attribute) {
		return nil, newOperationError(http.StatusNotFound, "attribute '%s' does not exist on '%s.%s'", attribute, t.schema, t.name)
	}
	t.attributes = slices.DeleteFunc(t.attributes, func(a string) bool { return a == attribute })
	for _, row := range t.records {
		delete(row, attribute)
	}
	t.updatedTime = st.millis()
	return message("successfully deleted attribute '%s'", attribute), nil
}

func insert(st *store, req Request) (any, error) {
	t, err := schemaAndTable(st, req)
	if err != nil {
		return nil, err
	}
	records, err := listField(req, "records")
	if err != nil {
		return nil, err
	}

	inserted := []any{}
	skipped := []any{}
	now := st.millis()
	for _, r := range records {
		record, ok := r.(map[string]any)
		if !ok {
			return nil, newOperationError(http.StatusBadRequest, "records must be objects")
		}

		key, hasKey := record[t.hashAttribute]
		if !hasKey || key == nil {
			key = uuid.NewString()
		}
		ks := keyString(key)
		if _, exists := t.records[ks]; exists {
			skipped = append(skipped, key)
			continue
		}

		row := make(map[string]any, len(record)+3)
		for k, v := range record {
			row[k] = v
		}
		row[t.hashAttribute] = key
		row["__createdtime__"] = now
		row["__updatedtime__"] = now
		t.records[ks] = row
		t.keys = append(t.keys, ks)
		t.addAttributes(row)
		inserted = append(inserted, key)
	}
	if len(inserted) > 0 {
		t.updatedTime = now
	}

	return map[string]any{
		"message":         fmt.Sprintf("inserted %d of %d records", len(inserted), len(records)),
		"inserted_hashes": inserted,
		"skipped_hashes":  skipped,
	}, nil
}

func update(st *store, req Request) (any, error) {
	t, err := schemaAndTable(st, req)
	if err != nil {
		return nil, err
	}
	records, err := listField(req, "records")
	if err != nil {
		return nil, err
	}

	updated := []any{}
	skipped := []any{}
	now := st.millis()
	for _, r := range records {
		record, ok := r.(map[string]any)
		if !ok {
			return nil, newOperationError(http.StatusBadRequest, "records must be objects")
		}
		key, hasKey := record[t.hashAttribute]
		if !hasKey || key == nil {
			return nil, newOperationError(http.StatusBadRequest, "a valid hash attribute must be provided with update record")
		}

		row, exists := t.records[keyString(key)]
		if !exists {
			skipped = append(skipped, key)
			continue
		}
		for k, v := range record {
			if k == t.hashAttribute || strings.HasPrefix(k, "__") {
				continue
			}
			row[k] = v
		}
		row["__updatedtime__"] = now
		t.addAttributes(row)
		updated = append(updated, row[t.hashAttribute])
	}
	if len(updated) > 0 {
		t.updatedTime = now
	}

	return map[string]any{
		"message":        fmt.Sprintf("updated %d of %d records", len(updated), len(records)),
		"update_hashes":  updated,
		"skipped_hashes": skipped,
	}, nil
}

func deleteRecords(st *store, req Request) (any, error) {
	t, err := schemaAndTable(st, req)
	if err != nil {
		return nil, err
	}
	hashValues, err := listField(req, "hash_values")
	if err != nil {
		return nil, err
	}

	deleted := []any{}
	skipped := []any{}
	for _, key := range hashValues {
		ks := keyString(key)
		if _, exists := t.records[ks]; !exists {
			skipped = append(skipped, key)
			continue
		}
		delete(t.records, ks)
		t.keys = slices.DeleteFunc(t.keys, func(k string) bool { return k == ks })
		deleted = append(deleted, key)
	}

	return map[string]any{
		"message":        fmt.Sprintf("%d of %d records successfully deleted", len(deleted), len(hashValues)),
		"deleted_hashes": deleted,
		"skipped_hashes": skipped,
	}, nil
}

// project returns the requested attributes of row; "*" selects all of them.
func project(row map[string]any, attributes []any) map[string]any {
	out := map[string]any{}
	for _, a := range attributes {
		name := keyString(a)
		if name == "*" {
			for k, v := range row {
				out[k] = v
			}
			return out
		}
		if v, ok := row[name]; ok {
			out[name] = v
		}
	}
	return out
}

func searchByHash(st *store, req Request) (any, error) {
	t, err := schemaAndTable(st, req)
	if err != nil {
		return nil, err
	}
	hashValues, err := listField(req, "hash_values")
	if err != nil {
		return nil, err
	}
	attributes, err := listField(req, "get_attributes")
	if err != nil {
		return nil, err
	}

	rows := []any{}
	for _, key := range hashValues {
		if row, ok := t.records[keyString(key)]; ok {
			rows = append(rows, project(row, attributes))
		}
	}
	return rows, nil
}

// wildcard compiles a search_value in which * matches any run of characters.
func wildcard(value string) *regexp.Regexp {
	parts := strings.Split(value, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile("^" + strings.Join(parts, ".*") + "$")
}

func searchByValue(st *store, req Request) (any, error) {
	t, err := schemaAndTable(st, req)
	if err != nil {
		return nil, err
	}
	attribute, err := stringField(req, "search_attribute")
	if err != nil {
		return nil, err
	}
	attributes, err := listField(req, "get_attributes")
	if err != nil {
		return nil, err
	}
	pattern := wildcard(keyString(req["search_value"]))

	rows := []any{}
	for _, ks := range t.keys {
		row := t.records[ks]
		v, ok := row[attribute]
		if !ok || !pattern.MatchString(keyString(v)) {
			continue
		}
		rows = append(rows, project(row, attributes))
	}
	return rows, nil
}
