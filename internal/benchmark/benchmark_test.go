package benchmark_test

import (
	"context"
	"fmt"
	"testing"

	harperdb "github.com/harperdb/harperdb-sdk-go"
	"github.com/harperdb/harperdb-sdk-go/internal/mock"
	"github.com/harperdb/harperdb-sdk-go/pkg/connection"
)

func dogs(n int) []harperdb.Row {
	rows := make([]harperdb.Row, n)
	for i := range rows {
		rows[i] = harperdb.Row{"id": fmt.Sprintf("dog-%d", i), "name": "Penny", "age": i}
	}
	return rows
}

// BenchmarkUpsertInsertOnly measures an upsert where every record is new,
// which takes a single insert.
func BenchmarkUpsertInsertOnly(b *testing.B) {
	table := harperdb.FromConnection(mock.Create()).Schema("dev").Table("dog")
	rows := dogs(100)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := table.Upsert(ctx, rows...); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkUpsertAllExisting measures an upsert where every insert is
// skipped and the records are reconciled and updated.
func BenchmarkUpsertAllExisting(b *testing.B) {
	conn := mock.Create()
	conn.Handle("insert", func(req connection.Request) (any, error) {
		records, _ := req["records"].([]map[string]any)
		skipped := make([]any, 0, len(records))
		for _, r := range records {
			skipped = append(skipped, r["id"])
		}
		return map[string]any{"inserted_hashes": []any{}, "skipped_hashes": skipped}, nil
	})
	table := harperdb.FromConnection(conn).Schema("dev").Table("dog")
	rows := dogs(100)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := table.Upsert(ctx, rows...); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRecordGet(b *testing.B) {
	conn := mock.Create()
	conn.Handle("search_by_hash", func(req connection.Request) (any, error) {
		return []any{map[string]any{"id": "dog-1", "name": "Penny"}}, nil
	})
	record := harperdb.FromConnection(conn).Schema("dev").Table("dog").Record("dog-1")
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := record.Get(ctx, "name"); err != nil {
			b.Fatal(err)
		}
	}
}
