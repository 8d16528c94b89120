package harperdb_test

import (
	"time"

	harperdb "github.com/harperdb/harperdb-sdk-go"
	"github.com/harperdb/harperdb-sdk-go/internal/fakehdb"
)

func (s *HandleTestSuite) penny() *harperdb.Record {
	rec, err := s.dog().UpsertOne(s.ctx, harperdb.Row{"id": "1", "name": "Penny", "breed": "Whippet"})
	s.Require().NoError(err)
	s.Require().NotNil(rec)
	return rec
}

func (s *HandleTestSuite) TestGet() {
	rec := s.penny()

	name, err := rec.Get(s.ctx, "name")
	s.Require().NoError(err)
	s.Equal("Penny", name)
}

func (s *HandleTestSuite) TestGetMissingFieldIsNotNotFound() {
	rec := s.penny()

	_, err := rec.Get(s.ctx, "missing_field")
	s.Require().ErrorIs(err, harperdb.ErrMissingField)
	s.NotErrorIs(err, harperdb.ErrNotFound)

	var missing *harperdb.MissingFieldError
	s.Require().ErrorAs(err, &missing)
	s.Equal("missing_field", missing.Field)
	s.Equal("1", missing.Key)

	_, err = s.dog().Record("nonexistent").Get(s.ctx, "name")
	s.Require().ErrorIs(err, harperdb.ErrNotFound)
	s.NotErrorIs(err, harperdb.ErrMissingField)

	var notFound *harperdb.NotFoundError
	s.Require().ErrorAs(err, &notFound)
	s.Equal("nonexistent", notFound.Key)
	s.Equal("dev", notFound.Schema)
	s.Equal("dog", notFound.Table)
}

func (s *HandleTestSuite) TestSet() {
	rec := s.penny()
	s.server.ResetRequests()

	s.Require().NoError(rec.Set(s.ctx, "name", "Penny B"))

	reqs := s.server.Requests()
	s.Require().NotEmpty(reqs)
	update := reqs[len(reqs)-1]
	s.Equal("update", update.Operation())
	s.Equal([]any{map[string]any{"id": "1", "name": "Penny B"}}, update["records"])

	name, err := rec.Get(s.ctx, "name")
	s.Require().NoError(err)
	s.Equal("Penny B", name)

	breed, err := rec.Get(s.ctx, "breed")
	s.Require().NoError(err)
	s.Equal("Whippet", breed)
}

func (s *HandleTestSuite) TestSetOnMissingRecord() {
	err := s.dog().Record("nonexistent").Set(s.ctx, "name", "nobody")
	s.Require().ErrorIs(err, harperdb.ErrNotFound)
}

func (s *HandleTestSuite) TestRecordDelete() {
	rec := s.penny()

	s.Require().NoError(rec.Delete(s.ctx))

	_, err := rec.Get(s.ctx, "name")
	s.Require().ErrorIs(err, harperdb.ErrNotFound)

	err = rec.Delete(s.ctx)
	s.Require().ErrorIs(err, harperdb.ErrNotFound)
}

func (s *HandleTestSuite) TestSnapshot() {
	input := harperdb.Row{"id": "1", "name": "Penny", "breed": "Whippet"}
	rec, err := s.dog().UpsertOne(s.ctx, input)
	s.Require().NoError(err)

	snapshot, err := rec.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.Equal(input, snapshot)

	_, err = s.dog().Record("nonexistent").Snapshot(s.ctx)
	s.Require().ErrorIs(err, harperdb.ErrNotFound)
}

func (s *HandleTestSuite) TestRecordTimes() {
	before := time.Now().Add(-time.Minute)
	rec := s.penny()

	created, err := rec.CreatedTime(s.ctx)
	s.Require().NoError(err)
	s.True(created.After(before))
	s.True(created.Before(time.Now().Add(time.Minute)))

	s.Require().NoError(rec.Set(s.ctx, "name", "Penny B"))

	updated, err := rec.UpdatedTime(s.ctx)
	s.Require().NoError(err)
	s.False(updated.Before(created))

	_, err = s.dog().Record("nonexistent").CreatedTime(s.ctx)
	s.Require().ErrorIs(err, harperdb.ErrNotFound)
}

func (s *HandleTestSuite) TestRecordTimesFromStubbedRow() {
	s.server.AddStubResponse(fakehdb.StubResponse{
		Matcher: fakehdb.RequestMatcher{Operation: "search_by_hash"},
		Result: []any{map[string]any{
			"id":              "1",
			"__createdtime__": 1600000000000,
			"__updatedtime__": 1600000000500.5,
		}},
	})

	rec := s.dog().Record("1")
	created, err := rec.CreatedTime(s.ctx)
	s.Require().NoError(err)
	s.Equal(time.UnixMilli(1600000000000), created)

	updated, err := rec.UpdatedTime(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1600000000500), updated.UnixMilli())
}

func (s *HandleTestSuite) TestRecordString() {
	s.Equal("dev.dog[1]", s.dog().Record(1).String())
}
