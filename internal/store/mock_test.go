package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MockConn returns canned rows for every query and records what was asked.
type MockConn struct {
	driver.Conn
	Rows      [][]interface{}
	QueryErr  error
	PingErr   error
	Queries   []string
	QueryArgs [][]interface{}
}

func (m *MockConn) Query(ctx context.Context, query string, args ...interface{}) (driver.Rows, error) {
	m.Queries = append(m.Queries, query)
	m.QueryArgs = append(m.QueryArgs, args)
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("query issued without a deadline")
	}
	return &MockRows{data: m.Rows}, nil
}

func (m *MockConn) Ping(ctx context.Context) error {
	return m.PingErr
}

type MockRows struct {
	driver.Rows
	data [][]interface{}
	idx  int
}

func (m *MockRows) Next() bool {
	m.idx++
	return m.idx <= len(m.data)
}

func (m *MockRows) Scan(dest ...interface{}) error {
	row := m.data[m.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d destinations for %d columns", len(dest), len(row))
	}
	for i := range dest {
		if err := assign(dest[i], row[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockRows) Close() error {
	return nil
}

func (m *MockRows) Err() error {
	return nil
}

// assign mimics the strict typing of the ClickHouse driver.
func assign(dest interface{}, val interface{}) error {
	v := reflect.ValueOf(dest).Elem()
	src := reflect.ValueOf(val)
	if v.Type() != src.Type() {
		return fmt.Errorf("converting %s to %s is unsupported", src.Type(), v.Type())
	}
	v.Set(src)
	return nil
}

type MockPgPool struct {
	ExecFunc  func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryFunc func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	PingErr   error
}

func (m *MockPgPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, sql, args...)
	}
	return &MockPgRows{}, nil
}

func (m *MockPgPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }

func (m *MockPgPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, nil
}

func (m *MockPgPool) Ping(ctx context.Context) error { return m.PingErr }

type MockPgRows struct {
	data [][]any
	curr int
}

func (r *MockPgRows) Close()                                       {}
func (r *MockPgRows) Err() error                                   { return nil }
func (r *MockPgRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *MockPgRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *MockPgRows) Next() bool {
	r.curr++
	return r.curr <= len(r.data)
}
func (r *MockPgRows) Scan(dest ...any) error {
	row := r.data[r.curr-1]
	for i := range dest {
		if err := assign(dest[i], row[i]); err != nil {
			return err
		}
	}
	return nil
}
func (r *MockPgRows) Values() ([]any, error) { return nil, nil }
func (r *MockPgRows) RawValues() [][]byte    { return nil }
func (r *MockPgRows) Conn() *pgx.Conn        { return nil }
