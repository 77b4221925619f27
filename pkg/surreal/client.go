package surreal

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/surrealdb/surrealdb.go"
)

type Client struct {
	db *surrealdb.DB
}

// identifierRegex ensures that table names and fields only contain alphanumeric characters and underscores
var identifierRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

func validateIdentifier(s string) error {
	if !identifierRegex.MatchString(s) {
		return fmt.Errorf("invalid identifier: %s", s)
	}
	return nil
}

func NewClient(ctx context.Context, host, user, pass, namespace, database string) (*Client, error) {
	db, err := surrealdb.New(host)
	if err != nil {
		return nil, fmt.Errorf("failed to create surrealdb client: %w", err)
	}

	if _, err = db.SignIn(ctx, map[string]interface{}{
		"user": user,
		"pass": pass,
	}); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to signin to surrealdb: %w", err)
	}

	if err = db.Use(ctx, namespace, database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to use surrealdb namespace/database: %w", err)
	}

	return &Client{db: db}, nil
}

func (c *Client) Close() {
	c.db.Close(context.Background())
}

// Exec runs one or more statements and fails if any of them failed.
func (c *Client) Exec(ctx context.Context, sql string, vars map[string]interface{}) error {
	if vars == nil {
		vars = map[string]interface{}{}
	}
	results, err := surrealdb.Query[interface{}](ctx, c.db, sql, vars)
	if err != nil {
		return err
	}
	if results == nil {
		return nil
	}
	for i, r := range *results {
		if r.Status != "" && r.Status != "OK" {
			return fmt.Errorf("statement %d failed: %s %v", i, r.Status, r.Result)
		}
	}
	return nil
}

// Query runs sql and decodes the rows of the last statement into T.
func Query[T any](ctx context.Context, c *Client, sql string, vars map[string]interface{}) ([]T, error) {
	if vars == nil {
		vars = map[string]interface{}{}
	}
	results, err := surrealdb.Query[[]T](ctx, c.db, sql, vars)
	if err != nil {
		return nil, err
	}
	if results == nil || len(*results) == 0 {
		return nil, nil
	}

	last := (*results)[len(*results)-1]
	if last.Status != "" && last.Status != "OK" {
		return nil, fmt.Errorf("query failed: %s", last.Status)
	}
	return last.Result, nil
}

// Selector describes a filtered, ordered table scan.
type Selector struct {
	Table   string
	Filter  map[string]interface{}
	OrderBy string
	Desc    bool
	Limit   int
}

// Build renders the selector as SurrealQL plus its bound variables.
func (s Selector) Build() (string, map[string]interface{}, error) {
	if err := validateIdentifier(s.Table); err != nil {
		return "", nil, err
	}

	whereClause, err := buildWhereClause(s.Filter)
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT * OMIT id FROM %s WHERE %s", s.Table, whereClause)

	if s.OrderBy != "" {
		if err := validateIdentifier(s.OrderBy); err != nil {
			return "", nil, err
		}
		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}
		fmt.Fprintf(&sb, " ORDER BY %s %s", s.OrderBy, dir)
	}
	if s.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", s.Limit)
	}
	sb.WriteString(";")

	vars := make(map[string]interface{}, len(s.Filter))
	for k, v := range s.Filter {
		vars[k] = v
	}
	return sb.String(), vars, nil
}

// Select runs a Selector and decodes its rows into T.
func Select[T any](ctx context.Context, c *Client, s Selector) ([]T, error) {
	sql, vars, err := s.Build()
	if err != nil {
		return nil, err
	}
	return Query[T](ctx, c, sql, vars)
}

func buildWhereClause(filter map[string]interface{}) (string, error) {
	if len(filter) == 0 {
		return "true", nil
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		// Validate filter keys
		if err := validateIdentifier(k); err != nil {
			return "", err
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]string, len(keys))
	for i, k := range keys {
		clauses[i] = fmt.Sprintf("%s = $%s", k, k)
	}
	return strings.Join(clauses, " AND "), nil
}
