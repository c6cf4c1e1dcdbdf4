package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/federicoFrancesconi/UCSE-2025-AI-Engineering-TP/internal/types"
)

const (
	listTablesQuery = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name`

	listColumnsQuery = `
		SELECT column_name, data_type, character_maximum_length, is_nullable, column_default
		FROM information_schema.columns
		WHERE table_schema = 'public'
		  AND table_name = $1
		ORDER BY ordinal_position`

	listForeignKeysQuery = `
		SELECT tc.table_name, kcu.column_name, ccu.table_name, ccu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
		  ON tc.constraint_name = ccu.constraint_name
		 AND tc.table_schema = ccu.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
		  AND tc.table_schema = 'public'
		ORDER BY tc.table_name, kcu.column_name`
)

// Introspector produces a compact text description of the catalog
// schema for statement-generation prompts. The description is built
// from information_schema and cached until Invalidate is called; the
// catalog schema does not change while the agent is running.
type Introspector struct {
	pool  *pgxpool.Pool
	mu    sync.RWMutex
	cache string
}

// NewIntrospector creates an Introspector backed by the given pool.
func NewIntrospector(pool *pgxpool.Pool) *Introspector {
	return &Introspector{pool: pool}
}

// Describe returns the schema as CREATE TABLE statements followed by
// join-hint comments for every foreign key. Table order is
// alphabetical so prompts stay stable across runs.
func (in *Introspector) Describe(ctx context.Context) (string, error) {
	in.mu.RLock()
	if in.cache != "" {
		cached := in.cache
		in.mu.RUnlock()
		return cached, nil
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()

	if in.cache != "" {
		return in.cache, nil
	}

	schema, err := in.build(ctx)
	if err != nil {
		return "", err
	}

	in.cache = schema
	return schema, nil
}

// Invalidate discards the cached description so the next Describe
// re-reads information_schema.
func (in *Introspector) Invalidate() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.cache = ""
}

func (in *Introspector) build(ctx context.Context) (string, error) {
	tables, err := in.listTables(ctx)
	if err != nil {
		return "", err
	}
	if len(tables) == 0 {
		return "", types.NewError(types.SQL_EXECUTION_FAILED, "no tables found in public schema")
	}

	var sb strings.Builder
	for _, table := range tables {
		defs, err := in.columnDefinitions(ctx, table)
		if err != nil {
			return "", err
		}

		sb.WriteString(fmt.Sprintf("CREATE TABLE %s (\n", table))
		for i, def := range defs {
			sb.WriteString("  ")
			sb.WriteString(def)
			if i < len(defs)-1 {
				sb.WriteString(",")
			}
			sb.WriteString("\n")
		}
		sb.WriteString(");\n\n")
	}

	hints, err := in.foreignKeyHints(ctx)
	if err != nil {
		return "", err
	}
	if len(hints) > 0 {
		sb.WriteString("-- Foreign key relationships:\n")
		for _, hint := range hints {
			sb.WriteString(hint)
			sb.WriteString("\n")
		}
	}

	return strings.TrimRight(sb.String(), "\n") + "\n", nil
}

func (in *Introspector) listTables(ctx context.Context) ([]string, error) {
	rows, err := in.pool.Query(ctx, listTablesQuery)
	if err != nil {
		return nil, ClassifyError(err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, ClassifyError(err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (in *Introspector) columnDefinitions(ctx context.Context, table string) ([]string, error) {
	rows, err := in.pool.Query(ctx, listColumnsQuery, table)
	if err != nil {
		return nil, ClassifyError(err)
	}
	defer rows.Close()

	var defs []string
	for rows.Next() {
		var (
			name       string
			dataType   string
			maxLength  *int32
			isNullable string
			colDefault *string
		)
		if err := rows.Scan(&name, &dataType, &maxLength, &isNullable, &colDefault); err != nil {
			return nil, ClassifyError(err)
		}
		defs = append(defs, renderColumn(name, dataType, maxLength, isNullable, colDefault))
	}
	return defs, rows.Err()
}

// renderColumn formats one column definition. Sequence-backed columns
// are labeled PRIMARY KEY since the catalog uses serial ids throughout.
func renderColumn(name, dataType string, maxLength *int32, isNullable string, colDefault *string) string {
	typeName := strings.ToUpper(dataType)
	if maxLength != nil && strings.Contains(strings.ToLower(dataType), "char") {
		typeName = fmt.Sprintf("VARCHAR(%d)", *maxLength)
	}

	def := fmt.Sprintf("%s %s", name, typeName)
	if colDefault != nil && strings.Contains(*colDefault, "nextval") {
		def += " PRIMARY KEY"
	} else if isNullable == "NO" {
		def += " NOT NULL"
	}
	return def
}

func (in *Introspector) foreignKeyHints(ctx context.Context) ([]string, error) {
	rows, err := in.pool.Query(ctx, listForeignKeysQuery)
	if err != nil {
		return nil, ClassifyError(err)
	}
	defer rows.Close()

	var hints []string
	for rows.Next() {
		var table, column, refTable, refColumn string
		if err := rows.Scan(&table, &column, &refTable, &refColumn); err != nil {
			return nil, ClassifyError(err)
		}
		hints = append(hints, fmt.Sprintf("-- %s.%s can be joined with %s.%s",
			table, column, refTable, refColumn))
	}
	return hints, rows.Err()
}
