package orm

import (
	"context"
	"fmt"
	"strings"

	"github.com/mickamy/reviewdb/scope"
)

// JoinTable names a table whose rows link a source row to a target row
// through two foreign key columns.
type JoinTable struct {
	Name   string
	Source string // column referencing the source table
	Target string // column referencing the target table
	Order  string // optional column the pairs are ordered by, e.g. the join row's PK
}

// Reverse returns the same join table read from the target side.
func (jt JoinTable) Reverse() JoinTable {
	return JoinTable{Name: jt.Name, Source: jt.Target, Target: jt.Source, Order: jt.Order}
}

// JoinPair holds a source–target pair read from a join table.
type JoinPair[S, T comparable] struct {
	Source S
	Target T
}

// QueryJoinTable reads (source, target) rows from the join table where the
// source column is IN (sourceIDs). Only rows of the given sources are read,
// so the cost is proportional to their links rather than the whole table.
func QueryJoinTable[S, T comparable](
	ctx context.Context, db Querier, jt JoinTable, sourceIDs []S,
) ([]JoinPair[S, T], error) {
	if len(sourceIDs) == 0 {
		return nil, nil
	}

	d := db.dialect()
	qi := d.QuoteIdent

	args := make([]any, len(sourceIDs))
	for i, id := range sourceIDs {
		args[i] = id
	}

	query := fmt.Sprintf(
		"SELECT %s, %s FROM %s WHERE %s IN (%s)",
		qi(jt.Source), qi(jt.Target), qi(jt.Name), qi(jt.Source),
		scope.Placeholders(len(sourceIDs)),
	)
	if jt.Order != "" {
		query += " ORDER BY " + qi(jt.Order)
	}

	query = rewritePlaceholders(d, query)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err //nolint:wrapcheck // pass through
	}
	defer func() { _ = rows.Close() }()

	var pairs []JoinPair[S, T]
	for rows.Next() {
		var p JoinPair[S, T]
		if err := rows.Scan(&p.Source, &p.Target); err != nil {
			return nil, err //nolint:wrapcheck // pass through
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err() //nolint:wrapcheck // pass through
}

// UniqueTargets extracts deduplicated target values from a slice of JoinPair,
// keeping first-seen order.
func UniqueTargets[S, T comparable](pairs []JoinPair[S, T]) []T {
	seen := make(map[T]struct{}, len(pairs))
	result := make([]T, 0, len(pairs))
	for _, p := range pairs {
		if _, ok := seen[p.Target]; !ok {
			seen[p.Target] = struct{}{}
			result = append(result, p.Target)
		}
	}
	return result
}

// GroupBySource groups JoinPair values by source key into a map[S][]T.
// Targets linked to the same source more than once appear once.
func GroupBySource[S, T comparable](pairs []JoinPair[S, T]) map[S][]T {
	m := make(map[S][]T)
	seen := make(map[JoinPair[S, T]]struct{}, len(pairs))
	for _, p := range pairs {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		m[p.Source] = append(m[p.Source], p.Target)
	}
	return m
}

// rewritePlaceholders converts ? to dialect-specific placeholders ($1, $2, …).
// Dialects that bind with ? are returned unchanged.
func rewritePlaceholders(d Dialect, query string) string {
	if d.Placeholder(1) == "?" {
		return query
	}
	var b strings.Builder
	b.Grow(len(query))
	idx := 1
	for i := range len(query) {
		if query[i] == '?' {
			b.WriteString(d.Placeholder(idx))
			idx++
		} else {
			b.WriteByte(query[i])
		}
	}
	return b.String()
}
