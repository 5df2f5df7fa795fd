package supabase

import (
	"context"
	"encoding/json"
	"fmt"
)

// TotalRows returns the exact row count of table using a HEAD request, so no
// row data crosses the wire.
func (c *Client) TotalRows(ctx context.Context, table string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	_, count, err := c.sb.From(table).Select("*", "exact", true).Execute()
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return count, nil
}

// CountWhereEq returns the exact count of rows where column equals value.
func (c *Client) CountWhereEq(ctx context.Context, table, column, value string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	_, count, err := c.sb.From(table).Select("*", "exact", true).Eq(column, value).Execute()
	if err != nil {
		return 0, fmt.Errorf("count %s where %s=%s: %w", table, column, value, err)
	}
	return count, nil
}

// CountSince returns the exact count of rows where column >= value. Passing a
// date string like "2026-08-29" against a timestamp column counts everything
// from that day's midnight on.
func (c *Client) CountSince(ctx context.Context, table, column, value string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	_, count, err := c.sb.From(table).Select("*", "exact", true).Gte(column, value).Execute()
	if err != nil {
		return 0, fmt.Errorf("count %s where %s>=%s: %w", table, column, value, err)
	}
	return count, nil
}

// FirstValue reads column from the first row of table, returning 0 when the
// table is empty.
func (c *Client) FirstValue(ctx context.Context, table, column string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	data, _, err := c.sb.From(table).Select(column, "", false).Limit(1, "").Execute()
	if err != nil {
		return 0, fmt.Errorf("read %s.%s: %w", table, column, err)
	}
	var rows []map[string]json.Number
	if err := json.Unmarshal(data, &rows); err != nil {
		return 0, fmt.Errorf("decode %s.%s: %w", table, column, err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	n, ok := rows[0][column]
	if !ok {
		return 0, fmt.Errorf("%s: column %q missing in response", table, column)
	}
	v, err := n.Int64()
	if err != nil {
		// tolerate numeric columns that come back as floats
		f, ferr := n.Float64()
		if ferr != nil {
			return 0, fmt.Errorf("%s.%s: not numeric: %w", table, column, err)
		}
		v = int64(f)
	}
	return v, nil
}
