package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// FetchAll returns every row of table as ordered-less JSON objects. Backups
// use this for full table dumps; tables are assumed to fit in memory, which
// holds for the CRM-sized tables this tool backs up.
//
// Numbers decode as json.Number so bigint ids above 2^53 survive the round
// trip into the CSV exactly.
func (c *Client) FetchAll(ctx context.Context, table string) ([]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, _, err := c.sb.From(table).Select("*", "", false).Execute()
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", table, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode %s rows: %w", table, err)
	}
	return rows, nil
}
