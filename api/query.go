package api

import (
	"context"
	"encoding/json"

	platformerrors "github.com/byteness/pasmigrate/errors"
)

// QueryEndpoint is the generic SQL query endpoint of the tenant.
const QueryEndpoint = "/RedRock/query"

// queryPageSize is the fixed page size sent with every query. The tenant
// caps result sets at this size; callers needing more narrow their SQL.
const queryPageSize = 10000

// queryArgs are the fixed pagination arguments sent with every query.
// No ordering is requested; result order is whatever the tenant returns.
type queryArgs struct {
	PageNumber int `json:"PageNumber"`
	PageSize   int `json:"PageSize"`
	Limit      int `json:"Limit"`
	Caching    int `json:"Caching"`
}

// queryRequest is the body posted to the query endpoint.
type queryRequest struct {
	Script string    `json:"Script"`
	Args   queryArgs `json:"Args"`
}

// queryResult is the Result payload shape of the query endpoint.
// Each result entry nests the actual column map under "Row".
type queryResult struct {
	Count   int `json:"Count"`
	Results []struct {
		Row Row `json:"Row"`
	} `json:"Results"`
}

// Query forwards the SQL text to the tenant's query endpoint and returns
// the result rows. A query with no matches returns an empty slice, not an
// error. The SQL is opaque to the client; only the structured result is
// inspected.
func (c *Client) Query(ctx context.Context, sql string) ([]Row, error) {
	result, err := c.Invoke(ctx, QueryEndpoint, queryRequest{
		Script: sql,
		Args: queryArgs{
			PageNumber: 1,
			PageSize:   queryPageSize,
			Limit:      queryPageSize,
			Caching:    -1,
		},
	})
	if err != nil {
		return nil, err
	}

	var qr queryResult
	if err := json.Unmarshal(result, &qr); err != nil {
		wrapped := platformerrors.WrapQueryError(err, sql)
		c.record(wrapped)
		return nil, wrapped
	}

	rows := make([]Row, 0, len(qr.Results))
	for _, r := range qr.Results {
		rows = append(rows, r.Row)
	}
	return rows, nil
}
