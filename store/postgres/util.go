package postgres

import (
	"fmt"

	"github.com/jackc/pgx/v5"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
)

// scanOrigins scans the remainder of rows as a single origin-string column.
func scanOrigins(rows pgx.Rows) ([]ci.Origin, error) {
	var out []ci.Origin
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan origin: %w", err)
		}
		o, err := ci.ParseOrigin(raw)
		if err != nil {
			continue
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
