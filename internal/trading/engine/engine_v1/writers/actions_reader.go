package writers

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/rxtech-lab/argo-meanrev/internal/types"
)

// ReadActions reads journal rows from an actions parquet file, oldest first.
func ReadActions(parquetPath string, filter types.ActionFilter) ([]types.ActionRecord, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB connection: %w", err)
	}
	defer db.Close()

	createViewSQL := fmt.Sprintf(`CREATE VIEW actions_view AS SELECT * FROM read_parquet('%s');`, parquetPath)

	_, err = db.Exec(createViewSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to create view from parquet file: %w", err)
	}

	query, args, err := buildActionsQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query: %w", err)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer rows.Close()

	var records []types.ActionRecord

	for rows.Next() {
		var (
			record    types.ActionRecord
			kind      string
			reason    string
			side      string
			orderType string
			status    string
		)

		err := rows.Scan(
			&record.CycleID, &record.Sequence, &record.Symbol, &kind, &reason, &side, &orderType,
			&record.Size, &record.Price, &record.ClientID, &record.OrderID, &status,
			&record.Error, &record.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan action row: %w", err)
		}

		record.Kind = types.ActionKind(kind)
		record.Reason = types.ActionReason(reason)
		record.Side = types.OrderSide(side)
		record.OrderType = types.OrderType(orderType)
		record.Status = types.ActionStatus(status)

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate action rows: %w", err)
	}

	return records, nil
}

func buildActionsQuery(filter types.ActionFilter) squirrel.SelectBuilder {
	sq := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query := sq.
		Select(
			"cycle_id", "sequence", "symbol", "kind", "reason", "side", "order_type",
			"size", "price", "client_id", "order_id", "status", "error", "timestamp",
		).
		From("actions_view").
		OrderBy("timestamp ASC", "symbol ASC", "sequence ASC")

	if filter.Symbol != "" {
		query = query.Where(squirrel.Eq{"symbol": filter.Symbol})
	}

	if filter.CycleID != "" {
		query = query.Where(squirrel.Eq{"cycle_id": filter.CycleID})
	}

	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": string(filter.Status)})
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	return query
}
