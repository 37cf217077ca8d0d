package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/projetto/freedompay-service/internal/domain"
)

// LedgerRepository implements ports.Ledger on PostgreSQL. The table is an
// append-only journal: this type deliberately has no update or delete
// method, and the field bag is stored as JSONB verbatim so fields the
// schema has never seen survive for audit and replay.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

const insertRecordSQL = `
INSERT INTO gateway_records (id, operation, direction, order_id, script_name, protocol_version, fields, sig_verified, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// RecordOutbound journals an outbound request before it is sent
func (r *LedgerRepository) RecordOutbound(ctx context.Context, rec *domain.GatewayRecord) (uuid.UUID, error) {
	return r.insert(ctx, rec, domain.DirectionOutbound)
}

// RecordInbound journals a parsed response or gateway callback
func (r *LedgerRepository) RecordInbound(ctx context.Context, rec *domain.GatewayRecord) (uuid.UUID, error) {
	return r.insert(ctx, rec, domain.DirectionInbound)
}

func (r *LedgerRepository) insert(ctx context.Context, rec *domain.GatewayRecord, dir domain.Direction) (uuid.UUID, error) {
	id := rec.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	fieldsJSON, err := json.Marshal(rec.Fields)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal record fields: %w", err)
	}

	_, err = r.pool.Exec(ctx, insertRecordSQL,
		id,
		string(rec.Operation),
		string(dir),
		rec.OrderID,
		rec.ScriptName,
		rec.ProtocolVersion,
		fieldsJSON,
		rec.SigVerified,
		createdAt,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert gateway record: %w", err)
	}

	rec.ID = id
	rec.Direction = dir
	rec.CreatedAt = createdAt
	return id, nil
}

const selectByOrderSQL = `
SELECT id, operation, direction, order_id, script_name, protocol_version, fields, sig_verified, created_at
FROM gateway_records
WHERE order_id = $1
ORDER BY created_at ASC, id ASC`

// ListByOrder returns all records linked to an order in chronological order
func (r *LedgerRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.GatewayRecord, error) {
	rows, err := r.pool.Query(ctx, selectByOrderSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("list records by order: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

const selectByPaymentSQL = `
SELECT id, operation, direction, order_id, script_name, protocol_version, fields, sig_verified, created_at
FROM gateway_records
WHERE fields->>'pg_payment_id' = $1
ORDER BY created_at ASC, id ASC`

// ListByPaymentID returns all records carrying the gateway payment id in
// chronological order
func (r *LedgerRepository) ListByPaymentID(ctx context.Context, paymentID string) ([]domain.GatewayRecord, error) {
	rows, err := r.pool.Query(ctx, selectByPaymentSQL, paymentID)
	if err != nil {
		return nil, fmt.Errorf("list records by payment id: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanRecords(rows pgxRows) ([]domain.GatewayRecord, error) {
	var records []domain.GatewayRecord
	for rows.Next() {
		var (
			rec        domain.GatewayRecord
			op, dir    string
			fieldsJSON []byte
		)
		if err := rows.Scan(&rec.ID, &op, &dir, &rec.OrderID, &rec.ScriptName, &rec.ProtocolVersion, &fieldsJSON, &rec.SigVerified, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan gateway record: %w", err)
		}
		rec.Operation = domain.Operation(op)
		rec.Direction = domain.Direction(dir)
		if len(fieldsJSON) > 0 {
			if err := json.Unmarshal(fieldsJSON, &rec.Fields); err != nil {
				return nil, fmt.Errorf("unmarshal record fields: %w", err)
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gateway records: %w", err)
	}
	return records, nil
}
