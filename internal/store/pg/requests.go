package pg

import (
	"context"
	"fmt"

	"trade_engine/internal/models"
	"trade_engine/pkg/db"
)

// Requests implement store.RequestStore
type Requests struct {
	tx db.TxManager
}

func NewRequests(tx db.TxManager) *Requests {
	return &Requests{tx: tx}
}

const requestColumns = `request, account, symbol, side, position_side, margin_mode,
	order_type, price, size, leverage, reduce_only, expiry_time, status, memo,
	revision, order_id, create_time, update_time`

func (r *Requests) Fetch(ctx context.Context, account string, status models.Status) (requests []models.Request, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Requests.Fetch: %w", err)
		}
	}()

	rows, err := r.tx.Conn().Query(ctx,
		`SELECT `+requestColumns+` FROM request WHERE account = $1 AND status = $2 ORDER BY create_time`,
		account, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var req models.Request
		var status string
		if err = rows.Scan(
			&req.ID, &req.Account, &req.Symbol, &req.Side, &req.PositionSide, &req.MarginMode,
			&req.OrderType, &req.Price, &req.Size, &req.Leverage, &req.ReduceOnly, &req.ExpiryTime,
			&status, &req.Memo, &req.Revision, &req.OrderID, &req.CreateTime, &req.UpdateTime,
		); err != nil {
			return nil, err
		}
		req.Status = models.Status(status)
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (r *Requests) Submit(ctx context.Context, request models.Request) (affected int64, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Requests.Submit: %w", err)
		}
	}()

	tag, err := r.tx.Conn().Exec(ctx, `
		INSERT INTO request (`+requestColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,now(),now())
		ON CONFLICT (request) DO UPDATE SET
			status = EXCLUDED.status,
			memo = EXCLUDED.memo,
			order_id = COALESCE(NULLIF(EXCLUDED.order_id, ''), request.order_id),
			revision = EXCLUDED.revision,
			update_time = now()`,
		request.ID, request.Account, request.Symbol, request.Side, request.PositionSide,
		request.MarginMode, request.OrderType, request.Price, request.Size, request.Leverage,
		request.ReduceOnly, request.ExpiryTime, string(request.Status), request.Memo,
		request.Revision, request.OrderID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Requests) SubmitFenced(ctx context.Context, request models.Request, revision int64) (affected int64, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Requests.SubmitFenced: %w", err)
		}
	}()

	tag, err := r.tx.Conn().Exec(ctx, `
		UPDATE request SET
			status = $2, memo = $3, revision = revision + 1, update_time = now()
		WHERE request = $1 AND revision = $4`,
		request.ID, string(request.Status), request.Memo, revision)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
