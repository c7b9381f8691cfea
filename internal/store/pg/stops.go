package pg

import (
	"context"
	"fmt"

	"trade_engine/internal/models"
	"trade_engine/pkg/db"
)

// Stops implement store.StopStore
type Stops struct {
	tx db.TxManager
}

func NewStops(tx db.TxManager) *Stops {
	return &Stops{tx: tx}
}

func (s *Stops) Fetch(ctx context.Context, account string, status models.Status) (stops []models.StopRequest, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Stops.Fetch: %w", err)
		}
	}()

	// vw_stop_requests джойнит instrument_position ради position_status
	rows, err := s.tx.Conn().Query(ctx, `
		SELECT stop_request, instrument_position, account, symbol, side, position_side,
			margin_mode, stop_type, trigger_price, order_price, size, reduce_only,
			status, memo, position_status, tpsl_id, create_time, update_time
		FROM vw_stop_requests WHERE account = $1 AND status = $2 ORDER BY create_time`,
		account, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var stop models.StopRequest
		var status, stopType string
		if err = rows.Scan(
			&stop.ID, &stop.InstrumentPosition, &stop.Account, &stop.Symbol, &stop.Side,
			&stop.PositionSide, &stop.MarginMode, &stopType, &stop.TriggerPrice,
			&stop.OrderPrice, &stop.Size, &stop.ReduceOnly, &status, &stop.Memo,
			&stop.PositionStatus, &stop.TpslID, &stop.CreateTime, &stop.UpdateTime,
		); err != nil {
			return nil, err
		}
		stop.Status = models.Status(status)
		stop.StopType = models.StopType(stopType)
		stops = append(stops, stop)
	}
	return stops, rows.Err()
}

func (s *Stops) Submit(ctx context.Context, request models.StopRequest) (affected int64, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Stops.Submit: %w", err)
		}
	}()

	tag, err := s.tx.Conn().Exec(ctx, `
		INSERT INTO stop_request (stop_request, instrument_position, account, symbol, side,
			position_side, margin_mode, stop_type, trigger_price, order_price, size,
			reduce_only, status, memo, tpsl_id, create_time, update_time)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,now(),now())
		ON CONFLICT (stop_request) DO UPDATE SET
			status = EXCLUDED.status,
			memo = EXCLUDED.memo,
			tpsl_id = COALESCE(NULLIF(EXCLUDED.tpsl_id, ''), stop_request.tpsl_id),
			update_time = now()`,
		request.ID, request.InstrumentPosition, request.Account, request.Symbol, request.Side,
		request.PositionSide, request.MarginMode, string(request.StopType), request.TriggerPrice,
		request.OrderPrice, request.Size, request.ReduceOnly, string(request.Status),
		request.Memo, request.TpslID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
