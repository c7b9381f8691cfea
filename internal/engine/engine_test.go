package engine

import (
	"context"
	"sync"
	"time"

	"trade_engine/internal/models"
	blofin "trade_engine/internal/modules/blofin/service"
)

// Фейки для хендлеров: store в памяти, биржа со скриптованными ответами.

type fakeRequestStore struct {
	mu       sync.Mutex
	rows     map[string]models.Request
	fetchErr error
}

func newFakeRequestStore(rows ...models.Request) *fakeRequestStore {
	s := &fakeRequestStore{rows: make(map[string]models.Request)}
	for _, r := range rows {
		s.rows[r.ID] = r
	}
	return s
}

func (s *fakeRequestStore) Fetch(_ context.Context, account string, status models.Status) ([]models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	var out []models.Request
	for _, r := range s.rows {
		if r.Account == account && r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeRequestStore) Submit(_ context.Context, request models.Request) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request.UpdateTime = time.Now()
	s.rows[request.ID] = request
	return 1, nil
}

func (s *fakeRequestStore) SubmitFenced(_ context.Context, request models.Request, revision int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.rows[request.ID]
	if !ok || current.Revision != revision {
		return 0, nil
	}
	request.Revision = revision + 1
	s.rows[request.ID] = request
	return 1, nil
}

func (s *fakeRequestStore) get(id string) models.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows[id]
}

type fakeStopStore struct {
	mu   sync.Mutex
	rows map[string]models.StopRequest
}

func newFakeStopStore(rows ...models.StopRequest) *fakeStopStore {
	s := &fakeStopStore{rows: make(map[string]models.StopRequest)}
	for _, r := range rows {
		s.rows[r.ID] = r
	}
	return s
}

func (s *fakeStopStore) Fetch(_ context.Context, account string, status models.Status) ([]models.StopRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.StopRequest
	for _, r := range s.rows {
		if r.Account == account && r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStopStore) Submit(_ context.Context, request models.StopRequest) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request.UpdateTime = time.Now()
	s.rows[request.ID] = request
	return 1, nil
}

func (s *fakeStopStore) get(id string) models.StopRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows[id]
}

type fakePositionStore struct {
	mu     sync.Mutex
	rows   map[string]models.InstrumentPosition
	closed []string
}

func newFakePositionStore(rows ...models.InstrumentPosition) *fakePositionStore {
	s := &fakePositionStore{rows: make(map[string]models.InstrumentPosition)}
	for _, r := range rows {
		s.rows[r.ID] = r
	}
	return s
}

func (s *fakePositionStore) Fetch(_ context.Context, id string) (*models.InstrumentPosition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pos, ok := s.rows[id]; ok {
		return &pos, nil
	}
	return nil, nil
}

func (s *fakePositionStore) FetchBySymbol(_ context.Context, account, symbol string) (*models.InstrumentPosition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, pos := range s.rows {
		if pos.Account == account && pos.Symbol == symbol {
			return &pos, nil
		}
	}
	return nil, nil
}

func (s *fakePositionStore) FetchOpen(_ context.Context, account string) ([]models.InstrumentPosition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.InstrumentPosition
	for _, pos := range s.rows {
		if pos.Account == account && pos.Status == models.PositionOpen {
			out = append(out, pos)
		}
	}
	return out, nil
}

func (s *fakePositionStore) Provision(_ context.Context, pos models.InstrumentPosition) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[pos.ID] = pos
	return 1, nil
}

func (s *fakePositionStore) Close(_ context.Context, ids []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if pos, ok := s.rows[id]; ok && pos.Status == models.PositionOpen {
			pos.Status = models.PositionClosed
			s.rows[id] = pos
			s.closed = append(s.closed, id)
			n++
		}
	}
	return n, nil
}

// fakeExchange отвечает заранее заданными Result'ами; по умолчанию акцептует.
type fakeExchange struct {
	mu sync.Mutex

	submitResults map[string]blofin.Result // clientOrderId -> ответ
	cancelResults map[string]blofin.Result

	onCancel func() // хук для симуляции гонок между fetch и resubmit

	submitted    [][]blofin.OrderRequest
	canceled     [][]blofin.CancelRequest
	stopsSubmits [][]blofin.StopOrderRequest
	stopsCancels [][]blofin.CancelStopRequest
	leverages    []blofin.LeverageRequest
	positions    []blofin.Position
}

func newFakeExchange() *fakeExchange {
	return &fakeExchange{
		submitResults: make(map[string]blofin.Result),
		cancelResults: make(map[string]blofin.Result),
	}
}

func accept(id string) blofin.Result {
	return blofin.Result{Code: "0", Msg: "success", OrderID: "ex-" + id, TpslID: "tpsl-" + id, ClientOrderID: id}
}

func (f *fakeExchange) result(m map[string]blofin.Result, id string) blofin.Result {
	if r, ok := m[id]; ok {
		return r
	}
	return accept(id)
}

func (f *fakeExchange) SubmitOrders(_ context.Context, requests []blofin.OrderRequest) ([]blofin.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, requests)
	out := make([]blofin.Result, 0, len(requests))
	for _, r := range requests {
		out = append(out, f.result(f.submitResults, r.ClientOrderID))
	}
	return out, nil
}

func (f *fakeExchange) CancelOrders(_ context.Context, requests []blofin.CancelRequest) ([]blofin.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.onCancel != nil {
		f.onCancel()
	}
	f.canceled = append(f.canceled, requests)
	out := make([]blofin.Result, 0, len(requests))
	for _, r := range requests {
		out = append(out, f.result(f.cancelResults, r.ClientOrderID))
	}
	return out, nil
}

func (f *fakeExchange) SubmitStops(_ context.Context, requests []blofin.StopOrderRequest) ([]blofin.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopsSubmits = append(f.stopsSubmits, requests)
	out := make([]blofin.Result, 0, len(requests))
	for _, r := range requests {
		out = append(out, f.result(f.submitResults, r.ClientOrderID))
	}
	return out, nil
}

func (f *fakeExchange) CancelStops(_ context.Context, requests []blofin.CancelStopRequest) ([]blofin.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopsCancels = append(f.stopsCancels, requests)
	out := make([]blofin.Result, 0, len(requests))
	for _, r := range requests {
		out = append(out, f.result(f.cancelResults, r.ClientOrderID))
	}
	return out, nil
}

func (f *fakeExchange) SetLeverage(_ context.Context, request blofin.LeverageRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leverages = append(f.leverages, request)
	return nil
}

func (f *fakeExchange) Positions(_ context.Context) ([]blofin.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.positions, nil
}

func (f *fakeExchange) submitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, batch := range f.submitted {
		n += len(batch)
	}
	return n
}

const testAccount = "main"

func newTestEngine(requests *fakeRequestStore, stops *fakeStopStore, positions *fakePositionStore, exchange *fakeExchange, now time.Time) *Engine {
	e := New(testAccount, exchange, requests, stops, positions)
	e.now = func() time.Time { return now }
	return e
}
