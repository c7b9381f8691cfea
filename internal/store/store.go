package store

import (
	"context"

	"trade_engine/internal/models"
)

// Контракты entity store, которые потребляет движок сверки. Реализация на
// pgx живёт в store/pg; в тестах хендлеры получают фейки. Store — единственный
// разделяемый мутабельный ресурс: все записи идут условными апдейтами по
// ключу и возвращают число затронутых строк.

type RequestStore interface {
	// Fetch — все живые строки аккаунта в данном статусе.
	Fetch(ctx context.Context, account string, status models.Status) ([]models.Request, error)
	// Submit — upsert по ID; возвращает число затронутых строк.
	Submit(ctx context.Context, request models.Request) (int64, error)
	// SubmitFenced — условный апдейт: проходит только если ревизия строки
	// не ушла вперёд. 0 строк = другой актор успел раньше.
	SubmitFenced(ctx context.Context, request models.Request, revision int64) (int64, error)
}

type StopStore interface {
	Fetch(ctx context.Context, account string, status models.Status) ([]models.StopRequest, error)
	Submit(ctx context.Context, request models.StopRequest) (int64, error)
}

type PositionStore interface {
	Fetch(ctx context.Context, id string) (*models.InstrumentPosition, error)
	FetchBySymbol(ctx context.Context, account, symbol string) (*models.InstrumentPosition, error)
	FetchOpen(ctx context.Context, account string) ([]models.InstrumentPosition, error)
	// Provision — идемпотентный upsert строки из seed'а.
	Provision(ctx context.Context, pos models.InstrumentPosition) (int64, error)
	// Close помечает локальные позиции Closed (биржа их больше не видит).
	Close(ctx context.Context, ids []string) (int64, error)
}

type JobStore interface {
	// FetchCommands — строки с command <> none.
	FetchCommands(ctx context.Context, account string) ([]models.JobControl, error)
	// ClearCommand сбрасывает intent в none сразу после диспатча.
	ClearCommand(ctx context.Context, instrumentPosition string) (int64, error)
	// Command записывает новый intent (путь оператора через dispatch).
	Command(ctx context.Context, instrumentPosition string, command models.JobCommand) (int64, error)
	// Observe фиксирует наблюдаемую реальность: pid и статус воркера.
	Observe(ctx context.Context, instrumentPosition string, pid int, status string) error
	// Provision — строка управления воркером из seed'а.
	Provision(ctx context.Context, job models.JobControl) (int64, error)
	// AutoStart взводит command=start на строках с auto_start; intent
	// дальше потребляет Watchdog обычным путём.
	AutoStart(ctx context.Context, account string) (int64, error)
}

type CandleStore interface {
	// History — окно баров по убыванию bar_time, начиная с from (включительно).
	History(ctx context.Context, instrument, period string, from int64, limit int) ([]models.Candle, error)
	Insert(ctx context.Context, candles []models.Candle) (int64, error)
	Update(ctx context.Context, candle models.Candle) (int64, error)
}

type AuthorityStore interface {
	// Authorized — есть ли у пользователя привилегия на предметную область.
	Authorized(ctx context.Context, user, subjectArea, privilege string) (bool, error)
}
