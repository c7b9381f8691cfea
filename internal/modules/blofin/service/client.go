package service

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"trade_engine/internal/modules/config"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// Client — REST-клиент BloFin. Все методы возвращают нормализованные
// Result'ы; сетевые и конвертные ошибки — через error.
type Client struct {
	http      *http.Client
	restURL   string
	apiKey    string
	apiSecret string
	passph    string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		http:      &http.Client{Timeout: 10 * time.Second},
		restURL:   cfg.Blofin.RestURL,
		apiKey:    cfg.Blofin.APIKey,
		apiSecret: cfg.Blofin.APISecret,
		passph:    cfg.Blofin.Passphrase,
	}
}

// do выполняет подписанный запрос и отдаёт сырое тело ответа.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var body io.Reader
	if len(payload) > 0 {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.restURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}

	sign, ts, nonce := c.sign(method, path, string(payload))
	req.Header.Set("ACCESS-KEY", c.apiKey)
	req.Header.Set("ACCESS-SIGN", sign)
	req.Header.Set("ACCESS-TIMESTAMP", ts)
	req.Header.Set("ACCESS-NONCE", nonce)
	req.Header.Set("ACCESS-PASSPHRASE", c.passph)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return nil, errors.Errorf("http %d: %s", resp.StatusCode, string(data))
	}
	return data, nil
}

// batch — POST списка элементов, разбор конверта с пер-элементными результатами.
func (c *Client) batch(ctx context.Context, path string, items any) ([]Result, error) {
	payload, err := sonic.Marshal(items)
	if err != nil {
		return nil, errors.Wrap(err, "marshal batch")
	}

	data, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := sonic.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}

	// Конвертный отказ без детализации — размазываем код на весь батч,
	// чтобы хендлеры приняли решение по каждому элементу.
	if env.Code != "0" && len(env.Data) == 0 {
		return nil, errors.Errorf("blofin error: code=%s msg=%s", env.Code, env.Msg)
	}
	return env.Data, nil
}
