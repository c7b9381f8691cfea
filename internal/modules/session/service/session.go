package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"trade_engine/internal/modules/config"
	"trade_engine/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
)

// State — связность с биржевым WSS; контроллеры торгуют только в connected.
type State string

const (
	StateConnecting State = "connecting"
	StateConnected  State = "connected"
	StateClosed     State = "closed"
	StateError      State = "error"
)

// Session держит соединение и состояние; никакого module-scope глобала,
// контроллеры получают *Session явно.
type Session struct {
	cfg    *config.Config
	dialer *websocket.Dialer

	mu    sync.RWMutex
	state State
}

func NewSession(cfg *config.Config) *Session {
	return &Session{
		cfg:    cfg,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		state:  StateClosed,
	}
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Connected — гейт связности для контроллеров.
func (s *Session) Connected() bool { return s.State() == StateConnected }

func (s *Session) Account() string { return s.cfg.Account }

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Run — цикл connect/login/read с реконнектом; живёт до отмены ctx.
func (s *Session) Run(ctx context.Context) {
	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			s.setState(StateClosed)
			return
		default:
		}

		s.setState(StateConnecting)
		conn, _, err := s.dialer.DialContext(ctx, s.cfg.Blofin.WssURL, nil)
		if err != nil {
			s.setState(StateError)
			logger.Warn("session: dial failed: %v, retry in %s", err, backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}

		if err := s.login(conn); err != nil {
			s.setState(StateError)
			logger.Error("session: login failed: %v", err)
			_ = conn.Close()
			continue
		}

		backoff = time.Second
		s.setState(StateConnected)
		logger.Info("session: connected to %s", s.cfg.Blofin.WssURL)

		s.readLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			s.setState(StateClosed)
			return
		}
		s.setState(StateError)
	}
}

func (s *Session) login(conn *websocket.Conn) error {
	sign, ts, nonce := signLogon(s.cfg.Blofin.APISecret)
	frame := map[string]any{
		"op": "login",
		"args": []map[string]string{{
			"apiKey":     s.cfg.Blofin.APIKey,
			"passphrase": s.cfg.Blofin.Passphrase,
			"timestamp":  ts,
			"sign":       sign,
			"nonce":      nonce,
		}},
	}
	payload, err := sonic.Marshal(frame)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}

func (s *Session) readLoop(ctx context.Context, conn *websocket.Conn) {
	// биржа закрывает молчащие соединения, пингуем каждые 25s
	ping := time.NewTicker(25 * time.Second)
	defer ping.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			logger.Warn("session: read loop closed, reconnecting")
			return
		case <-ping.C:
			if err := conn.WriteMessage(websocket.TextMessage, []byte("ping")); err != nil {
				return
			}
		}
	}
}

// signLogon — подпись WSS-логона: фиксированный путь /users/self/verify.
func signLogon(secret string) (sign, timestamp, nonce string) {
	timestamp = strconv.FormatInt(time.Now().UnixMilli(), 10)
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	nonce = hex.EncodeToString(buf)

	prehash := "/users/self/verify" + "GET" + timestamp + nonce
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(prehash))
	digest := hex.EncodeToString(mac.Sum(nil))
	sign = base64.StdEncoding.EncodeToString([]byte(digest))
	return sign, timestamp, nonce
}
