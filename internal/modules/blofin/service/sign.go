package service

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"time"
)

// sign строит ACCESS-SIGN по схеме BloFin:
// prehash = path + method + timestamp + nonce + body,
// подпись — base64 от hex-дайджеста HMAC-SHA256.
func (c *Client) sign(method, path, body string) (sign, timestamp, nonce string) {
	timestamp = strconv.FormatInt(time.Now().UnixMilli(), 10)
	nonce = uniqueKey(32)
	return signWith(c.apiSecret, path, method, timestamp, nonce, body), timestamp, nonce
}

func signWith(secret, path, method, timestamp, nonce, body string) string {
	prehash := path + method + timestamp + nonce + body
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(prehash))
	digest := hex.EncodeToString(mac.Sum(nil))
	return base64.StdEncoding.EncodeToString([]byte(digest))
}

// uniqueKey — случайный hex нужной длины для nonce и клиентских ключей.
func uniqueKey(size int) string {
	buf := make([]byte, (size+1)/2)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)[:size]
}
