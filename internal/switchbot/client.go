// Package switchbot отправляет команду нажатия на кнопку замка через
// облачный API SwitchBot с HMAC-подписью запроса.
package switchbot

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/sideprojectsaturday/internal/config"
	"github.com/magabrotheeeer/sideprojectsaturday/internal/models"
)

// StatusSuccess код успешного выполнения команды в ответе API.
const StatusSuccess = 100

const maxNonce = 1_000_000

// Command тело запроса команды устройства.
type Command struct {
	Command     string `json:"command"`
	CommandType string `json:"commandType"`
	Parameter   string `json:"parameter"`
}

// PressCommand команда нажатия.
var PressCommand = Command{Command: "press", CommandType: "command", Parameter: "default"}

type commandResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// Client клиент API SwitchBot для одного устройства.
type Client struct {
	baseURL    string
	token      string
	secret     string
	deviceID   string
	httpClient *http.Client
	now        func() time.Time
	nonce      func() int
}

// NewClient создает клиент из конфигурации.
func NewClient(cfg config.SwitchBot) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		secret:     cfg.Secret,
		deviceID:   cfg.DeviceID,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
		nonce:      func() int { return rand.IntN(maxNonce) },
	}
}

// Sign вычисляет подпись запроса: base64(HMAC-SHA256(secret, token+t+nonce)).
func Sign(token, secret, t, nonce string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(token + t + nonce))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Press нажимает кнопку. Без учетных данных возвращает
// ErrMisconfiguredCredentials, не выполняя запрос. Ответ с кодом, отличным
// от 100, и сетевая ошибка возвращаются как ErrActuatorFailure.
func (c *Client) Press(ctx context.Context) error {
	return c.send(ctx, PressCommand)
}

func (c *Client) send(ctx context.Context, cmd Command) error {
	const op = "switchbot.send"

	if !c.Configured() {
		return fmt.Errorf("%s: %w", op, models.ErrMisconfiguredCredentials)
	}

	body, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	endpoint := c.baseURL + "/v1.1/devices/" + url.PathEscape(c.deviceID) + "/commands"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	t := strconv.FormatInt(c.now().UnixMilli(), 10)
	nonce := strconv.Itoa(c.nonce())
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("t", t)
	req.Header.Set("nonce", nonce)
	req.Header.Set("sign", Sign(c.token, c.secret, t, nonce))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, models.ErrActuatorFailure, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var result commandResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("%s: %w: http %d: %w", op, models.ErrActuatorFailure, resp.StatusCode, err)
	}
	if result.StatusCode != StatusSuccess {
		return fmt.Errorf("%s: %w: status %d: %s", op, models.ErrActuatorFailure, result.StatusCode, result.Message)
	}
	return nil
}

// Configured сообщает, заданы ли токен, секрет и устройство.
func (c *Client) Configured() bool {
	return c.token != "" && c.secret != "" && c.deviceID != ""
}
