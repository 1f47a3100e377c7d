package agent

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"
)

// HTTPTaskClient получает задачи и отправляет результаты по одному и тому же URL
type HTTPTaskClient struct {
	url    string
	client *http.Client
}

// NewHTTPClient создает HTTP-клиент с фиксированным таймаутом на каждый запрос
func NewHTTPClient(url string, timeout time.Duration) *HTTPTaskClient {
	return &HTTPTaskClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// FetchTask выполняет GET и возвращает тело ответа как есть
func (c *HTTPTaskClient) FetchTask(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &TransportError{Op: http.MethodGet, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req)
}

// SubmitResult отправляет обновленную задачу методом POST. Тело ответа игнорируется.
func (c *HTTPTaskClient) SubmitResult(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Op: http.MethodPost, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	_, err = c.do(req)
	return err
}

func (c *HTTPTaskClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *HTTPTaskClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: req.Method, Err: err}
	}
	defer resp.Body.Close()

	// Чтение тела тоже ограничено таймаутом клиента
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: req.Method, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPStatusError{Op: req.Method, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
