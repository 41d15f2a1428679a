package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"streetbite/internal/model"
)

// ExpoPushClient is the PushProvider for React Native apps built with Expo.
// Expo has no topic mechanism, so ManageTopic always fails and topic sends
// are rejected.
type ExpoPushClient struct {
	httpClient *http.Client
	endpoint   string
}

// ExpoPushMessage is the payload for Expo's Push API.
type ExpoPushMessage struct {
	To       []string          `json:"to"`
	Title    string            `json:"title,omitempty"`
	Body     string            `json:"body"`
	Data     map[string]string `json:"data,omitempty"`
	Sound    string            `json:"sound,omitempty"`
	Priority string            `json:"priority,omitempty"`
}

// ExpoPushResponse is the response from Expo's API.
// Tickets come back in the same order as the "to" tokens.
type ExpoPushResponse struct {
	Data []ExpoPushTicket `json:"data"`
}

type ExpoPushTicket struct {
	Status  string `json:"status"` // "ok" or "error"
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
	Details struct {
		Error string `json:"error,omitempty"` // "DeviceNotRegistered", "MessageTooBig", etc.
	} `json:"details,omitempty"`
}

const (
	expoPushURL             = "https://exp.host/--/api/v2/push/send"
	expoDeviceNotRegistered = "DeviceNotRegistered"
)

// NewExpoPushClient creates a new Expo Push client. Expo needs no credentials.
// Timeouts come from the caller's context.
func NewExpoPushClient() *ExpoPushClient {
	return &ExpoPushClient{
		httpClient: &http.Client{},
		endpoint:   expoPushURL,
	}
}

// IsExpoToken reports whether token has the Expo push token format.
func IsExpoToken(token string) bool {
	return strings.HasPrefix(token, "ExponentPushToken[") || strings.HasPrefix(token, "ExpoPushToken[")
}

func (c *ExpoPushClient) Send(ctx context.Context, msg *model.PushMessage) (string, error) {
	if msg.Topic != "" {
		return "", ErrTopicsUnsupported
	}

	tickets, err := c.post(ctx, []string{msg.Token}, msg)
	if err != nil {
		return "", err
	}
	if len(tickets) == 0 {
		return "", fmt.Errorf("expo api returned no ticket")
	}
	if t := tickets[0]; t.Status != "ok" {
		if t.Details.Error == expoDeviceNotRegistered {
			return "", fmt.Errorf("expo ticket error: %s: %w", t.Message, model.ErrTokenUnregistered)
		}
		return "", fmt.Errorf("expo ticket error: %s (%s)", t.Message, t.Details.Error)
	}
	return tickets[0].ID, nil
}

func (c *ExpoPushClient) SendMulticast(ctx context.Context, msg *model.PushMessage) (*model.BatchResult, error) {
	result := &model.BatchResult{}

	valid := make([]string, 0, len(msg.Tokens))
	for _, token := range msg.Tokens {
		if IsExpoToken(token) {
			valid = append(valid, token)
			continue
		}
		// Tokens of other providers are plain failures, never unregistered
		log.Printf("[ExpoPush] Skipping non-Expo token: %s", model.ShortToken(token))
		result.FailureCount++
		result.Failures = append(result.Failures, model.TokenFailure{
			Token: token,
			Err:   fmt.Errorf("not an expo push token"),
		})
	}

	if len(valid) == 0 {
		return result, nil
	}

	tickets, err := c.post(ctx, valid, msg)
	if err != nil {
		return result, err
	}

	for i, token := range valid {
		if i >= len(tickets) {
			result.FailureCount++
			result.Failures = append(result.Failures, model.TokenFailure{Token: token, Err: fmt.Errorf("missing ticket")})
			continue
		}
		t := tickets[i]
		if t.Status == "ok" {
			result.SuccessCount++
			continue
		}
		result.FailureCount++
		result.Failures = append(result.Failures, model.TokenFailure{
			Token:        token,
			Err:          fmt.Errorf("%s (%s)", t.Message, t.Details.Error),
			Unregistered: t.Details.Error == expoDeviceNotRegistered,
		})
	}

	return result, nil
}

func (c *ExpoPushClient) ManageTopic(ctx context.Context, tokens []string, topic string, action TopicAction) (*model.TopicResult, error) {
	return nil, ErrTopicsUnsupported
}

func (c *ExpoPushClient) post(ctx context.Context, tokens []string, msg *model.PushMessage) ([]ExpoPushTicket, error) {
	payload, err := json.Marshal(ExpoPushMessage{
		To:       tokens,
		Title:    msg.Title,
		Body:     msg.Body,
		Data:     msg.Data,
		Sound:    "default",
		Priority: "high",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("expo api error: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var pushResp ExpoPushResponse
	if err := json.Unmarshal(respBody, &pushResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return pushResp.Data, nil
}
