package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"streetbite/internal/model"
)

const (
	// FCM accepts at most 500 tokens per multicast request
	fcmMulticastLimit = 500
	// and at most 1000 tokens per topic management request
	fcmTopicBatchLimit = 1000
)

// NewFirebaseApp initializes the Firebase app shared by FCM and Firestore.
//
// The credentials (project ID, client email, private key) come from the
// service account JSON in Firebase Console. The private key in .env has
// literal "\n" strings, so they are replaced with real newlines.
func NewFirebaseApp(ctx context.Context, projectID, clientEmail, privateKey string) (*firebase.App, error) {
	privateKey = strings.ReplaceAll(privateKey, "\\n", "\n")

	credsJSON := fmt.Sprintf(`{
		"type": "service_account",
		"project_id": %q,
		"private_key": %q,
		"client_email": %q,
		"token_uri": "https://oauth2.googleapis.com/token"
	}`, projectID, privateKey, clientEmail)

	opt := option.WithCredentialsJSON([]byte(credsJSON))
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opt)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	log.Printf("[Firebase] Initialized for project: %s", projectID)
	return app, nil
}

// FCMClient is the PushProvider backed by Firebase Cloud Messaging.
type FCMClient struct {
	client *messaging.Client
}

// NewFCMClient gets the messaging client from an initialized Firebase app.
func NewFCMClient(ctx context.Context, app *firebase.App) (*FCMClient, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("get messaging client: %w", err)
	}
	return &FCMClient{client: client}, nil
}

func (c *FCMClient) Send(ctx context.Context, msg *model.PushMessage) (string, error) {
	message := &messaging.Message{
		Token:        msg.Token,
		Topic:        msg.Topic,
		Notification: &messaging.Notification{Title: msg.Title, Body: msg.Body},
		Data:         msg.Data,
		Android:      androidConfig(),
		APNS:         apnsConfig(),
	}

	id, err := c.client.Send(ctx, message)
	if err != nil {
		if messaging.IsUnregistered(err) {
			return "", fmt.Errorf("fcm send: %w: %w", model.ErrTokenUnregistered, err)
		}
		return "", fmt.Errorf("fcm send: %w", err)
	}
	return id, nil
}

// SendMulticast splits tokens into provider-sized chunks. A chunk that fails
// as a whole counts every token in it as failed; other chunks still go out.
func (c *FCMClient) SendMulticast(ctx context.Context, msg *model.PushMessage) (*model.BatchResult, error) {
	result := &model.BatchResult{}
	var lastErr error

	for start := 0; start < len(msg.Tokens); start += fcmMulticastLimit {
		end := min(start+fcmMulticastLimit, len(msg.Tokens))
		chunk := msg.Tokens[start:end]

		response, err := c.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens:       chunk,
			Notification: &messaging.Notification{Title: msg.Title, Body: msg.Body},
			Data:         msg.Data,
			Android:      androidConfig(),
			APNS:         apnsConfig(),
		})
		if err != nil {
			lastErr = err
			result.FailureCount += len(chunk)
			for _, token := range chunk {
				result.Failures = append(result.Failures, model.TokenFailure{Token: token, Err: err})
			}
			continue
		}

		result.SuccessCount += response.SuccessCount
		result.FailureCount += response.FailureCount
		for i, resp := range response.Responses {
			if resp.Success {
				continue
			}
			result.Failures = append(result.Failures, model.TokenFailure{
				Token:        chunk[i],
				Err:          resp.Error,
				Unregistered: messaging.IsUnregistered(resp.Error),
			})
		}
	}

	if result.SuccessCount == 0 && lastErr != nil {
		return result, fmt.Errorf("fcm multicast: %w", lastErr)
	}
	return result, nil
}

func (c *FCMClient) ManageTopic(ctx context.Context, tokens []string, topic string, action TopicAction) (*model.TopicResult, error) {
	result := &model.TopicResult{}

	for start := 0; start < len(tokens); start += fcmTopicBatchLimit {
		chunk := tokens[start:min(start+fcmTopicBatchLimit, len(tokens))]

		var (
			resp *messaging.TopicManagementResponse
			err  error
		)
		if action == TopicUnsubscribe {
			resp, err = c.client.UnsubscribeFromTopic(ctx, chunk, topic)
		} else {
			resp, err = c.client.SubscribeToTopic(ctx, chunk, topic)
		}
		if err != nil {
			return result, fmt.Errorf("fcm %s topic %s: %w", action, topic, err)
		}

		result.SuccessCount += resp.SuccessCount
		result.FailureCount += resp.FailureCount
	}

	return result, nil
}

// androidConfig ensures delivery even in battery-saving mode.
func androidConfig() *messaging.AndroidConfig {
	return &messaging.AndroidConfig{
		Priority: "high",
		Notification: &messaging.AndroidNotification{
			Sound: "default",
		},
	}
}

func apnsConfig() *messaging.APNSConfig {
	return &messaging.APNSConfig{
		Payload: &messaging.APNSPayload{
			Aps: &messaging.Aps{
				Sound: "default",
			},
		},
	}
}
