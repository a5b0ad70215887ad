package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"google.golang.org/api/fcm/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type FCMConfig struct {
	ProjectID       string
	CredentialsFile string
	CredentialsJSON string
}

func (cfg FCMConfig) Enabled() bool {
	return strings.TrimSpace(cfg.ProjectID) != "" &&
		(strings.TrimSpace(cfg.CredentialsFile) != "" || strings.TrimSpace(cfg.CredentialsJSON) != "")
}

// FCMSender talks to the Firebase Cloud Messaging HTTP v1 API. Build it once at
// startup and share it.
type FCMSender struct {
	messages *fcm.ProjectsMessagesService
	parent   string
}

func NewFCMSender(ctx context.Context, cfg FCMConfig) (*FCMSender, error) {
	if !cfg.Enabled() {
		return nil, errors.New("fcm project id and credentials are required")
	}

	credentials := []byte(strings.TrimSpace(cfg.CredentialsJSON))
	if len(credentials) == 0 {
		raw, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read fcm credentials: %w", err)
		}
		credentials = raw
	}

	service, err := fcm.NewService(ctx,
		option.WithCredentialsJSON(credentials),
		option.WithScopes(fcm.FirebaseMessagingScope),
	)
	if err != nil {
		return nil, fmt.Errorf("init fcm client: %w", err)
	}

	return &FCMSender{
		messages: service.Projects.Messages,
		parent:   "projects/" + strings.TrimSpace(cfg.ProjectID),
	}, nil
}

func (sender *FCMSender) Send(ctx context.Context, message Message) error {
	request, err := buildSendRequest(message)
	if err != nil {
		return err
	}
	if _, err := sender.messages.Send(sender.parent, request).Context(ctx).Do(); err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	return nil
}

type apnsPayload struct {
	APS apnsAlert `json:"aps"`
}

type apnsAlert struct {
	Alert apnsAlertText `json:"alert"`
	Sound string        `json:"sound"`
	Badge int           `json:"badge"`
}

type apnsAlertText struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func buildSendRequest(message Message) (*fcm.SendMessageRequest, error) {
	if strings.TrimSpace(message.Token) == "" {
		return nil, ErrTokenRequired
	}

	ttl := message.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	badge := message.Badge
	if badge <= 0 {
		badge = 1
	}
	androidPriority := "NORMAL"
	if message.Priority == PriorityHigh {
		androidPriority = "HIGH"
	}

	apns, err := json.Marshal(apnsPayload{APS: apnsAlert{
		Alert: apnsAlertText{Title: message.Title, Body: message.Body},
		Sound: "default",
		Badge: badge,
	}})
	if err != nil {
		return nil, err
	}

	return &fcm.SendMessageRequest{
		Message: &fcm.Message{
			Token: message.Token,
			Notification: &fcm.Notification{
				Title: message.Title,
				Body:  message.Body,
				Image: message.ImageURL,
			},
			Data: message.Data,
			Android: &fcm.AndroidConfig{
				Priority: androidPriority,
				Ttl:      strconv.FormatInt(int64(ttl.Seconds()), 10) + "s",
				Notification: &fcm.AndroidNotification{
					Sound: "default",
				},
			},
			Apns: &fcm.ApnsConfig{
				Payload: googleapi.RawMessage(apns),
			},
		},
	}, nil
}
