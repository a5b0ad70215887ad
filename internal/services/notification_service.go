package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/skinior/skinior-api/internal/logger"
	"github.com/skinior/skinior-api/internal/models"
	"github.com/skinior/skinior-api/internal/push"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultInboxLimit   = 20
	MaxInboxLimit       = 100
	maxConcurrentSends  = 8
	maxNotificationText = 500
)

type NotificationDeviceRepository interface {
	Upsert(ctx context.Context, device *models.Device) error
	ListByUser(ctx context.Context, userID string) ([]models.Device, error)
	FindOwned(ctx context.Context, userID string, deviceID string) (models.Device, bool, error)
	DeleteOwned(ctx context.Context, userID string, deviceID string) (bool, error)
}

type NotificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListPage(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID string, notificationID string) (bool, error)
	MarkManyRead(ctx context.Context, userID string, notificationIDs []string) (int64, error)
	DeleteOwned(ctx context.Context, userID string, notificationID string) (bool, error)
}

type NotificationSettingsStore interface {
	Find(ctx context.Context, userID string) (models.NotificationSettings, bool, error)
	Save(ctx context.Context, settings *models.NotificationSettings) error
}

type PushSender interface {
	Send(ctx context.Context, message push.Message) error
}

type RegisterDeviceInput struct {
	DeviceToken string `json:"deviceToken"`
	Platform    string `json:"platform"`
	AppVersion  string `json:"appVersion"`
	DeviceModel string `json:"deviceModel"`
	OSVersion   string `json:"osVersion"`
}

type SendNotificationInput struct {
	DeviceID   string            `json:"deviceId"`
	Title      string            `json:"title"`
	Body       string            `json:"body"`
	ImageURL   string            `json:"imageUrl"`
	Type       string            `json:"type"`
	Screen     string            `json:"screen"`
	Params     map[string]string `json:"params"`
	Action     string            `json:"action"`
	Priority   string            `json:"priority"`
	TTLSeconds int               `json:"ttl"`
}

type SendResult struct {
	NotificationID string `json:"notificationId,omitempty"`
	SuccessCount   int    `json:"successCount"`
	FailureCount   int    `json:"failureCount"`
	Skipped        bool   `json:"skipped"`
}

type InboxQuery struct {
	Page  string
	Limit string
	Read  string
}

type InboxPagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

type Inbox struct {
	Notifications []models.Notification `json:"notifications"`
	Pagination    InboxPagination       `json:"pagination"`
	UnreadCount   int64                 `json:"unreadCount"`
}

// SettingsPatch leaves nil fields unchanged.
type SettingsPatch struct {
	SkinAnalysisComplete *bool `json:"skinAnalysisComplete"`
	ChatMessages         *bool `json:"chatMessages"`
	Reminders            *bool `json:"reminders"`
	Marketing            *bool `json:"marketing"`
	PushEnabled          *bool `json:"pushEnabled"`
	EmailEnabled         *bool `json:"emailEnabled"`
}

type NotificationService struct {
	devices       NotificationDeviceRepository
	notifications NotificationStore
	settings      NotificationSettingsStore
	sender        PushSender
	log           *logger.Logger
	now           func() time.Time
}

func NewNotificationService(devices NotificationDeviceRepository, notifications NotificationStore, settings NotificationSettingsStore, sender PushSender, log *logger.Logger) *NotificationService {
	if log == nil {
		log = logger.Nop()
	}
	return &NotificationService{
		devices:       devices,
		notifications: notifications,
		settings:      settings,
		sender:        sender,
		log:           log,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (service *NotificationService) RegisterDevice(ctx context.Context, userID string, input RegisterDeviceInput) (models.Device, error) {
	validation := &ValidationError{}
	token := strings.TrimSpace(input.DeviceToken)
	if token == "" {
		validation.add("deviceToken", "deviceToken is required")
	}
	platform := strings.ToLower(strings.TrimSpace(input.Platform))
	if platform != models.PlatformIOS && platform != models.PlatformAndroid {
		validation.add("platform", "platform must be ios or android")
	}
	if err := validation.orNil(); err != nil {
		return models.Device{}, err
	}

	device := models.Device{
		UserID:      userID,
		DeviceToken: token,
		Platform:    platform,
		AppVersion:  strings.TrimSpace(input.AppVersion),
		DeviceModel: strings.TrimSpace(input.DeviceModel),
		OSVersion:   strings.TrimSpace(input.OSVersion),
	}
	if err := service.devices.Upsert(ctx, &device); err != nil {
		return models.Device{}, err
	}
	return device, nil
}

func (service *NotificationService) UnregisterDevice(ctx context.Context, userID string, deviceID string) error {
	removed, err := service.devices.DeleteOwned(ctx, userID, deviceID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrDeviceNotFound
	}
	return nil
}

// Send delivers to one owned device or to all of the user's devices. Delivery
// failures are counted per token, never returned as an error.
func (service *NotificationService) Send(ctx context.Context, userID string, input SendNotificationInput) (SendResult, error) {
	if err := validateSendInput(input); err != nil {
		return SendResult{}, err
	}

	tokens, err := service.resolveTokens(ctx, userID, strings.TrimSpace(input.DeviceID))
	if err != nil {
		return SendResult{}, err
	}
	if len(tokens) == 0 {
		return SendResult{}, newValidationError("deviceId", "no registered devices")
	}

	settings, err := service.GetSettings(ctx, userID)
	if err != nil {
		return SendResult{}, err
	}
	if !allowsNotification(settings, input.Type) {
		return SendResult{Skipped: true}, nil
	}

	data := buildNotificationData(input)
	encoded, err := json.Marshal(data)
	if err != nil {
		return SendResult{}, err
	}

	sentAt := service.now()
	notification := models.Notification{
		UserID: userID,
		Title:  strings.TrimSpace(input.Title),
		Body:   strings.TrimSpace(input.Body),
		Data:   encoded,
		SentAt: &sentAt,
	}
	if err := service.notifications.Create(ctx, &notification); err != nil {
		return SendResult{}, err
	}

	ttl := push.DefaultTTL
	if input.TTLSeconds > 0 {
		ttl = time.Duration(input.TTLSeconds) * time.Second
	}
	template := push.Message{
		Title:    notification.Title,
		Body:     notification.Body,
		ImageURL: strings.TrimSpace(input.ImageURL),
		Data:     data,
		Priority: strings.ToLower(strings.TrimSpace(input.Priority)),
		TTL:      ttl,
	}

	success, failure := service.fanOut(ctx, template, tokens)
	return SendResult{
		NotificationID: notification.ID,
		SuccessCount:   success,
		FailureCount:   failure,
	}, nil
}

// NotifySessionCompleted is best effort: no devices or disabled settings are not errors.
func (service *NotificationService) NotifySessionCompleted(ctx context.Context, userID string, sessionID string) error {
	devices, err := service.devices.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return nil
	}

	result, err := service.Send(ctx, userID, SendNotificationInput{
		Title:    "Your skin analysis is ready",
		Body:     "Open Skinior to see your personalised results and recommendations.",
		Type:     models.NotificationTypeSkinAnalysisComplete,
		Screen:   "ConsultationDetails",
		Params:   map[string]string{"consultationId": sessionID},
		Action:   "open_consultation",
		Priority: push.PriorityHigh,
	})
	if err != nil {
		return err
	}
	service.log.Info("session completion push",
		"user_id", userID,
		"session_id", sessionID,
		"success", result.SuccessCount,
		"failure", result.FailureCount,
		"skipped", result.Skipped,
	)
	return nil
}

func (service *NotificationService) resolveTokens(ctx context.Context, userID string, deviceID string) ([]string, error) {
	if deviceID != "" {
		device, found, err := service.devices.FindOwned(ctx, userID, deviceID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, ErrDeviceNotFound
		}
		return []string{device.DeviceToken}, nil
	}

	devices, err := service.devices.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	tokens := make([]string, 0, len(devices))
	for _, device := range devices {
		tokens = append(tokens, device.DeviceToken)
	}
	return tokens, nil
}

func (service *NotificationService) fanOut(ctx context.Context, template push.Message, tokens []string) (int, int) {
	var success, failure atomic.Int64

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentSends)
	for _, token := range tokens {
		message := template
		message.Token = token
		group.Go(func() error {
			if err := service.sender.Send(groupCtx, message); err != nil {
				failure.Add(1)
				service.log.Warn("push delivery failed", "device_token", message.Token, "error", err)
				return nil
			}
			success.Add(1)
			return nil
		})
	}
	_ = group.Wait()

	return int(success.Load()), int(failure.Load())
}

func (service *NotificationService) Inbox(ctx context.Context, userID string, query InboxQuery) (Inbox, error) {
	validation := &ValidationError{}

	page := 1
	if raw := strings.TrimSpace(query.Page); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			validation.add("page", "page must be a positive integer")
		} else {
			page = parsed
		}
	}

	limit := DefaultInboxLimit
	if raw := strings.TrimSpace(query.Limit); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > MaxInboxLimit {
			validation.add("limit", "limit must be an integer between 1 and 100")
		} else {
			limit = parsed
		}
	}

	var read *bool
	switch strings.ToLower(strings.TrimSpace(query.Read)) {
	case "", "all":
	case "true":
		value := true
		read = &value
	case "false":
		value := false
		read = &value
	default:
		validation.add("read", "read must be true, false or all")
	}

	if err := validation.orNil(); err != nil {
		return Inbox{}, err
	}

	notifications, total, err := service.notifications.ListPage(ctx, models.NotificationFilter{
		UserID: userID,
		Read:   read,
		Offset: (page - 1) * limit,
		Limit:  limit,
	})
	if err != nil {
		return Inbox{}, err
	}
	unread, err := service.notifications.CountUnread(ctx, userID)
	if err != nil {
		return Inbox{}, err
	}

	return Inbox{
		Notifications: notifications,
		Pagination: InboxPagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: (total + int64(limit) - 1) / int64(limit),
		},
		UnreadCount: unread,
	}, nil
}

func (service *NotificationService) MarkRead(ctx context.Context, userID string, notificationID string) error {
	changed, err := service.notifications.MarkRead(ctx, userID, notificationID)
	if err != nil {
		return err
	}
	if !changed {
		return ErrNotificationNotFound
	}
	return nil
}

func (service *NotificationService) MarkManyRead(ctx context.Context, userID string, notificationIDs []string) (int64, error) {
	ids := make([]string, 0, len(notificationIDs))
	for _, id := range notificationIDs {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	if len(ids) == 0 {
		return 0, newValidationError("notificationIds", "notificationIds must not be empty")
	}
	return service.notifications.MarkManyRead(ctx, userID, ids)
}

func (service *NotificationService) Delete(ctx context.Context, userID string, notificationID string) error {
	removed, err := service.notifications.DeleteOwned(ctx, userID, notificationID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotificationNotFound
	}
	return nil
}

// GetSettings creates the default row on first access.
func (service *NotificationService) GetSettings(ctx context.Context, userID string) (models.NotificationSettings, error) {
	settings, found, err := service.settings.Find(ctx, userID)
	if err != nil {
		return models.NotificationSettings{}, err
	}
	if found {
		return settings, nil
	}

	settings = models.DefaultNotificationSettings(userID)
	if err := service.settings.Save(ctx, &settings); err != nil {
		return models.NotificationSettings{}, err
	}
	return settings, nil
}

func (service *NotificationService) UpdateSettings(ctx context.Context, userID string, patch SettingsPatch) (models.NotificationSettings, error) {
	settings, err := service.GetSettings(ctx, userID)
	if err != nil {
		return models.NotificationSettings{}, err
	}

	applyBool(&settings.SkinAnalysisComplete, patch.SkinAnalysisComplete)
	applyBool(&settings.ChatMessages, patch.ChatMessages)
	applyBool(&settings.Reminders, patch.Reminders)
	applyBool(&settings.Marketing, patch.Marketing)
	applyBool(&settings.PushEnabled, patch.PushEnabled)
	applyBool(&settings.EmailEnabled, patch.EmailEnabled)

	if err := service.settings.Save(ctx, &settings); err != nil {
		return models.NotificationSettings{}, err
	}
	return settings, nil
}

func validateSendInput(input SendNotificationInput) error {
	validation := &ValidationError{}

	title := strings.TrimSpace(input.Title)
	if title == "" || len([]rune(title)) > maxNotificationText {
		validation.add("title", "title is required and must be at most 500 characters")
	}
	body := strings.TrimSpace(input.Body)
	if body == "" || len([]rune(body)) > maxNotificationText {
		validation.add("body", "body is required and must be at most 500 characters")
	}
	switch input.Type {
	case "", models.NotificationTypeSkinAnalysisComplete, models.NotificationTypeChatMessage,
		models.NotificationTypeReminder, models.NotificationTypeMarketing:
	default:
		validation.add("type", "unknown notification type")
	}
	switch strings.ToLower(strings.TrimSpace(input.Priority)) {
	case "", push.PriorityHigh, push.PriorityNormal:
	default:
		validation.add("priority", "priority must be high or normal")
	}
	if input.TTLSeconds < 0 {
		validation.add("ttl", "ttl must not be negative")
	}

	return validation.orNil()
}

// allowsNotification applies the master switch and then the per-type switch.
func allowsNotification(settings models.NotificationSettings, notificationType string) bool {
	if !settings.PushEnabled {
		return false
	}
	switch notificationType {
	case models.NotificationTypeSkinAnalysisComplete:
		return settings.SkinAnalysisComplete
	case models.NotificationTypeChatMessage:
		return settings.ChatMessages
	case models.NotificationTypeReminder:
		return settings.Reminders
	case models.NotificationTypeMarketing:
		return settings.Marketing
	default:
		return true
	}
}

// buildNotificationData flattens routing hints into the string map FCM requires.
func buildNotificationData(input SendNotificationInput) map[string]string {
	data := map[string]string{}
	if input.Type != "" {
		data["type"] = input.Type
	}
	if screen := strings.TrimSpace(input.Screen); screen != "" {
		data["screen"] = screen
	}
	if action := strings.TrimSpace(input.Action); action != "" {
		data["action"] = action
	}
	if len(input.Params) > 0 {
		if encoded, err := json.Marshal(input.Params); err == nil {
			data["params"] = string(encoded)
		}
	}
	return data
}

func applyBool(target *bool, value *bool) {
	if value != nil {
		*target = *value
	}
}
