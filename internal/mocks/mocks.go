package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"klink-backend/internal/assistant"
	"klink-backend/internal/language"
	"klink-backend/internal/models"
	"klink-backend/internal/presence"
	"klink-backend/internal/push"
	"klink-backend/internal/repositories"
	"klink-backend/internal/telemetry"
	"klink-backend/internal/translation"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetProfile(ctx context.Context, userID string) (models.UserProfile, error) {
	args := m.Called(ctx, userID)
	var profile models.UserProfile
	if val := args.Get(0); val != nil {
		profile = val.(models.UserProfile)
	}
	return profile, args.Error(1)
}

func (m *UserRepositoryMock) GetPushTokens(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	var tokens []string
	if val := args.Get(0); val != nil {
		tokens = val.([]string)
	}
	return tokens, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, ownerUserID, chatID, messageID string) (models.Message, error) {
	args := m.Called(ctx, ownerUserID, chatID, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ApplyTranslation(ctx context.Context, ownerUserID, chatID, messageID string, translations models.TranslationMap, detectedLanguage string) error {
	args := m.Called(ctx, ownerUserID, chatID, messageID, translations, detectedLanguage)
	return args.Error(0)
}

type DetectorMock struct {
	mock.Mock
}

func (m *DetectorMock) DetectLanguage(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

type TranslatorMock struct {
	mock.Mock
}

func (m *TranslatorMock) TranslateText(ctx context.Context, text, targetLanguage string) (string, error) {
	args := m.Called(ctx, text, targetLanguage)
	return args.String(0), args.Error(1)
}

type PresenceStoreMock struct {
	mock.Mock
}

func (m *PresenceStoreMock) GetPresence(ctx context.Context, userID string) (bool, string, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.String(1), args.Error(2)
}

type PresenceOracleMock struct {
	mock.Mock
}

func (m *PresenceOracleMock) IsActiveInChat(ctx context.Context, userID, chatID string) bool {
	args := m.Called(ctx, userID, chatID)
	return args.Bool(0)
}

type SenderMock struct {
	mock.Mock
}

func (m *SenderMock) Send(ctx context.Context, token string, payload push.Payload) error {
	args := m.Called(ctx, token, payload)
	return args.Error(0)
}

type DispatcherMock struct {
	mock.Mock
}

func (m *DispatcherMock) Dispatch(ctx context.Context, req models.NotificationRequest) (models.DispatchResult, error) {
	args := m.Called(ctx, req)
	var result models.DispatchResult
	if val := args.Get(0); val != nil {
		result = val.(models.DispatchResult)
	}
	return result, args.Error(1)
}

type OnDemandTranslatorMock struct {
	mock.Mock
}

func (m *OnDemandTranslatorMock) TranslateOnDemand(ctx context.Context, messageText, targetLanguage string) (translation.OnDemandResult, error) {
	args := m.Called(ctx, messageText, targetLanguage)
	var result translation.OnDemandResult
	if val := args.Get(0); val != nil {
		result = val.(translation.OnDemandResult)
	}
	return result, args.Error(1)
}

type AssistantClientMock struct {
	mock.Mock
}

func (m *AssistantClientMock) Chat(ctx context.Context, message string, history []assistant.Turn) (assistant.Reply, error) {
	args := m.Called(ctx, message, history)
	var reply assistant.Reply
	if val := args.Get(0); val != nil {
		reply = val.(assistant.Reply)
	}
	return reply, args.Error(1)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *PublisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ language.Detector = (*DetectorMock)(nil)
var _ language.Translator = (*TranslatorMock)(nil)
var _ presence.Store = (*PresenceStoreMock)(nil)
var _ presence.Oracle = (*PresenceOracleMock)(nil)
var _ push.Sender = (*SenderMock)(nil)
var _ telemetry.Publisher = (*PublisherMock)(nil)
