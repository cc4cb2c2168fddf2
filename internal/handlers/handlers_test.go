package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"klink-backend/internal/assistant"
	"klink-backend/internal/mocks"
	"klink-backend/internal/models"
	"klink-backend/internal/push"
	"klink-backend/internal/translation"
)

func setupRouter(notifications *NotificationHandler, translations *TranslationHandler, assistants *AssistantHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if notifications != nil {
		r.POST("/rpc/notifications/send", notifications.Send)
	}
	if translations != nil {
		r.POST("/rpc/translations/on-demand", translations.TranslateOnDemand)
	}
	if assistants != nil {
		r.POST("/rpc/assistant/chat", assistants.Chat)
	}
	return r
}

func postJSON(t *testing.T, router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSendNotificationSuccess(t *testing.T) {
	dispatcher := new(mocks.DispatcherMock)
	handler := NewNotificationHandler(dispatcher, nil)
	router := setupRouter(handler, nil, nil)

	dispatcher.On("Dispatch", mock.Anything, mock.Anything).
		Return(models.DispatchResult{SuccessCount: 2, FailureCount: 1, Failures: []models.DeliveryFailure{{Token: "t2", Code: "UNREGISTERED"}}}, nil).Once()

	rec := postJSON(t, router, "/rpc/notifications/send",
		`{"type":"message","title":"Ana","body":"hola","toUserId":"u2","chatId":"u1","messageId":"m1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, true, resp["success"])
	assert.EqualValues(t, 2, resp["successCount"])
	assert.EqualValues(t, 1, resp["failureCount"])
	dispatcher.AssertExpectations(t)
}

func TestSendNotificationMissingTitle(t *testing.T) {
	dispatcher := new(mocks.DispatcherMock)
	handler := NewNotificationHandler(dispatcher, nil)
	router := setupRouter(handler, nil, nil)

	rec := postJSON(t, router, "/rpc/notifications/send",
		`{"type":"message","body":"hola","toUserId":"u2","chatId":"u1","messageId":"m1"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, CodeInvalidArgument, resp["code"])
	// Validation happens before any delivery is attempted.
	dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestSendNotificationNoTargets(t *testing.T) {
	dispatcher := new(mocks.DispatcherMock)
	handler := NewNotificationHandler(dispatcher, nil)
	router := setupRouter(handler, nil, nil)

	dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(models.DispatchResult{}, push.ErrNoTargets).Once()

	rec := postJSON(t, router, "/rpc/notifications/send",
		`{"type":"message","title":"Ana","body":"hola","toUserId":"u2","chatId":"u1","messageId":"m1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "No device tokens found", resp["message"])
}

func TestSendNotificationDispatchError(t *testing.T) {
	dispatcher := new(mocks.DispatcherMock)
	handler := NewNotificationHandler(dispatcher, nil)
	router := setupRouter(handler, nil, nil)

	dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(models.DispatchResult{}, assert.AnError).Once()

	rec := postJSON(t, router, "/rpc/notifications/send",
		`{"type":"message","title":"Ana","body":"hola","toUserId":"u2","chatId":"u1","messageId":"m1"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTranslateOnDemandSuccess(t *testing.T) {
	translator := new(mocks.OnDemandTranslatorMock)
	handler := NewTranslationHandler(translator)
	router := setupRouter(nil, handler, nil)

	translator.On("TranslateOnDemand", mock.Anything, "hello", "es").
		Return(translation.OnDemandResult{
			OriginalText:   "hello",
			TranslatedText: "hola",
			SourceLanguage: "en",
			TargetLanguage: "es",
			WasTranslated:  true,
		}, nil).Once()

	rec := postJSON(t, router, "/rpc/translations/on-demand", `{"messageText":"hello","targetLanguage":"es"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp translation.OnDemandResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "hola", resp.TranslatedText)
	assert.True(t, resp.WasTranslated)
	translator.AssertExpectations(t)
}

func TestTranslateOnDemandMissingFields(t *testing.T) {
	translator := new(mocks.OnDemandTranslatorMock)
	handler := NewTranslationHandler(translator)
	router := setupRouter(nil, handler, nil)

	rec := postJSON(t, router, "/rpc/translations/on-demand", `{"messageText":"hello"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	translator.AssertNotCalled(t, "TranslateOnDemand", mock.Anything, mock.Anything, mock.Anything)
}

func TestTranslateOnDemandInternalError(t *testing.T) {
	translator := new(mocks.OnDemandTranslatorMock)
	handler := NewTranslationHandler(translator)
	router := setupRouter(nil, handler, nil)

	translator.On("TranslateOnDemand", mock.Anything, "hello", "es").
		Return(translation.OnDemandResult{}, assert.AnError).Once()

	rec := postJSON(t, router, "/rpc/translations/on-demand", `{"messageText":"hello","targetLanguage":"es"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, CodeInternal, resp["code"])
}

func TestAssistantChatSuccess(t *testing.T) {
	client := new(mocks.AssistantClientMock)
	handler := NewAssistantHandler(client)
	router := setupRouter(nil, nil, handler)

	client.On("Chat", mock.Anything, "hi", mock.Anything).
		Return(assistant.Reply{Response: "hello there", Success: true}, nil).Once()

	rec := postJSON(t, router, "/rpc/assistant/chat", `{"message":"hi"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "hello there", resp["response"])
}

func TestAssistantChatMissingMessage(t *testing.T) {
	client := new(mocks.AssistantClientMock)
	handler := NewAssistantHandler(client)
	router := setupRouter(nil, nil, handler)

	rec := postJSON(t, router, "/rpc/assistant/chat", `{}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	client.AssertNotCalled(t, "Chat", mock.Anything, mock.Anything, mock.Anything)
}

func TestAssistantChatNotConfigured(t *testing.T) {
	client := new(mocks.AssistantClientMock)
	handler := NewAssistantHandler(client)
	router := setupRouter(nil, nil, handler)

	client.On("Chat", mock.Anything, "hi", mock.Anything).
		Return(assistant.Reply{}, assistant.ErrNotConfigured).Once()

	rec := postJSON(t, router, "/rpc/assistant/chat", `{"message":"hi"}`)

	require.Equal(t, http.StatusPreconditionFailed, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, CodeFailedPrecondition, resp["code"])
}

func TestAssistantChatDowngradedFailure(t *testing.T) {
	client := new(mocks.AssistantClientMock)
	handler := NewAssistantHandler(client)
	router := setupRouter(nil, nil, handler)

	client.On("Chat", mock.Anything, "hi", mock.Anything).
		Return(assistant.Reply{Response: "Too many requests to the assistant. Please wait a moment.", Success: false, Err: "upstream status 429"}, nil).Once()

	rec := postJSON(t, router, "/rpc/assistant/chat", `{"message":"hi"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, false, resp["success"])
	assert.NotEmpty(t, resp["error"])
}
