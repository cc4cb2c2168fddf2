package push_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"klink-backend/internal/mocks"
	"klink-backend/internal/models"
	"klink-backend/internal/push"
)

func messageRequest() models.NotificationRequest {
	return models.NotificationRequest{
		Type:      models.NotificationTypeMessage,
		Title:     "Ana",
		Body:      "hola",
		ToUserID:  "u2",
		ChatID:    "u1",
		MessageID: "m1",
	}
}

func TestValidate(t *testing.T) {
	assert.Error(t, push.Validate(models.NotificationRequest{Type: "message", Body: "x"}), "missing title")
	assert.Error(t, push.Validate(models.NotificationRequest{Type: "message", Title: "t", Body: "x"}), "missing target ids")
	assert.Error(t, push.Validate(models.NotificationRequest{Type: "call", Title: "t", Body: "x", DeviceToken: "tok"}), "missing call payload")
	assert.NoError(t, push.Validate(messageRequest()))
	assert.NoError(t, push.Validate(models.NotificationRequest{
		Type: "call", Title: "t", Body: "x", DeviceToken: "tok", Call: json.RawMessage(`{}`),
	}))
	assert.NoError(t, push.Validate(models.NotificationRequest{
		Type: "message", Title: "t", Body: "x", DeviceToken: "tok",
	}), "direct token replaces message target ids")
}

func TestDispatchPartialFailure(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	oracle := new(mocks.PresenceOracleMock)
	sender := new(mocks.SenderMock)

	users.On("GetPushTokens", mock.Anything, "u2").Return([]string{"t1", "t2", "t3"}, nil).Once()
	oracle.On("IsActiveInChat", mock.Anything, "u2", "u1").Return(false).Once()
	sender.On("Send", mock.Anything, "t1", mock.Anything).Return(nil).Once()
	sender.On("Send", mock.Anything, "t2", mock.Anything).Return(&push.SendError{Code: "UNREGISTERED"}).Once()
	sender.On("Send", mock.Anything, "t3", mock.Anything).Return(nil).Once()

	dispatcher := push.NewDispatcher(users, oracle, sender)
	result, err := dispatcher.Dispatch(context.Background(), messageRequest())

	require.NoError(t, err)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.FailureCount)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "t2", result.Failures[0].Token)
	assert.Equal(t, "UNREGISTERED", result.Failures[0].Code)

	users.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestDispatchNoTargets(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	users.On("GetPushTokens", mock.Anything, "u2").Return([]string(nil), nil).Once()

	dispatcher := push.NewDispatcher(users, new(mocks.PresenceOracleMock), new(mocks.SenderMock))
	_, err := dispatcher.Dispatch(context.Background(), messageRequest())

	assert.ErrorIs(t, err, push.ErrNoTargets)
}

func TestDispatchDirectTokenSkipsLookup(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	sender := new(mocks.SenderMock)
	sender.On("Send", mock.Anything, "direct-tok", mock.Anything).Return(nil).Once()

	req := models.NotificationRequest{
		Type:        models.NotificationTypeCall,
		Title:       "Ana",
		Body:        "Incoming call",
		DeviceToken: "direct-tok",
		Call:        json.RawMessage(`{}`),
	}

	dispatcher := push.NewDispatcher(users, new(mocks.PresenceOracleMock), sender)
	result, err := dispatcher.Dispatch(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	users.AssertNotCalled(t, "GetPushTokens", mock.Anything, mock.Anything)
	sender.AssertExpectations(t)
}

func TestDispatchSuppressedPayloadWhenActive(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	oracle := new(mocks.PresenceOracleMock)
	sender := new(mocks.SenderMock)

	users.On("GetPushTokens", mock.Anything, "u2").Return([]string{"t1"}, nil).Once()
	oracle.On("IsActiveInChat", mock.Anything, "u2", "u1").Return(true).Once()
	sender.On("Send", mock.Anything, "t1", mock.MatchedBy(func(p push.Payload) bool {
		return p.Notification == nil && p.APNS.Payload.APS.ContentAvailable == 1
	})).Return(nil).Once()

	dispatcher := push.NewDispatcher(users, oracle, sender)
	result, err := dispatcher.Dispatch(context.Background(), messageRequest())

	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	oracle.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "UNREGISTERED", push.ErrorCode(&push.SendError{Code: "UNREGISTERED"}))
	assert.Equal(t, "INTERNAL", push.ErrorCode(assert.AnError))
}
