package presence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"klink-backend/internal/mocks"
	"klink-backend/internal/presence"
)

func TestIsActiveInChatMatch(t *testing.T) {
	store := new(mocks.PresenceStoreMock)
	store.On("GetPresence", mock.Anything, "u1").Return(true, "u2", nil).Once()

	oracle := presence.NewOracle(store)
	assert.True(t, oracle.IsActiveInChat(context.Background(), "u1", "u2"))
	store.AssertExpectations(t)
}

func TestIsActiveInChatOfflineUser(t *testing.T) {
	store := new(mocks.PresenceStoreMock)
	store.On("GetPresence", mock.Anything, "u1").Return(false, "u2", nil).Once()

	oracle := presence.NewOracle(store)
	assert.False(t, oracle.IsActiveInChat(context.Background(), "u1", "u2"))
}

func TestIsActiveInChatDifferentChat(t *testing.T) {
	store := new(mocks.PresenceStoreMock)
	store.On("GetPresence", mock.Anything, "u1").Return(true, "u3", nil).Once()

	oracle := presence.NewOracle(store)
	assert.False(t, oracle.IsActiveInChat(context.Background(), "u1", "u2"))
}

func TestIsActiveInChatExactStringEquality(t *testing.T) {
	// No aliasing or normalization: "U2" is not "u2".
	store := new(mocks.PresenceStoreMock)
	store.On("GetPresence", mock.Anything, "u1").Return(true, "U2", nil).Once()

	oracle := presence.NewOracle(store)
	assert.False(t, oracle.IsActiveInChat(context.Background(), "u1", "u2"))
}

func TestIsActiveInChatReadFailureFailsOpen(t *testing.T) {
	// A failed read must show the notification, never drop it.
	store := new(mocks.PresenceStoreMock)
	store.On("GetPresence", mock.Anything, "u1").Return(false, "", assert.AnError).Once()

	oracle := presence.NewOracle(store)
	assert.False(t, oracle.IsActiveInChat(context.Background(), "u1", "u2"))
}
