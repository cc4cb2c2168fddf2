package push

import (
	"klink-backend/internal/models"
)

// Notification is the cross-platform visible alert.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// AndroidNotification selects the channel and sound on Android.
type AndroidNotification struct {
	ChannelID string `json:"channel_id"`
	Sound     string `json:"sound"`
	Priority  string `json:"notification_priority"`
}

// AndroidConfig is the Android-specific delivery configuration.
type AndroidConfig struct {
	Priority     string              `json:"priority"`
	Notification AndroidNotification `json:"notification"`
}

// ApsAlert is the visible banner on iOS.
type ApsAlert struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Aps is the apns payload body.
type Aps struct {
	Alert            *ApsAlert `json:"alert,omitempty"`
	Sound            string    `json:"sound"`
	Badge            *int      `json:"badge,omitempty"`
	ContentAvailable int       `json:"content-available,omitempty"`
}

// APNSPayload wraps the aps dictionary.
type APNSPayload struct {
	APS Aps `json:"aps"`
}

// APNSConfig is the iOS-specific delivery configuration.
type APNSConfig struct {
	Headers map[string]string `json:"headers"`
	Payload APNSPayload       `json:"payload"`
}

// Payload is one platform notification, shaped for the push transport's v1
// send schema.
type Payload struct {
	Notification *Notification     `json:"notification,omitempty"`
	Data         map[string]string `json:"data,omitempty"`
	Android      AndroidConfig     `json:"android"`
	APNS         APNSConfig        `json:"apns"`
}

// BuildPayload constructs the platform payload for one notification request.
// Pure function: no I/O, no clock.
//
// When the recipient is actively viewing the target chat and the event is a
// message, the visible alert is suppressed entirely but a sound still plays
// and the payload stays silently-processable so an open thread can update
// without a system banner. Calls always carry the silently-processable flag
// so the client can render the incoming-call UI from data alone.
func BuildPayload(req models.NotificationRequest, isActiveInChat bool) Payload {
	isCall := req.Type == models.NotificationTypeCall
	suppressAlert := isActiveInChat && req.Type == models.NotificationTypeMessage

	data := map[string]string{"type": req.Type}
	if req.ChatID != "" {
		data["chatId"] = req.ChatID
	}
	if req.MessageID != "" {
		data["messageId"] = req.MessageID
	}
	if req.SenderID != "" {
		data["senderId"] = req.SenderID
	}
	if len(req.Call) > 0 {
		data["call"] = string(req.Call)
	}

	payload := Payload{
		Data: data,
		Android: AndroidConfig{
			Priority: "high",
			Notification: AndroidNotification{
				ChannelID: channelFor(req.Type),
				Sound:     androidSoundFor(req.Type),
				Priority:  "high",
			},
		},
		APNS: APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: APNSPayload{
				APS: Aps{
					Sound: apnsSoundFor(req.Type),
				},
			},
		},
	}

	if !suppressAlert {
		payload.Notification = &Notification{Title: req.Title, Body: req.Body}
		payload.APNS.Payload.APS.Alert = &ApsAlert{Title: req.Title, Body: req.Body}
		badge := 1
		payload.APNS.Payload.APS.Badge = &badge
	}

	if suppressAlert || isCall {
		payload.APNS.Payload.APS.ContentAvailable = 1
	}

	return payload
}

func channelFor(notificationType string) string {
	if notificationType == models.NotificationTypeCall {
		return "calls_channel"
	}
	return "messages_channel"
}

func androidSoundFor(notificationType string) string {
	if notificationType == models.NotificationTypeCall {
		return "ringtone"
	}
	return "default"
}

func apnsSoundFor(notificationType string) string {
	if notificationType == models.NotificationTypeCall {
		return "ringtone.wav"
	}
	return "default"
}
