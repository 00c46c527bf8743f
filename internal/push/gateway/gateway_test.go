package gateway

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskflow-backend/internal/push/domain"
	"taskflow-backend/pkg/config"
	"taskflow-backend/pkg/fcm"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func browserKeys(t *testing.T) domain.Keys {
	t.Helper()
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)
	return domain.Keys{
		P256dh: base64.RawURLEncoding.EncodeToString(priv.PublicKey().Bytes()),
		Auth:   base64.RawURLEncoding.EncodeToString(auth),
	}
}

func newWebPush(t *testing.T, timeout time.Duration) *WebPushGateway {
	t.Helper()
	privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)
	g, err := NewWebPushGateway(WebPushConfig{
		Subject:    "mailto:ops@example.com",
		PublicKey:  publicKey,
		PrivateKey: privateKey,
		TTL:        time.Hour,
		Timeout:    timeout,
	}, nil)
	require.NoError(t, err)
	return g
}

func TestNotification_JSONShape(t *testing.T) {
	raw, err := json.Marshal(Notification{Title: "Task Reminder", Body: `Your task "x" is due in 30 minutes!`})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Task Reminder","body":"Your task \"x\" is due in 30 minutes!"}`, string(raw))
}

func TestWebPush_ClassifiesStatus(t *testing.T) {
	cases := []struct {
		status  int
		outcome Outcome
	}{
		{http.StatusCreated, Delivered},
		{http.StatusOK, Delivered},
		{http.StatusGone, PermanentFailure},
		{http.StatusNotFound, PermanentFailure},
		{http.StatusTooManyRequests, TransientFailure},
		{http.StatusInternalServerError, TransientFailure},
		{http.StatusBadRequest, TransientFailure},
	}

	g := newWebPush(t, time.Second)
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			var gotTTL, gotEncoding, gotAuth string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotTTL = r.Header.Get("TTL")
				gotEncoding = r.Header.Get("Content-Encoding")
				gotAuth = r.Header.Get("Authorization")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte("body"))
			}))
			defer srv.Close()

			res := g.Send(context.Background(), domain.Subscription{
				Endpoint: srv.URL + "/push/abc",
				Keys:     browserKeys(t),
			}, Notification{Title: "Task Reminder", Body: "soon"})

			assert.Equal(t, tc.outcome, res.Outcome)
			assert.Equal(t, tc.status, res.StatusCode)
			if tc.outcome == Delivered {
				assert.NoError(t, res.Err)
			} else {
				assert.Error(t, res.Err)
			}
			assert.Equal(t, "3600", gotTTL)
			assert.Equal(t, "aes128gcm", gotEncoding)
			assert.True(t, strings.HasPrefix(gotAuth, "vapid "), gotAuth)
		})
	}
}

func TestWebPush_TimeoutIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	g := newWebPush(t, 50*time.Millisecond)
	start := time.Now()
	res := g.Send(context.Background(), domain.Subscription{Endpoint: srv.URL, Keys: browserKeys(t)}, Notification{Title: "t"})

	assert.Equal(t, TransientFailure, res.Outcome)
	assert.Zero(t, res.StatusCode)
	assert.Error(t, res.Err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestWebPush_UnreachableIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res := newWebPush(t, time.Second).Send(context.Background(), domain.Subscription{Endpoint: url, Keys: browserKeys(t)}, Notification{Title: "t"})
	assert.Equal(t, TransientFailure, res.Outcome)
}

func TestNewWebPushGateway_RequiresKeys(t *testing.T) {
	_, err := NewWebPushGateway(WebPushConfig{Subject: "mailto:x@example.com"}, nil)
	assert.Error(t, err)
}

type fakeDeviceSender struct {
	token string
	data  fcm.NotificationData
	err   error
}

func (f *fakeDeviceSender) SendToDevice(_ context.Context, token string, n fcm.NotificationData) (string, error) {
	f.token = token
	f.data = n
	return "id", f.err
}

var errGone = errors.New("registration token is not registered")

func newFCM(sender *fakeDeviceSender) *FCMGateway {
	g := NewFCMGateway(sender, time.Second, time.Hour, nil)
	g.permanent = func(err error) bool { return errors.Is(err, errGone) }
	return g
}

func TestFCM_DerivesTokenFromEndpoint(t *testing.T) {
	sender := &fakeDeviceSender{}
	res := newFCM(sender).Send(context.Background(), domain.Subscription{
		Endpoint: "https://fcm.googleapis.com/fcm/send/dGVzdC10b2tlbg:APA91b",
	}, Notification{Title: "Task Reminder", Body: "soon"})

	assert.Equal(t, Delivered, res.Outcome)
	assert.Equal(t, "dGVzdC10b2tlbg:APA91b", sender.token)
	assert.Equal(t, "Task Reminder", sender.data.Title)
	assert.Equal(t, "3600", sender.data.TTL)
}

func TestFCM_ClassifiesErrors(t *testing.T) {
	sub := domain.Subscription{Endpoint: "https://fcm.googleapis.com/fcm/send/tok"}

	res := newFCM(&fakeDeviceSender{err: errGone}).Send(context.Background(), sub, Notification{})
	assert.Equal(t, PermanentFailure, res.Outcome)

	res = newFCM(&fakeDeviceSender{err: errors.New("unavailable")}).Send(context.Background(), sub, Notification{})
	assert.Equal(t, TransientFailure, res.Outcome)
}

func TestFCM_ForeignEndpointIsKept(t *testing.T) {
	sender := &fakeDeviceSender{}
	res := newFCM(sender).Send(context.Background(), domain.Subscription{
		Endpoint: "https://updates.push.services.mozilla.com/wpush/v2/abc",
	}, Notification{})

	assert.Equal(t, TransientFailure, res.Outcome)
	assert.ErrorIs(t, res.Err, errNotFCMEndpoint)
	assert.Empty(t, sender.token)
}

func TestNewFromConfig(t *testing.T) {
	privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)

	g, err := NewFromConfig(context.Background(), config.PushConfig{
		Provider: "webpush", VAPIDPublicKey: publicKey, VAPIDPrivateKey: privateKey, Timeout: time.Second,
	}, nil)
	require.NoError(t, err)
	assert.IsType(t, &WebPushGateway{}, g)

	_, err = NewFromConfig(context.Background(), config.PushConfig{Provider: "carrier-pigeon"}, nil)
	assert.Error(t, err)
}
