package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/notifications/model"
)

type fakeRepo struct {
	inbox       []model.Notification
	subs        []model.PushSubscription
	subsErr     error
	deactivated []string
}

func (r *fakeRepo) InsertNotification(ctx context.Context, n *model.Notification) error {
	r.inbox = append(r.inbox, *n)
	return nil
}

func (r *fakeRepo) ActiveSubscriptions(ctx context.Context, email string) ([]model.PushSubscription, error) {
	return r.subs, r.subsErr
}

func (r *fakeRepo) DeactivateSubscription(ctx context.Context, endpoint string) error {
	r.deactivated = append(r.deactivated, endpoint)
	return nil
}

func pushResponse(status int) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(""))}
}

func subscription(endpoint string) model.PushSubscription {
	return model.PushSubscription{
		UserEmail: "priya@msec.edu.in",
		Endpoint:  endpoint,
		Keys:      model.SubscriptionKeys{P256dh: "p256", Auth: "auth"},
		Active:    true,
	}
}

func newPushFixture(repo *fakeRepo, send SendFunc) *PushService {
	return NewPushService(repo, "pub", "priv", "mailto:admin@msec.edu.in").WithSender(send)
}

func TestNotifyUserPersistsAndPushes(t *testing.T) {
	repo := &fakeRepo{subs: []model.PushSubscription{subscription("https://push/a"), subscription("https://push/b")}}
	var sent []string
	svc := newPushFixture(repo, func(message []byte, s *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
		sent = append(sent, s.Endpoint)
		assert.Contains(t, string(message), "Marksheet dispatched")
		return pushResponse(http.StatusCreated), nil
	})

	attempted := svc.NotifyUser(context.Background(), "priya@msec.edu.in", "Marksheet dispatched", "delivered", "/staff/marksheets/1")

	assert.True(t, attempted)
	assert.Equal(t, []string{"https://push/a", "https://push/b"}, sent)
	require.Len(t, repo.inbox, 1)
	assert.Equal(t, "priya@msec.edu.in", repo.inbox[0].UserEmail)
	assert.Empty(t, repo.deactivated)
}

func TestNotifyUserDeactivatesGoneEndpoints(t *testing.T) {
	repo := &fakeRepo{subs: []model.PushSubscription{subscription("https://push/gone"), subscription("https://push/live")}}
	svc := newPushFixture(repo, func(message []byte, s *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
		if s.Endpoint == "https://push/gone" {
			return pushResponse(http.StatusGone), nil
		}
		return pushResponse(http.StatusCreated), nil
	})

	attempted := svc.NotifyUser(context.Background(), "priya@msec.edu.in", "t", "b", "")

	assert.True(t, attempted)
	assert.Equal(t, []string{"https://push/gone"}, repo.deactivated)
}

func TestNotifyUserNeverFailsTheCaller(t *testing.T) {
	repo := &fakeRepo{subs: []model.PushSubscription{subscription("https://push/a")}}
	svc := newPushFixture(repo, func(message []byte, s *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
		return nil, errors.New("tls handshake failed")
	})

	attempted := svc.NotifyUser(context.Background(), "priya@msec.edu.in", "t", "b", "")

	assert.False(t, attempted, "a failed push is reported as not attempted")
	assert.Len(t, repo.inbox, 1, "the inbox copy survives a push failure")
}

func TestNotifyUserWithoutSubscriptions(t *testing.T) {
	repo := &fakeRepo{}
	svc := newPushFixture(repo, func(message []byte, s *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
		t.Fatal("send must not be called")
		return nil, nil
	})

	attempted := svc.NotifyUser(context.Background(), "priya@msec.edu.in", "t", "b", "")
	assert.False(t, attempted)
	assert.Len(t, repo.inbox, 1)
}

func TestNotifyUserEmptyEmail(t *testing.T) {
	repo := &fakeRepo{}
	svc := newPushFixture(repo, nil)

	assert.False(t, svc.NotifyUser(context.Background(), "", "t", "b", ""))
	assert.Empty(t, repo.inbox)
}

func TestNotifyUserWithoutVAPIDKeys(t *testing.T) {
	repo := &fakeRepo{subs: []model.PushSubscription{subscription("https://push/a")}}
	svc := NewPushService(repo, "", "", "mailto:admin@msec.edu.in").WithSender(func(message []byte, s *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
		t.Fatal("send must not be called without keys")
		return nil, nil
	})

	assert.False(t, svc.NotifyUser(context.Background(), "priya@msec.edu.in", "t", "b", ""))
	assert.Len(t, repo.inbox, 1, "inbox delivery does not depend on push being configured")
}
