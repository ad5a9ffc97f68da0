package service

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/notifications/model"
)

// Repo is the subscription/inbox slice the gateway needs.
type Repo interface {
	InsertNotification(ctx context.Context, n *model.Notification) error
	ActiveSubscriptions(ctx context.Context, email string) ([]model.PushSubscription, error)
	DeactivateSubscription(ctx context.Context, endpoint string) error
}

// SendFunc matches webpush.SendNotification; injectable for tests.
type SendFunc func(message []byte, s *webpush.Subscription, options *webpush.Options) (*http.Response, error)

// PushService is the notification gateway. Its contract is strictly
// best-effort: NotifyUser never returns an error, only whether any push
// delivery was attempted, so callers need no defensive error handling.
type PushService struct {
	repo       Repo
	send       SendFunc
	publicKey  string
	privateKey string
	subscriber string
}

func NewPushService(repo Repo, publicKey, privateKey, subscriber string) *PushService {
	return &PushService{
		repo:       repo,
		send:       webpush.SendNotification,
		publicKey:  publicKey,
		privateKey: privateKey,
		subscriber: subscriber,
	}
}

// WithSender replaces the webpush call, for tests.
func (s *PushService) WithSender(send SendFunc) *PushService {
	s.send = send
	return s
}

type pushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Link  string `json:"link,omitempty"`
}

// NotifyUser persists an inbox copy and pushes to every active endpoint of
// the user. Gone endpoints (404/410) are deactivated in passing.
func (s *PushService) NotifyUser(ctx context.Context, email, title, body, link string) bool {
	if email == "" {
		return false
	}

	if err := s.repo.InsertNotification(ctx, &model.Notification{
		UserEmail: email,
		Title:     title,
		Body:      body,
		Link:      link,
	}); err != nil {
		log.Printf("[PUSH] inbox persist failed for %s: %v", email, err)
	}

	if s.publicKey == "" || s.privateKey == "" {
		return false
	}

	subs, err := s.repo.ActiveSubscriptions(ctx, email)
	if err != nil {
		log.Printf("[PUSH] subscription lookup failed for %s: %v", email, err)
		return false
	}
	if len(subs) == 0 {
		return false
	}

	payload, err := json.Marshal(pushPayload{Title: title, Body: body, Link: link})
	if err != nil {
		log.Printf("[PUSH] payload marshal failed: %v", err)
		return false
	}

	attempted := false
	for _, sub := range subs {
		resp, err := s.send(payload, &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.Keys.P256dh,
				Auth:   sub.Keys.Auth,
			},
		}, &webpush.Options{
			Subscriber:      s.subscriber,
			VAPIDPublicKey:  s.publicKey,
			VAPIDPrivateKey: s.privateKey,
			TTL:             3600,
		})
		if err != nil {
			log.Printf("[PUSH] push to %s failed: %v", email, err)
			continue
		}
		attempted = true
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
			if derr := s.repo.DeactivateSubscription(ctx, sub.Endpoint); derr != nil {
				log.Printf("[PUSH] deactivate failed for %s: %v", sub.Endpoint, derr)
			}
		}
		resp.Body.Close()
	}
	return attempted
}
