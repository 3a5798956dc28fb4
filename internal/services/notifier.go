package services

import (
	"context"
	"sync"
	"time"

	"taskmanager/internal/logging"
	"taskmanager/internal/models"
	"taskmanager/internal/repositories"
)

const deliveryTimeout = 15 * time.Second

// NoticeSink delivers a stored notice to an outside channel.
type NoticeSink interface {
	Name() string
	Deliver(ctx context.Context, notice *models.Notice, recipients []models.User) error
}

// Notifier fans a persisted notice out to every sink in the background.
// Sink failures are logged and never reach the caller.
type Notifier struct {
	users repositories.UserRepository
	sinks []NoticeSink
	wg    sync.WaitGroup
}

func NewNotifier(users repositories.UserRepository, sinks ...NoticeSink) *Notifier {
	return &Notifier{users: users, sinks: sinks}
}

func (n *Notifier) AddSink(s NoticeSink) {
	n.sinks = append(n.sinks, s)
}

func (n *Notifier) Publish(notice *models.Notice) {
	if n == nil || len(n.sinks) == 0 || notice == nil {
		return
	}
	snapshot := *notice
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()
		n.deliver(ctx, &snapshot)
	}()
}

// Go runs fn in the background and tracks it for Wait. A nil Notifier runs
// fn inline.
func (n *Notifier) Go(name string, fn func(ctx context.Context) error) {
	run := func() {
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			logging.Logger.Warnf("[%s][err] %v", name, err)
		}
	}
	if n == nil {
		run()
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		run()
	}()
}

// Wait blocks until in-flight deliveries and jobs started with Go finish.
func (n *Notifier) Wait() {
	if n != nil {
		n.wg.Wait()
	}
}

func (n *Notifier) deliver(ctx context.Context, notice *models.Notice) {
	users, err := n.users.FindByIDs(ctx, notice.Team)
	if err != nil {
		logging.Logger.Errorf("[notice][deliver][err] load recipients notice=%s: %v", notice.ID.Hex(), err)
		return
	}
	recipients := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.IsActive {
			recipients = append(recipients, u)
		}
	}
	for _, s := range n.sinks {
		if err := s.Deliver(ctx, notice, recipients); err != nil {
			logging.Logger.Warnf("[notice][deliver][%s][err] notice=%s: %v", s.Name(), notice.ID.Hex(), err)
			continue
		}
		logging.Logger.Debugf("[notice][deliver][%s][ok] notice=%s recipients=%d", s.Name(), notice.ID.Hex(), len(recipients))
	}
}

// EmailSink mails the notice text to recipients.
type EmailSink struct {
	Email EmailService
}

func (s EmailSink) Name() string { return "email" }

func (s EmailSink) Deliver(_ context.Context, notice *models.Notice, recipients []models.User) error {
	to := make([]string, 0, len(recipients))
	for _, u := range recipients {
		if u.Email != "" {
			to = append(to, u.Email)
		}
	}
	return s.Email.SendNoticeEmail(to, notice.Text)
}
