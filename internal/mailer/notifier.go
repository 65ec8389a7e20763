package mailer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"studio-space-backend/internal/logger"
	"studio-space-backend/internal/models"
)

const sendTimeout = 30 * time.Second

// Notifier turns account and board events into emails, honouring each
// user's preferences.
type Notifier struct {
	sender      Sender
	frontendURL string
	wg          sync.WaitGroup
}

func NewNotifier(sender Sender, frontendURL string) *Notifier {
	return &Notifier{sender: sender, frontendURL: frontendURL}
}

// Wait blocks until queued emails have been handed to the sender.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) async(kind string, user *models.User, subject string, m message) {
	if user == nil {
		return
	}
	to := user.Email
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := n.send(ctx, to, subject, m); err != nil {
			logger.Log.WithError(err).WithFields(logrus.Fields{"kind": kind, "to": to}).Warn("failed to send email")
		}
	}()
}

func (n *Notifier) send(ctx context.Context, to, subject string, m message) error {
	body, err := render(m)
	if err != nil {
		return fmt.Errorf("render email: %w", err)
	}
	return n.sender.Send(ctx, to, subject, body)
}

func (n *Notifier) Welcome(user *models.User) {
	n.async("welcome", user, "Welcome to Studio Space!", message{
		Name: user.Name,
		Paragraphs: []string{
			"Welcome to Studio Space! We're excited to have you join our community of creators.",
			"Start building your aesthetic identity today by creating your first moodboard.",
		},
		Link:     n.frontendURL + "/dashboard",
		LinkText: "Create a moodboard",
		SignOff:  "Happy creating!",
	})
}

func (n *Notifier) BoardCreated(user *models.User, board *models.Board) {
	if user == nil || !user.Preferences.EmailNotifications {
		return
	}
	n.async("board_created", user, fmt.Sprintf("Your moodboard %q has been created!", board.Title), message{
		Name: user.Name,
		Paragraphs: []string{
			fmt.Sprintf("Great news! Your moodboard %q has been successfully created and saved.", board.Title),
			"You can view and edit it anytime from your dashboard.",
		},
		Link:     fmt.Sprintf("%s/board/%s", n.frontendURL, board.ID),
		LinkText: "Open your board",
		SignOff:  "Keep creating!",
	})
}

func (n *Notifier) PrivacyChanged(user *models.User, isPublic bool) {
	if user == nil || !user.Preferences.EmailNotifications {
		return
	}
	status, detail := "private", "Your profile is now private and only visible to you."
	if isPublic {
		status, detail = "public", "Other users can now see your profile and public moodboards."
	}
	n.async("privacy_changed", user, "Your profile is now "+status, message{
		Name: user.Name,
		Paragraphs: []string{
			"Your profile visibility has been changed to " + status + ".",
			detail,
			"You can change this anytime in your account settings.",
		},
		SignOff: "Best,",
	})
}

// Newsletter sends synchronously; it is driven from the CLI. Users who have
// not opted in are skipped and reported as not sent.
func (n *Notifier) Newsletter(ctx context.Context, user *models.User, trending []string) (bool, error) {
	if user == nil || !user.Preferences.Newsletter {
		return false, nil
	}
	err := n.send(ctx, user.Email, "Your Weekly Inspiration from Studio Space", message{
		Name:       user.Name,
		Paragraphs: []string{"Here's your weekly dose of aesthetic inspiration!", "Check out the latest moodboards from our community."},
		Tags:       trending,
		Link:       n.frontendURL + "/explore",
		LinkText:   "Explore boards",
		SignOff:    "Create something beautiful today!",
	})
	return err == nil, err
}
