package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-lms-api/internal/models"
	"github.com/noah-isme/campus-lms-api/pkg/jobs"
	"github.com/noah-isme/campus-lms-api/pkg/webhook"
)

// MentorRequestEventType names a lifecycle event.
type MentorRequestEventType string

const (
	MentorRequestCreated  MentorRequestEventType = "mentor_request.created"
	MentorRequestApproved MentorRequestEventType = "mentor_request.approved"
	MentorRequestRejected MentorRequestEventType = "mentor_request.rejected"
)

// MentorRequestEvent is emitted after a lifecycle write succeeds.
type MentorRequestEvent struct {
	Type       MentorRequestEventType
	Request    models.MentorChangeRequest
	ActorID    string
	OccurredAt time.Time
}

type webhookPoster interface {
	Post(ctx context.Context, msg webhook.Message) error
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// NotificationService posts mentor request events to the webhook through a
// background queue so request handlers never wait on the chat service.
type NotificationService struct {
	poster  webhookPoster
	queue   jobEnqueuer
	metrics *MetricsService
	logger  *zap.Logger
}

// NewNotificationService constructs the service. Call Attach before publishing.
func NewNotificationService(poster webhookPoster, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{poster: poster, metrics: metrics, logger: logger}
}

// Attach sets the queue events are dispatched through.
func (s *NotificationService) Attach(queue jobEnqueuer) {
	s.queue = queue
}

// Publish enqueues the event. Queue failures are logged and dropped.
func (s *NotificationService) Publish(ctx context.Context, event MentorRequestEvent) {
	if s == nil || s.queue == nil {
		return
	}
	job := jobs.Job{
		ID:      fmt.Sprintf("%s:%s", event.Type, event.Request.ID),
		Type:    string(event.Type),
		Payload: event,
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("mentor request event dropped", zap.String("job_id", job.ID), zap.Error(err))
	}
}

// Handle is the queue handler delivering one event.
func (s *NotificationService) Handle(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(MentorRequestEvent)
	if !ok {
		s.logger.Error("unexpected notification payload", zap.String("job_id", job.ID))
		return nil
	}
	err := s.poster.Post(ctx, webhook.Message{Embeds: []webhook.Embed{EventEmbed(event)}})
	s.metrics.RecordWebhookPost("mentor_requests", err)
	if rejectedByWebhook(err) {
		return jobs.Permanent(err)
	}
	return err
}

// rejectedByWebhook is true for 4xx responses other than 429, which will not
// succeed on a retry.
func rejectedByWebhook(err error) bool {
	var status *webhook.StatusError
	if !errors.As(err, &status) {
		return false
	}
	return status.StatusCode >= 400 && status.StatusCode < 500 && status.StatusCode != http.StatusTooManyRequests
}

// EventEmbed renders a lifecycle event.
func EventEmbed(event MentorRequestEvent) webhook.Embed {
	req := event.Request
	embed := webhook.Embed{
		Fields: []webhook.Field{
			{Name: "Student", Value: fmt.Sprintf("%s (%s)", req.StudentName, req.StudentEmail), Inline: true},
			{Name: "Requested Mentor", Value: req.RequestedMentorName, Inline: true},
		},
		Footer:    &webhook.Footer{Text: "Request " + req.ID},
		Timestamp: event.OccurredAt.UTC().Format(time.RFC3339),
	}
	if req.CurrentMentorName != nil {
		embed.Fields = append(embed.Fields, webhook.Field{Name: "Current Mentor", Value: *req.CurrentMentorName, Inline: true})
	}
	switch event.Type {
	case MentorRequestApproved:
		embed.Title = "Mentor Change Approved"
		embed.Color = webhook.ColorGreen
	case MentorRequestRejected:
		embed.Title = "Mentor Change Rejected"
		embed.Color = webhook.ColorRed
	default:
		embed.Title = "New Mentor Change Request"
		embed.Color = webhook.ColorBlue
		if req.Reason != nil {
			embed.Description = *req.Reason
		}
	}
	if req.AdminNotes != nil {
		embed.Fields = append(embed.Fields, webhook.Field{Name: "Admin Notes", Value: *req.AdminNotes})
	}
	return embed
}
