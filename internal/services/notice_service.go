package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"taskmanager/internal/logging"
	"taskmanager/internal/models"
	"taskmanager/internal/repositories"
)

const ReadAll = "all"

type NoticeService interface {
	// Create persists the notice using ctx, so it joins a surrounding transaction.
	Create(ctx context.Context, notice *models.Notice) error
	Publish(notice *models.Notice)
	ListUnread(ctx context.Context, userID primitive.ObjectID) ([]models.NoticeView, error)
	MarkRead(ctx context.Context, userID primitive.ObjectID, readType, id string) error
}

type noticeService struct {
	notices  repositories.NoticeRepository
	tasks    repositories.TaskRepository
	notifier *Notifier
}

func NewNoticeService(notices repositories.NoticeRepository, tasks repositories.TaskRepository, notifier *Notifier) NoticeService {
	return &noticeService{notices: notices, tasks: tasks, notifier: notifier}
}

// AssignmentText builds the notice sent to a task's team.
func AssignmentText(teamSize int, priority models.TaskPriority, date time.Time) string {
	var b strings.Builder
	b.WriteString("New task has been assigned to you")
	if teamSize > 1 {
		fmt.Fprintf(&b, " and %d others.", teamSize-1)
	}
	fmt.Fprintf(&b, " The task priority is set at %s priority, so check and act accordingly. The task date is %s. Thank you!",
		priority, date.Format("Mon Jan 02 2006"))
	return b.String()
}

func (s *noticeService) Create(ctx context.Context, notice *models.Notice) error {
	if strings.TrimSpace(notice.Text) == "" {
		return fmt.Errorf("%w: notice text is required", ErrValidation)
	}
	return s.notices.Create(ctx, notice)
}

func (s *noticeService) Publish(notice *models.Notice) {
	s.notifier.Publish(notice)
}

func (s *noticeService) ListUnread(ctx context.Context, userID primitive.ObjectID) ([]models.NoticeView, error) {
	list, err := s.notices.ListUnread(ctx, userID)
	if err != nil {
		return nil, err
	}

	var taskIDs []primitive.ObjectID
	for _, n := range list {
		if n.Task != nil {
			taskIDs = append(taskIDs, *n.Task)
		}
	}
	titles := map[primitive.ObjectID]string{}
	if len(taskIDs) > 0 {
		tasks, err := s.tasks.FindByIDs(ctx, models.UniqueIDs(taskIDs))
		if err != nil {
			return nil, err
		}
		for _, t := range tasks {
			titles[t.ID] = t.Title
		}
	}

	out := make([]models.NoticeView, 0, len(list))
	for _, n := range list {
		v := models.NoticeView{
			ID:        n.ID,
			Team:      n.Team,
			Text:      n.Text,
			NotiType:  n.NotiType,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
			UpdatedAt: n.UpdatedAt,
		}
		if n.Task != nil {
			if title, ok := titles[*n.Task]; ok {
				v.Task = &models.TaskRef{ID: *n.Task, Title: title}
			}
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *noticeService) MarkRead(ctx context.Context, userID primitive.ObjectID, readType, id string) error {
	if readType == ReadAll {
		n, err := s.notices.MarkAllRead(ctx, userID)
		if err != nil {
			return err
		}
		logging.Logger.Debugf("[notice][read] all user=%s modified=%d", userID.Hex(), n)
		return nil
	}
	nid, err := models.ParseID(id)
	if err != nil {
		return err
	}
	n, err := s.notices.MarkRead(ctx, nid, userID)
	if err != nil {
		return err
	}
	logging.Logger.Debugf("[notice][read] id=%s user=%s modified=%d", nid.Hex(), userID.Hex(), n)
	return nil
}
