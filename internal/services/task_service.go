package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"taskmanager/internal/authz"
	"taskmanager/internal/database"
	"taskmanager/internal/logging"
	"taskmanager/internal/models"
	"taskmanager/internal/repositories"
)

const dashboardRecent = 10

// TaskService defines the interface for task-related business logic.
type TaskService interface {
	Create(ctx context.Context, actor authz.Principal, req models.CreateTaskRequest) (*models.Task, error)
	Duplicate(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	PostActivity(ctx context.Context, id primitive.ObjectID, actor authz.Principal, req models.ActivityRequest) error
	Dashboard(ctx context.Context, actor authz.Principal) (*models.Dashboard, error)
	List(ctx context.Context, filter models.TaskFilter) ([]models.TaskView, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.TaskView, error)
	AddSubTask(ctx context.Context, id primitive.ObjectID, req models.SubTaskRequest) error
	Update(ctx context.Context, id primitive.ObjectID, req models.UpdateTaskRequest) (*models.Task, error)
	Trash(ctx context.Context, id primitive.ObjectID) error
	DeleteRestore(ctx context.Context, action models.DeleteRestoreAction, id string) error
	SetDependencies(ctx context.Context, id primitive.ObjectID, deps []string) (*models.TaskView, error)
}

type taskService struct {
	tasks   repositories.TaskRepository
	users   repositories.UserRepository
	notices NoticeService
	tx      database.Transactor
	now     func() time.Time
}

// NewTaskService creates a new instance of TaskService. A nil transactor
// applies task and notice writes sequentially.
func NewTaskService(tasks repositories.TaskRepository, users repositories.UserRepository, notices NoticeService, tx database.Transactor) TaskService {
	if tx == nil {
		tx = database.NoTransaction{}
	}
	return &taskService{tasks: tasks, users: users, notices: notices, tx: tx, now: time.Now}
}

func (s *taskService) Create(ctx context.Context, actor authz.Principal, req models.CreateTaskRequest) (*models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	team, err := models.ParseIDs(req.Team)
	if err != nil {
		return nil, err
	}
	team = models.UniqueIDs(team)

	stage, priority, err := parseStagePriority(req.Stage, req.Priority)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	date, err := models.ParseDate(req.Date, now)
	if err != nil {
		return nil, err
	}

	text := AssignmentText(len(team), priority, date)
	task := &models.Task{
		ID:       primitive.NewObjectID(),
		Title:    title,
		Date:     date,
		Priority: priority,
		Stage:    stage,
		Team:     team,
		Assets:   req.Assets,
		Activities: []models.Activity{{
			ID:       primitive.NewObjectID(),
			Type:     models.ActivityAssigned,
			Activity: text,
			Date:     now,
			By:       actor.UserID,
		}},
	}
	notice := &models.Notice{Team: team, Text: text, Task: &task.ID}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.tasks.Create(ctx, task); err != nil {
			return err
		}
		return s.notices.Create(ctx, notice)
	})
	if err != nil {
		return nil, err
	}
	s.notices.Publish(notice)

	logging.Logger.Infof("[task][create][ok] id=%s by=%s team=%d", task.ID.Hex(), actor.UserID.Hex(), len(team))
	return task, nil
}

func (s *taskService) Duplicate(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	src, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, taskErr(err)
	}

	dup := &models.Task{
		ID:           primitive.NewObjectID(),
		Title:        src.Title + " - Duplicate",
		Date:         src.Date,
		Priority:     src.Priority,
		Stage:        src.Stage,
		Activities:   []models.Activity{},
		SubTasks:     cloneSubTasks(src.SubTasks),
		Assets:       append([]string{}, src.Assets...),
		Team:         append([]primitive.ObjectID{}, src.Team...),
		IsTrashed:    src.IsTrashed,
		Dependencies: append([]primitive.ObjectID{}, src.Dependencies...),
	}
	notice := &models.Notice{
		Team: dup.Team,
		Text: AssignmentText(len(dup.Team), dup.Priority, dup.Date),
		Task: &dup.ID,
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.tasks.Create(ctx, dup); err != nil {
			return err
		}
		return s.notices.Create(ctx, notice)
	})
	if err != nil {
		return nil, err
	}
	s.notices.Publish(notice)

	logging.Logger.Infof("[task][duplicate][ok] src=%s new=%s", src.ID.Hex(), dup.ID.Hex())
	return dup, nil
}

func (s *taskService) PostActivity(ctx context.Context, id primitive.ObjectID, actor authz.Principal, req models.ActivityRequest) error {
	typ, ok := models.ParseActivityType(req.Type)
	if !ok {
		return fmt.Errorf("%w: unknown activity type %q", ErrValidation, req.Type)
	}
	act := models.Activity{
		ID:       primitive.NewObjectID(),
		Type:     typ,
		Activity: req.Activity,
		Date:     s.now().UTC(),
		By:       actor.UserID,
	}
	return taskErr(s.tasks.PushActivity(ctx, id, act))
}

func (s *taskService) Dashboard(ctx context.Context, actor authz.Principal) (*models.Dashboard, error) {
	filter := models.TaskFilter{IsTrashed: false}
	if !actor.IsAdmin {
		uid := actor.UserID
		filter.Member = &uid
	}
	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views, err := s.populate(ctx, tasks)
	if err != nil {
		return nil, err
	}

	users := []models.User{}
	if actor.IsAdmin {
		users, err = s.users.ListRecentActive(ctx, dashboardRecent)
		if err != nil {
			return nil, err
		}
	}

	last := views
	if len(last) > dashboardRecent {
		last = last[:dashboardRecent]
	}
	return &models.Dashboard{
		TotalTasks: len(tasks),
		Last10Task: last,
		Users:      users,
		Tasks:      StageCounts(tasks),
		GraphData:  PriorityGraph(tasks),
	}, nil
}

// StageCounts groups tasks by stage.
func StageCounts(tasks []models.Task) map[models.TaskStage]int {
	out := make(map[models.TaskStage]int)
	for _, t := range tasks {
		out[t.Stage]++
	}
	return out
}

// PriorityGraph counts tasks per priority, highest first, skipping empty buckets.
func PriorityGraph(tasks []models.Task) []models.GraphPoint {
	counts := make(map[models.TaskPriority]int)
	for _, t := range tasks {
		counts[t.Priority]++
	}
	out := make([]models.GraphPoint, 0, len(counts))
	for _, p := range models.Priorities {
		if n := counts[p]; n > 0 {
			out = append(out, models.GraphPoint{Name: p, Total: n})
			delete(counts, p)
		}
	}
	// устаревшие значения приоритета из старых документов
	for p, n := range counts {
		out = append(out, models.GraphPoint{Name: p, Total: n})
	}
	return out
}

func (s *taskService) List(ctx context.Context, filter models.TaskFilter) ([]models.TaskView, error) {
	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, tasks)
}

func (s *taskService) Get(ctx context.Context, id primitive.ObjectID) (*models.TaskView, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, taskErr(err)
	}
	views, err := s.populate(ctx, []models.Task{*t})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *taskService) AddSubTask(ctx context.Context, id primitive.ObjectID, req models.SubTaskRequest) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	date, err := models.ParseDate(req.Date, s.now().UTC())
	if err != nil {
		return err
	}
	sub := models.SubTask{
		ID:    primitive.NewObjectID(),
		Title: title,
		Date:  date,
		Tag:   strings.TrimSpace(req.Tag),
	}
	return taskErr(s.tasks.PushSubTask(ctx, id, sub))
}

func (s *taskService) Update(ctx context.Context, id primitive.ObjectID, req models.UpdateTaskRequest) (*models.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, taskErr(err)
	}

	var added []primitive.ObjectID
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrValidation)
		}
		task.Title = title
	}
	if req.Date != nil {
		d, err := models.ParseDate(*req.Date, task.Date)
		if err != nil {
			return nil, err
		}
		task.Date = d
	}
	if req.Team != nil {
		team, err := models.ParseIDs(*req.Team)
		if err != nil {
			return nil, err
		}
		team = models.UniqueIDs(team)
		added = newMembers(task.Team, team)
		task.Team = team
	}
	if req.Stage != nil {
		st, ok := models.ParseStage(*req.Stage)
		if !ok {
			return nil, fmt.Errorf("%w: unknown stage %q", ErrValidation, *req.Stage)
		}
		task.Stage = st
	}
	if req.Priority != nil {
		p, ok := models.ParsePriority(*req.Priority)
		if !ok {
			return nil, fmt.Errorf("%w: unknown priority %q", ErrValidation, *req.Priority)
		}
		task.Priority = p
	}
	if req.Assets != nil {
		task.Assets = *req.Assets
	}

	var notice *models.Notice
	if len(added) > 0 {
		notice = &models.Notice{
			Team: added,
			Text: AssignmentText(len(task.Team), task.Priority, task.Date),
			Task: &task.ID,
		}
	}
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.tasks.Update(ctx, task); err != nil {
			return taskErr(err)
		}
		if notice != nil {
			return s.notices.Create(ctx, notice)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if notice != nil {
		s.notices.Publish(notice)
	}
	return task, nil
}

func (s *taskService) Trash(ctx context.Context, id primitive.ObjectID) error {
	return taskErr(s.tasks.SetTrashed(ctx, id, true))
}

func (s *taskService) DeleteRestore(ctx context.Context, action models.DeleteRestoreAction, rawID string) error {
	switch action {
	case models.ActionDelete:
		id, err := models.ParseID(rawID)
		if err != nil {
			return err
		}
		return taskErr(s.tasks.Delete(ctx, id))
	case models.ActionDeleteAll:
		n, err := s.tasks.DeleteTrashed(ctx)
		if err != nil {
			return err
		}
		logging.Logger.Infof("[task][deleteAll] removed=%d", n)
		return nil
	case models.ActionRestore:
		id, err := models.ParseID(rawID)
		if err != nil {
			return err
		}
		return taskErr(s.tasks.SetTrashed(ctx, id, false))
	case models.ActionRestoreAll:
		n, err := s.tasks.RestoreAll(ctx)
		if err != nil {
			return err
		}
		logging.Logger.Infof("[task][restoreAll] restored=%d", n)
		return nil
	default:
		return ErrInvalidAction
	}
}

func (s *taskService) SetDependencies(ctx context.Context, id primitive.ObjectID, raw []string) (*models.TaskView, error) {
	deps, err := models.ParseIDs(raw)
	if err != nil {
		return nil, ErrInvalidDependencies
	}
	deps = models.UniqueIDs(deps)
	for _, d := range deps {
		if d == id {
			return nil, ErrInvalidDependencies
		}
	}
	if len(deps) > 0 {
		n, err := s.tasks.CountByIDs(ctx, deps)
		if err != nil {
			return nil, err
		}
		if n != int64(len(deps)) {
			return nil, ErrInvalidDependencies
		}
	}

	task, err := s.tasks.SetDependencies(ctx, id, deps)
	if err != nil {
		return nil, taskErr(err)
	}
	views, err := s.populate(ctx, []models.Task{*task})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// populate resolves team members, activity authors and dependencies with
// two batched lookups.
func (s *taskService) populate(ctx context.Context, tasks []models.Task) ([]models.TaskView, error) {
	var userIDs, depIDs []primitive.ObjectID
	for _, t := range tasks {
		userIDs = append(userIDs, t.Team...)
		for _, a := range t.Activities {
			userIDs = append(userIDs, a.By)
		}
		depIDs = append(depIDs, t.Dependencies...)
	}

	users := map[primitive.ObjectID]models.User{}
	if len(userIDs) > 0 {
		list, err := s.users.FindByIDs(ctx, models.UniqueIDs(userIDs))
		if err != nil {
			return nil, err
		}
		for _, u := range list {
			users[u.ID] = u
		}
	}
	deps := map[primitive.ObjectID]string{}
	if len(depIDs) > 0 {
		list, err := s.tasks.FindByIDs(ctx, models.UniqueIDs(depIDs))
		if err != nil {
			return nil, err
		}
		for _, t := range list {
			deps[t.ID] = t.Title
		}
	}

	out := make([]models.TaskView, 0, len(tasks))
	for _, t := range tasks {
		v := models.TaskView{
			ID:           t.ID,
			Title:        t.Title,
			Date:         t.Date,
			Priority:     t.Priority,
			Stage:        t.Stage,
			Activities:   make([]models.PopulatedActivity, 0, len(t.Activities)),
			SubTasks:     t.SubTasks,
			Assets:       t.Assets,
			Team:         make([]models.UserSummary, 0, len(t.Team)),
			IsTrashed:    t.IsTrashed,
			Dependencies: make([]models.TaskRef, 0, len(t.Dependencies)),
			CreatedAt:    t.CreatedAt,
			UpdatedAt:    t.UpdatedAt,
		}
		if v.SubTasks == nil {
			v.SubTasks = []models.SubTask{}
		}
		if v.Assets == nil {
			v.Assets = []string{}
		}
		for _, uid := range t.Team {
			if u, ok := users[uid]; ok {
				v.Team = append(v.Team, u.Summary())
			}
		}
		for _, a := range t.Activities {
			pa := models.PopulatedActivity{ID: a.ID, Type: a.Type, Activity: a.Activity, Date: a.Date}
			if u, ok := users[a.By]; ok {
				pa.By = &models.UserRef{ID: u.ID, Name: u.Name}
			}
			v.Activities = append(v.Activities, pa)
		}
		for _, d := range t.Dependencies {
			if title, ok := deps[d]; ok {
				v.Dependencies = append(v.Dependencies, models.TaskRef{ID: d, Title: title})
			}
		}
		out = append(out, v)
	}
	return out, nil
}

func parseStagePriority(stage, priority string) (models.TaskStage, models.TaskPriority, error) {
	st, pr := models.StageTodo, models.PriorityNormal
	if strings.TrimSpace(stage) != "" {
		v, ok := models.ParseStage(stage)
		if !ok {
			return "", "", fmt.Errorf("%w: unknown stage %q", ErrValidation, stage)
		}
		st = v
	}
	if strings.TrimSpace(priority) != "" {
		v, ok := models.ParsePriority(priority)
		if !ok {
			return "", "", fmt.Errorf("%w: unknown priority %q", ErrValidation, priority)
		}
		pr = v
	}
	return st, pr, nil
}

func newMembers(before, after []primitive.ObjectID) []primitive.ObjectID {
	had := make(map[primitive.ObjectID]struct{}, len(before))
	for _, id := range before {
		had[id] = struct{}{}
	}
	var added []primitive.ObjectID
	for _, id := range after {
		if _, ok := had[id]; !ok {
			added = append(added, id)
		}
	}
	return added
}

func cloneSubTasks(in []models.SubTask) []models.SubTask {
	out := make([]models.SubTask, 0, len(in))
	for _, st := range in {
		st.ID = primitive.NewObjectID()
		out = append(out, st)
	}
	return out
}

func taskErr(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrTaskNotFound
	}
	return err
}
