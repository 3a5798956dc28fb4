// internal/models/task.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskStage defines the board column a task sits in.
type TaskStage string

const (
	StageTodo       TaskStage = "todo"
	StageInProgress TaskStage = "in progress"
	StageCompleted  TaskStage = "completed"
)

type TaskPriority string

const (
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityNormal TaskPriority = "normal"
	PriorityLow    TaskPriority = "low"
)

type ActivityType string

const (
	ActivityAssigned   ActivityType = "assigned"
	ActivityStarted    ActivityType = "started"
	ActivityInProgress ActivityType = "in progress"
	ActivityBug        ActivityType = "bug"
	ActivityCompleted  ActivityType = "completed"
	ActivityCommented  ActivityType = "commented"
)

var (
	Stages        = []TaskStage{StageTodo, StageInProgress, StageCompleted}
	Priorities    = []TaskPriority{PriorityHigh, PriorityMedium, PriorityNormal, PriorityLow}
	ActivityTypes = []ActivityType{ActivityAssigned, ActivityStarted, ActivityInProgress, ActivityBug, ActivityCompleted, ActivityCommented}
)

func ParseStage(s string) (TaskStage, bool) {
	v := TaskStage(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range Stages {
		if st == v {
			return v, true
		}
	}
	return "", false
}

func ParsePriority(s string) (TaskPriority, bool) {
	v := TaskPriority(strings.ToLower(strings.TrimSpace(s)))
	for _, p := range Priorities {
		if p == v {
			return v, true
		}
	}
	return "", false
}

func ParseActivityType(s string) (ActivityType, bool) {
	v := ActivityType(strings.ToLower(strings.TrimSpace(s)))
	for _, a := range ActivityTypes {
		if a == v {
			return v, true
		}
	}
	return "", false
}

type Activity struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	Type     ActivityType       `bson:"type" json:"type"`
	Activity string             `bson:"activity" json:"activity"`
	Date     time.Time          `bson:"date" json:"date"`
	By       primitive.ObjectID `bson:"by" json:"by"`
}

type SubTask struct {
	ID    primitive.ObjectID `bson:"_id" json:"_id"`
	Title string             `bson:"title" json:"title"`
	Date  time.Time          `bson:"date" json:"date"`
	Tag   string             `bson:"tag" json:"tag"`
}

// Task represents a task document in the tasks collection.
type Task struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Title        string               `bson:"title" json:"title"`
	Date         time.Time            `bson:"date" json:"date"`
	Priority     TaskPriority         `bson:"priority" json:"priority"`
	Stage        TaskStage            `bson:"stage" json:"stage"`
	Activities   []Activity           `bson:"activities" json:"activities"`
	SubTasks     []SubTask            `bson:"subTasks" json:"subTasks"`
	Assets       []string             `bson:"assets" json:"assets"`
	Team         []primitive.ObjectID `bson:"team" json:"team"`
	IsTrashed    bool                 `bson:"isTrashed" json:"isTrashed"`
	Dependencies []primitive.ObjectID `bson:"dependencies" json:"dependencies"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// Normalize replaces nil slices with empty ones so that array operators
// ($push, $addToSet) keep working on the stored document.
func (t *Task) Normalize() {
	if t.Activities == nil {
		t.Activities = []Activity{}
	}
	if t.SubTasks == nil {
		t.SubTasks = []SubTask{}
	}
	if t.Assets == nil {
		t.Assets = []string{}
	}
	if t.Team == nil {
		t.Team = []primitive.ObjectID{}
	}
	if t.Dependencies == nil {
		t.Dependencies = []primitive.ObjectID{}
	}
}

// TaskFilter defines the available parameters for listing tasks.
type TaskFilter struct {
	Stage     *TaskStage
	IsTrashed bool
	Member    *primitive.ObjectID
}

// PopulatedActivity carries the actor's name instead of a bare id.
type PopulatedActivity struct {
	ID       primitive.ObjectID `json:"_id"`
	Type     ActivityType       `json:"type"`
	Activity string             `json:"activity"`
	Date     time.Time          `json:"date"`
	By       *UserRef           `json:"by"`
}

type UserRef struct {
	ID   primitive.ObjectID `json:"_id"`
	Name string             `json:"name"`
}

type TaskRef struct {
	ID    primitive.ObjectID `json:"_id"`
	Title string             `json:"title"`
}

// TaskView is a task with its references resolved for API responses.
type TaskView struct {
	ID           primitive.ObjectID  `json:"_id"`
	Title        string              `json:"title"`
	Date         time.Time           `json:"date"`
	Priority     TaskPriority        `json:"priority"`
	Stage        TaskStage           `json:"stage"`
	Activities   []PopulatedActivity `json:"activities"`
	SubTasks     []SubTask           `json:"subTasks"`
	Assets       []string            `json:"assets"`
	Team         []UserSummary       `json:"team"`
	IsTrashed    bool                `json:"isTrashed"`
	Dependencies []TaskRef           `json:"dependencies"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

type CreateTaskRequest struct {
	Title    string   `json:"title" binding:"required"`
	Team     []string `json:"team"`
	Stage    string   `json:"stage" binding:"omitempty,stage"`
	Date     string   `json:"date"`
	Priority string   `json:"priority" binding:"omitempty,priority"`
	Assets   []string `json:"assets"`
}

// UpdateTaskRequest uses pointers so that only provided fields overwrite the task.
type UpdateTaskRequest struct {
	Title    *string   `json:"title"`
	Date     *string   `json:"date"`
	Team     *[]string `json:"team"`
	Stage    *string   `json:"stage" binding:"omitempty,stage"`
	Priority *string   `json:"priority" binding:"omitempty,priority"`
	Assets   *[]string `json:"assets"`
}

type ActivityRequest struct {
	Type     string `json:"type" binding:"required,activity"`
	Activity string `json:"activity"`
}

type SubTaskRequest struct {
	Title string `json:"title" binding:"required"`
	Tag   string `json:"tag"`
	Date  string `json:"date"`
}

type DependenciesRequest struct {
	Dependencies []string `json:"dependencies"`
}

// DeleteRestoreAction is the actionType of the delete-restore endpoint.
type DeleteRestoreAction string

const (
	ActionDelete     DeleteRestoreAction = "delete"
	ActionDeleteAll  DeleteRestoreAction = "deleteAll"
	ActionRestore    DeleteRestoreAction = "restore"
	ActionRestoreAll DeleteRestoreAction = "restoreAll"
)

type GraphPoint struct {
	Name  TaskPriority `json:"name"`
	Total int          `json:"total"`
}

type Dashboard struct {
	TotalTasks int               `json:"totalTasks"`
	Last10Task []TaskView        `json:"last10Task"`
	Users      []User            `json:"users"`
	Tasks      map[TaskStage]int `json:"tasks"`
	GraphData  []GraphPoint      `json:"graphData"`
}
