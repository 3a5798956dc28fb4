package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"taskmanager/internal/authz"
	"taskmanager/internal/handlers"
	"taskmanager/internal/middleware"
	"taskmanager/internal/models"
	"taskmanager/internal/pdf"
	"taskmanager/internal/routes"
	"taskmanager/internal/services"
	"taskmanager/internal/services/mocks"
	"taskmanager/internal/storage"
	smocks "taskmanager/internal/storage/mocks"
)

type fixture struct {
	users   *mocks.MockUserService
	tasks   *mocks.MockTaskService
	notices *mocks.MockNoticeService
	store   *smocks.MockStorage
	router  *gin.Engine
}

var (
	adminP  = authz.Principal{UserID: primitive.NewObjectID(), Email: "admin@x.io", IsAdmin: true}
	memberP = authz.Principal{UserID: primitive.NewObjectID(), Email: "member@x.io"}
)

// newFixture mounts the real route table; the caller is authenticated as p,
// or rejected when p is nil.
func newFixture(t *testing.T, p *authz.Principal) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, handlers.RegisterValidators())

	f := &fixture{
		users:   new(mocks.MockUserService),
		tasks:   new(mocks.MockTaskService),
		notices: new(mocks.MockNoticeService),
		store:   new(smocks.MockStorage),
	}
	auth := services.NewAuthService("test-secret", time.Hour)

	protect := func(c *gin.Context) {
		if p == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": false})
			return
		}
		authz.SetPrincipal(c, *p)
		c.Next()
	}

	r := gin.New()
	r.Use(middleware.ErrorHandler(false))
	routes.SetupRoutes(r, routes.Handlers{
		Auth:         handlers.NewAuthHandler(f.users, auth, false),
		User:         handlers.NewUserHandler(f.users),
		Notification: handlers.NewNotificationHandler(f.notices, nil),
		Task:         handlers.NewTaskHandler(f.tasks),
		Asset:        handlers.NewAssetHandler(f.store),
		Report:       handlers.NewReportHandler(f.tasks, pdf.NewReportGenerator("")),
	}, protect)
	f.router = r

	t.Cleanup(func() {
		f.users.AssertExpectations(t)
		f.tasks.AssertExpectations(t)
		f.notices.AssertExpectations(t)
		f.store.AssertExpectations(t)
	})
	return f
}

func (f *fixture) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rdr = strings.NewReader(b)
		default:
			raw, _ := json.Marshal(b)
			rdr = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func tokenCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.TokenCookie {
			return c
		}
	}
	return nil
}

// ---- auth

func TestRegister(t *testing.T) {
	payload := map[string]interface{}{
		"name": "Ann", "email": "ann@x.io", "password": "secret1",
		"role": "Lead", "title": "PM", "isAdmin": true,
	}

	t.Run("admin gets a session cookie", func(t *testing.T) {
		f := newFixture(t, nil)
		user := &models.User{ID: primitive.NewObjectID(), Email: "ann@x.io", IsAdmin: true, Password: "hash"}
		f.users.On("Register", mock.Anything, mock.MatchedBy(func(r models.RegisterRequest) bool {
			return r.Email == "ann@x.io" && r.IsAdmin
		})).Return(user, nil)

		w := f.do(http.MethodPost, "/api/user/register", payload)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NotContains(t, w.Body.String(), "password")

		c := tokenCookie(w)
		require.NotNil(t, c)
		assert.True(t, c.HttpOnly)
		assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
		assert.Equal(t, 3600, c.MaxAge)
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newFixture(t, nil)
		f.users.On("Register", mock.Anything, mock.Anything).Return(nil, services.ErrUserExists)

		w := f.do(http.MethodPost, "/api/user/register", payload)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "User already exists", jsonBody(t, w)["message"])
	})

	t.Run("missing fields", func(t *testing.T) {
		f := newFixture(t, nil)
		w := f.do(http.MethodPost, "/api/user/register", map[string]string{"name": "Ann"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, false, jsonBody(t, w)["status"])
	})
}

func TestLogin(t *testing.T) {
	t.Run("inactive user", func(t *testing.T) {
		f := newFixture(t, nil)
		f.users.On("Login", mock.Anything, "m@x.io", "secret1").Return(nil, services.ErrUserInactive)

		w := f.do(http.MethodPost, "/api/user/login", map[string]string{"email": "m@x.io", "password": "secret1"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "User account has been deactivated, contact the administrator", jsonBody(t, w)["message"])
		assert.Nil(t, tokenCookie(w))
	})

	t.Run("success", func(t *testing.T) {
		f := newFixture(t, nil)
		user := &models.User{ID: primitive.NewObjectID(), Email: "m@x.io", IsActive: true}
		f.users.On("Login", mock.Anything, "m@x.io", "secret1").Return(user, nil)

		w := f.do(http.MethodPost, "/api/user/login", map[string]string{"email": "m@x.io", "password": "secret1"})
		assert.Equal(t, http.StatusOK, w.Code)
		c := tokenCookie(w)
		require.NotNil(t, c)
		assert.NotEmpty(t, c.Value)
	})
}

func TestLogout(t *testing.T) {
	f := newFixture(t, nil)
	w := f.do(http.MethodPost, "/api/user/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	c := tokenCookie(w)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
}

// ---- users

func TestGetTeam_AdminOnly(t *testing.T) {
	f := newFixture(t, &memberP)
	w := f.do(http.MethodGet, "/api/user/get-team", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	f = newFixture(t, &adminP)
	f.users.On("ListTeam", mock.Anything).Return([]models.UserSummary{{Name: "Ann"}}, nil)
	w = f.do(http.MethodGet, "/api/user/get-team", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Ann"`)
}

func TestActivate(t *testing.T) {
	f := newFixture(t, &adminP)
	id := primitive.NewObjectID()
	f.users.On("SetActive", mock.Anything, id, false).Return(&models.User{ID: id, IsActive: false}, nil)

	w := f.do(http.MethodPut, "/api/user/"+id.Hex(), map[string]bool{"isActive": false})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User account has been disabled", jsonBody(t, w)["message"])

	w = f.do(http.MethodPut, "/api/user/not-an-id", map[string]bool{"isActive": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, strings.HasPrefix(jsonBody(t, w)["message"].(string), "invalid id"))
}

func TestUpdateProfile_UserMissing(t *testing.T) {
	f := newFixture(t, &memberP)
	f.users.On("UpdateProfile", mock.Anything, memberP, models.ProfileUpdate{Name: "New"}).Return(nil, services.ErrUserNotFound)

	w := f.do(http.MethodPut, "/api/user/profile", map[string]string{"name": "New"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", jsonBody(t, w)["message"])
}

// ---- notifications

func TestMarkRead(t *testing.T) {
	f := newFixture(t, &memberP)
	w := f.do(http.MethodPut, "/api/user/read-noti", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.notices.On("MarkRead", mock.Anything, memberP.UserID, services.ReadAll, "").Return(nil).Once()
	w = f.do(http.MethodPut, "/api/user/read-noti?isReadType=all", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Done", jsonBody(t, w)["message"])

	nid := primitive.NewObjectID().Hex()
	f.notices.On("MarkRead", mock.Anything, memberP.UserID, "", nid).Return(nil).Once()
	w = f.do(http.MethodPut, "/api/user/read-noti?id="+nid, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNotificationsStream_DisabledWithoutHub(t *testing.T) {
	f := newFixture(t, &memberP)
	w := f.do(http.MethodGet, "/api/user/notifications/ws", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ---- tasks

func TestCreateTask(t *testing.T) {
	t.Run("rejects unknown stage", func(t *testing.T) {
		f := newFixture(t, &adminP)
		w := f.do(http.MethodPost, "/api/task/create", map[string]interface{}{"title": "T", "stage": "backlog"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("accepts mixed case enums", func(t *testing.T) {
		f := newFixture(t, &adminP)
		task := &models.Task{ID: primitive.NewObjectID(), Title: "T"}
		f.tasks.On("Create", mock.Anything, adminP, mock.MatchedBy(func(r models.CreateTaskRequest) bool {
			return r.Stage == "In Progress" && r.Priority == "HIGH"
		})).Return(task, nil)

		w := f.do(http.MethodPost, "/api/task/create", map[string]interface{}{"title": "T", "stage": "In Progress", "priority": "HIGH"})
		assert.Equal(t, http.StatusOK, w.Code)
		body := jsonBody(t, w)
		assert.Equal(t, true, body["status"])
		assert.Equal(t, "Task created successfully.", body["message"])
	})

	t.Run("members cannot create", func(t *testing.T) {
		f := newFixture(t, &memberP)
		w := f.do(http.MethodPost, "/api/task/create", map[string]interface{}{"title": "T"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestListTasks_Filter(t *testing.T) {
	f := newFixture(t, &memberP)
	f.tasks.On("List", mock.Anything, mock.MatchedBy(func(flt models.TaskFilter) bool {
		return flt.IsTrashed && flt.Stage != nil && *flt.Stage == models.StageInProgress
	})).Return([]models.TaskView{}, nil)

	w := f.do(http.MethodGet, "/api/task?stage=In%20Progress&isTrashed=true", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/api/task/?stage=later", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTask(t *testing.T) {
	f := newFixture(t, &memberP)
	missing := primitive.NewObjectID()
	f.tasks.On("Get", mock.Anything, missing).Return(nil, services.ErrTaskNotFound)

	w := f.do(http.MethodGet, "/api/task/"+missing.Hex(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Task not found.", jsonBody(t, w)["message"])

	broken := primitive.NewObjectID()
	f.tasks.On("Get", mock.Anything, broken).Return(nil, errors.New("connection reset"))
	w = f.do(http.MethodGet, "/api/task/"+broken.Hex(), nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "connection reset", jsonBody(t, w)["message"])
}

func TestTrash_BothRoutes(t *testing.T) {
	f := newFixture(t, &adminP)
	id := primitive.NewObjectID()
	f.tasks.On("Trash", mock.Anything, id).Return(nil).Twice()

	for _, p := range []string{"/api/task/trash/" + id.Hex(), "/api/task/" + id.Hex()} {
		w := f.do(http.MethodPut, p, nil)
		assert.Equal(t, http.StatusOK, w.Code, p)
		assert.Equal(t, "Task trashed successfully.", jsonBody(t, w)["message"])
	}
}

func TestDeleteRestore(t *testing.T) {
	f := newFixture(t, &adminP)
	f.tasks.On("DeleteRestore", mock.Anything, models.ActionDeleteAll, "").Return(nil)
	f.tasks.On("DeleteRestore", mock.Anything, models.DeleteRestoreAction("purge"), "abc").Return(services.ErrInvalidAction)

	w := f.do(http.MethodDelete, "/api/task/delete-restore?actionType=deleteAll", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Operation performed successfully.", jsonBody(t, w)["message"])

	w = f.do(http.MethodDelete, "/api/task/delete-restore/abc?actionType=purge", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid action type.", jsonBody(t, w)["message"])
}

func TestSetDependencies(t *testing.T) {
	f := newFixture(t, &adminP)
	id := primitive.NewObjectID()

	w := f.do(http.MethodPut, "/api/task/dependencies/"+id.Hex(), `{"dependencies":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Dependencies must be an array of task IDs.", jsonBody(t, w)["message"])

	w = f.do(http.MethodPut, "/api/task/dependencies/"+id.Hex(), `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	bad := primitive.NewObjectID().Hex()
	f.tasks.On("SetDependencies", mock.Anything, id, []string{bad}).Return(nil, services.ErrInvalidDependencies)
	w = f.do(http.MethodPut, "/api/task/dependencies/"+id.Hex(), map[string][]string{"dependencies": {bad}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Some dependencies are invalid or do not exist.", jsonBody(t, w)["message"])

	f.tasks.On("SetDependencies", mock.Anything, id, []string{}).Return(&models.TaskView{ID: id}, nil)
	w = f.do(http.MethodPut, "/api/task/dependencies/"+id.Hex(), `{"dependencies":[]}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t, &memberP)
	d := &models.Dashboard{
		TotalTasks: 3,
		Last10Task: []models.TaskView{},
		Users:      []models.User{},
		Tasks:      map[models.TaskStage]int{models.StageTodo: 3},
		GraphData:  []models.GraphPoint{{Name: models.PriorityNormal, Total: 3}},
	}
	f.tasks.On("Dashboard", mock.Anything, memberP).Return(d, nil)

	w := f.do(http.MethodGet, "/api/task/dashboard", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := jsonBody(t, w)
	assert.Equal(t, float64(3), body["totalTasks"])
	assert.Equal(t, "Successfully", body["message"])
	assert.Contains(t, body, "graphData")

	w = f.do(http.MethodGet, "/api/task/dashboard/report", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

// ---- assets

func TestUploadAsset(t *testing.T) {
	f := newFixture(t, &adminP)

	w := f.do(http.MethodPost, "/api/task/assets", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "Screen Shot.PNG")
	require.NoError(t, err)
	_, _ = part.Write([]byte("png-bytes"))
	require.NoError(t, mw.Close())

	f.store.On("Put", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "tasks/") && strings.HasSuffix(key, ".png")
	}), mock.Anything, mock.MatchedBy(func(o storage.PutObjectOptions) bool {
		return o.Size == int64(len("png-bytes"))
	})).Return(func(_ context.Context, key string, _ io.Reader, o storage.PutObjectOptions) storage.ObjectInfo {
		return storage.ObjectInfo{Key: key, Size: o.Size}
	}, nil)
	f.store.On("URL", mock.Anything, mock.Anything).Return("https://cdn.example.com/asset.png", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/task/assets", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := jsonBody(t, rec)
	assert.Equal(t, "https://cdn.example.com/asset.png", body["url"])
	assert.True(t, strings.HasPrefix(body["key"].(string), "tasks/"))
}

// ---- health

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ok", handlers.Health(pinger{}))
	r.GET("/down", handlers.Health(pinger{err: errors.New("no primary")}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/down", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
