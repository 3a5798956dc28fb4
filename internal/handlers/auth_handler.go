package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/logging"
	"taskmanager/internal/middleware"
	"taskmanager/internal/models"
	"taskmanager/internal/services"
)

type AuthHandler struct {
	userService  services.UserService
	authService  services.AuthService
	secureCookie bool
}

func NewAuthHandler(userService services.UserService, authService services.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{userService: userService, authService: authService, secureCookie: secureCookie}
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.TokenCookie, token, int(ttl.Seconds()), "/", "", h.secureCookie, true)
}

func (h *AuthHandler) issueCookie(c *gin.Context, u *models.User) bool {
	token, _, err := h.authService.IssueToken(u.ID)
	if err != nil {
		respondError(c, "[auth][token]", err)
		return false
	}
	h.setTokenCookie(c, token, h.authService.TokenTTL())
	return true
}

// @Summary      Регистрация пользователя
// @Description  Создаёт пользователя; для администратора сразу выставляет cookie сессии
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        user  body      models.RegisterRequest  true  "Данные пользователя"
// @Success      201   {object}  models.User
// @Failure      400   {object}  map[string]interface{}
// @Router       /user/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, "[auth][register]", &req) {
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, "[auth][register]", err)
		return
	}
	if user.IsAdmin && !h.issueCookie(c, user) {
		return
	}
	logging.Logger.Infof("[auth][register] ok id=%s email=%q admin=%t", user.ID.Hex(), user.Email, user.IsAdmin)
	c.JSON(http.StatusCreated, user)
}

// @Summary      Вход в систему
// @Description  Проверяет пароль и выставляет http-only cookie token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Данные для входа"
// @Success      200    {object}  models.User
// @Failure      400    {object}  map[string]interface{}
// @Failure      401    {object}  map[string]interface{}
// @Router       /user/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	start := time.Now()

	var req models.LoginRequest
	if !bindJSON(c, "[auth][login]", &req) {
		return
	}

	user, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		logging.Logger.Infof("[auth][login] denied email=%q: %v", req.Email, err)
		respondError(c, "[auth][login]", err)
		return
	}
	if !h.issueCookie(c, user) {
		return
	}
	logging.Logger.Infof("[auth][login] ok id=%s took=%s", user.ID.Hex(), time.Since(start))
	c.JSON(http.StatusOK, user)
}

// @Summary  Выход
// @Tags     Auth
// @Produce  json
// @Success  200  {object}  map[string]interface{}
// @Router   /user/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}
