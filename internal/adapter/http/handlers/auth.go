package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"todoapi/internal/adapter/http/dto"
	"todoapi/internal/adapter/http/mapper"
	"todoapi/internal/adapter/http/middleware"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/ports"
	"todoapi/pkg/apierrors"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	lang := middleware.GetLang(c)

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, apierrors.MsgInvalidAuthPayload)
		return
	}

	token, err := h.authService.Register(c.Request.Context(), domain.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if vErr, ok := domain.AsValidationError(err); ok {
			badRequest(c, apierrors.MsgInvalidAuthPayload, vErr.Errors...)
			return
		}
		if errors.Is(err, domain.ErrUserExists) {
			c.JSON(
				http.StatusConflict,
				apierrors.CreateError(http.StatusConflict, apierrors.MsgUserAlreadyExists, lang),
			)
			return
		}

		zap.L().Error("failed to register user", zap.Error(err))
		c.JSON(
			http.StatusInternalServerError,
			apierrors.CreateError(http.StatusInternalServerError, apierrors.MsgFailRegister, lang),
		)
		return
	}

	c.JSON(http.StatusCreated, mapper.ToAuthResponse(token))
}

func (h *AuthHandler) Login(c *gin.Context) {
	lang := middleware.GetLang(c)

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, apierrors.MsgInvalidAuthPayload)
		return
	}

	token, err := h.authService.Login(c.Request.Context(), domain.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(
				http.StatusUnauthorized,
				apierrors.CreateError(http.StatusUnauthorized, apierrors.MsgInvalidCredentials, lang),
			)
			return
		}

		zap.L().Error("failed to log in", zap.Error(err))
		c.JSON(
			http.StatusInternalServerError,
			apierrors.CreateError(http.StatusInternalServerError, apierrors.MsgFailLogin, lang),
		)
		return
	}

	c.JSON(http.StatusOK, mapper.ToAuthResponse(token))
}

// Validate returns the user behind the bearer token; RequireBearer runs first.
func (h *AuthHandler) Validate(c *gin.Context) {
	lang := middleware.GetLang(c)

	user, err := h.authService.CurrentUser(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(
				http.StatusUnauthorized,
				apierrors.CreateError(http.StatusUnauthorized, apierrors.MsgAuthRequired, lang),
			)
			return
		}

		zap.L().Error("failed to validate token", zap.Error(err))
		c.JSON(
			http.StatusInternalServerError,
			apierrors.CreateError(http.StatusInternalServerError, apierrors.MsgFailValidateToken, lang),
		)
		return
	}

	c.JSON(http.StatusOK, mapper.ToUserItem(*user))
}
