package handler

import (
	"errors"
	"net/http"

	"github.com/amoylab/shopinspector/internal/apiserver/middleware"
	"github.com/amoylab/shopinspector/internal/auth/jwt"
	"github.com/amoylab/shopinspector/internal/common/config"
	"github.com/amoylab/shopinspector/internal/common/dto"
	"github.com/amoylab/shopinspector/internal/common/errorx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RoleAdmin is the role of the configured super administrator
const RoleAdmin = "admin"

var ErrMissingSuperAdmin = errors.New("super admin username and password must be configured")

// AuthHandler represents the authentication handler
type AuthHandler struct {
	jwtService *jwt.Service
	username   string
	password   []byte // bcrypt hash
	errs       *errorx.ErrorHandler
	logger     *zap.Logger
}

// NewAuthHandler creates the login handler for the configured super administrator
func NewAuthHandler(cfg config.SuperAdminConfig, jwtService *jwt.Service, errs *errorx.ErrorHandler, logger *zap.Logger) (*AuthHandler, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, ErrMissingSuperAdmin
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &AuthHandler{
		jwtService: jwtService,
		username:   cfg.Username,
		password:   hash,
		errs:       errs,
		logger:     logger.Named("auth"),
	}, nil
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.HandleError(c, errorx.ErrMissingField.WithMessage("username and password are required"))
		return
	}

	// the hash is compared even for an unknown user so both failures take the same time
	passwordErr := bcrypt.CompareHashAndPassword(h.password, []byte(req.Password))
	if req.Username != h.username || passwordErr != nil {
		h.logger.Warn("login rejected", zap.String("username", req.Username), zap.String("client_ip", c.ClientIP()))
		h.errs.HandleError(c, errorx.ErrInvalidCredentials)
		return
	}

	token, expiresAt, err := h.jwtService.GenerateToken(h.username, RoleAdmin)
	if err != nil {
		h.errs.HandleError(c, err)
		return
	}

	h.logger.Info("user signed in", zap.String("username", h.username))
	c.JSON(http.StatusOK, dto.LoginResponse{Token: token, ExpiresAt: expiresAt.UTC()})
}

// Me returns the signed in user
func (h *AuthHandler) Me(c *gin.Context) {
	v, _ := c.Get(middleware.ContextKeyClaims)
	claims, ok := v.(*jwt.Claims)
	if !ok {
		h.errs.HandleError(c, errorx.ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, dto.UserInfo{Username: claims.Username, Role: claims.Role})
}
