package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Vetinfrajer/VetinChatApp/internal/auth"
	"github.com/Vetinfrajer/VetinChatApp/internal/domain"
	"github.com/Vetinfrajer/VetinChatApp/internal/service"
	"github.com/Vetinfrajer/VetinChatApp/internal/socket"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	tokens        *auth.Manager
	users         service.UserService
	friends       service.FriendService
	conversations service.ConversationService
	ws            *socket.Handler
	corsOrigin    string
}

func NewHandler(
	tokens *auth.Manager,
	users service.UserService,
	friends service.FriendService,
	conversations service.ConversationService,
	ws *socket.Handler,
	corsOrigin string,
) *Handler {
	return &Handler{
		tokens:        tokens,
		users:         users,
		friends:       friends,
		conversations: conversations,
		ws:            ws,
		corsOrigin:    corsOrigin,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware(h.corsOrigin))

	router.GET("/ws", gin.WrapH(h.ws))

	api := router.Group("/api")
	{
		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		authed := api.Group("", h.authRequired())
		{
			authed.GET("/auth/profile", h.getProfile)
			authed.PUT("/auth/profile", h.updateProfile)
			authed.GET("/auth/stats", h.getStats)
			authed.GET("/users", h.listUsers)
			authed.GET("/friends", h.listFriends)
			authed.POST("/friends", h.addFriend)
			authed.GET("/conversations", h.listConversations)
			authed.GET("/conversations/:friendId/messages", h.listMessages)
		}
	}
}

func corsMiddleware(origin string) gin.HandlerFunc {
	if origin == "" {
		origin = "*"
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Bio   string `json:"bio"`
}

type addFriendRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "name, email and password are required"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "user with this email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user.Profile(), "token": token})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email and password are required"})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user.Profile(), "token": token})
}

// authRequired gates protected routes on a valid bearer token.
func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "access denied"})
			return
		}

		identity, err := h.tokens.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "invalid token"})
			return
		}

		c.Set("userID", identity.UserID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	const prefix = "Bearer "
	header := c.GetHeader("Authorization")
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}

func currentUserID(c *gin.Context) string {
	return c.GetString("userID")
}

func (h *Handler) getProfile(c *gin.Context) {
	user, err := h.users.GetProfile(c.Request.Context(), currentUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, user.Profile())
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "name and email are required"})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), currentUserID(c), req.Name, req.Email, req.Bio)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateEmail):
			c.JSON(http.StatusBadRequest, gin.H{"message": "user with this email already exists"})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, user.Profile())
}

func (h *Handler) getStats(c *gin.Context) {
	stats, err := h.users.Stats(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) listUsers(c *gin.Context) {
	contacts, err := h.users.ListOthers(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, contacts)
}

func (h *Handler) listFriends(c *gin.Context) {
	contacts, err := h.friends.ListFriends(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, contacts)
}

func (h *Handler) addFriend(c *gin.Context) {
	var req addFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "userId is required"})
		return
	}

	if _, err := h.friends.AddFriend(c.Request.Context(), currentUserID(c), req.UserID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "friend added"})
}

func (h *Handler) listConversations(c *gin.Context) {
	conversations, err := h.conversations.ListConversations(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, conversations)
}

func (h *Handler) listMessages(c *gin.Context) {
	friendID := c.Param("friendId")

	messages, err := h.conversations.ListHistory(c.Request.Context(), currentUserID(c), friendID)
	if err != nil {
		if errors.Is(err, service.ErrNotFriends) {
			c.JSON(http.StatusNotFound, gin.H{"message": "conversation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	if messages == nil {
		messages = []domain.Message{}
	}

	c.JSON(http.StatusOK, messages)
}
