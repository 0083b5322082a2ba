package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arklim/commerce-platform-auth/internal/core/domain"
	"github.com/arklim/commerce-platform-auth/internal/usecase"
)

var loginOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "auth",
	Name:      "login_outcomes_total",
	Help:      "Login attempts partitioned by outcome",
}, []string{"outcome"})

// AuthHandler exposes authentication and registration endpoints.
type AuthHandler struct {
	auth         *usecase.AuthService
	registration *usecase.RegistrationService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService, registration *usecase.RegistrationService) *AuthHandler {
	return &AuthHandler{auth: auth, registration: registration}
}

// RegisterRoutes binds authentication routes.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/register", h.register)
	r.POST("/login", h.login)
	r.GET("/questions", h.questions)
}

func (h *AuthHandler) register(c *gin.Context) {
	var req RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	account, err := h.registration.Register(c.Request.Context(), usecase.RegisterInput{
		Name:               req.Name,
		Email:              req.Email,
		Mobile:             req.Mobile,
		Password:           req.Password,
		Role:               req.Role,
		SecurityQuestionID: req.SecurityQuestionID,
		SecurityAnswer:     req.SecurityAnswer,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountExists, Status: http.StatusConflict, Message: "an account with these details already exists"},
		}, http.StatusInternalServerError, "registration failed")
		return
	}

	c.JSON(http.StatusCreated, NewAccountSummary(account))
}

func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	outcome, err := h.auth.Authenticate(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		loginOutcomes.WithLabelValues("error").Inc()
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "authentication unavailable"))
		return
	}

	loginOutcomes.WithLabelValues(string(outcome.Status)).Inc()

	switch outcome.Status {
	case domain.AuthSuccess:
		summary := NewAccountSummary(outcome.Account)
		c.JSON(http.StatusOK, LoginResponse{Status: string(outcome.Status), Account: &summary})
	case domain.AuthLocked:
		c.JSON(http.StatusLocked, LoginResponse{
			Status:      string(outcome.Status),
			Reason:      "account temporarily locked",
			RemainingMS: outcome.Remaining.Milliseconds(),
		})
	default:
		c.JSON(http.StatusUnauthorized, LoginResponse{Status: string(outcome.Status), Reason: outcome.Reason})
	}
}

func (h *AuthHandler) questions(c *gin.Context) {
	catalog := domain.SecurityQuestions()
	views := make([]SecurityQuestionView, 0, len(catalog))
	for _, q := range catalog {
		views = append(views, SecurityQuestionView{ID: q.ID, Text: q.Text})
	}
	c.JSON(http.StatusOK, views)
}
