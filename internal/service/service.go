package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/boardly/boardly-server/internal/models"
	"github.com/boardly/boardly-server/internal/repository"
)

// Service defines all the business logic operations
type Service interface {
	// Authentication
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Authenticate(ctx context.Context, tokenString string) (*models.User, error)

	// Board operations
	CreateBoard(ctx context.Context, userID string, req models.CreateBoardRequest) (*models.Board, error)
	ListOwnedBoards(ctx context.Context, userID string) ([]models.Board, error)
	ListSharedBoards(ctx context.Context, userID string) ([]models.Board, error)
	UpdateBoard(ctx context.Context, userID, boardID string, req models.UpdateBoardRequest) (*models.Board, error)
	DeleteBoard(ctx context.Context, caller *models.User, boardID string) error
	ArchiveBoard(ctx context.Context, caller *models.User, boardID string, req models.ArchiveBoardRequest) (*models.BoardArchive, error)
	ListBoardArchives(ctx context.Context, userID, boardID string) ([]models.BoardArchive, error)

	// Access resolution
	ResolveBoardAccess(ctx context.Context, boardID, callerID, shareToken string) (*models.Board, AccessLevel, error)

	// Share link lifecycle
	IssueShareLink(ctx context.Context, requester *models.User, boardID string, req models.CreateShareLinkRequest) (*models.ShareLink, string, error)
	ResolveShareLink(ctx context.Context, token string) (*models.ShareLink, error)
	RevokeShareLink(ctx context.Context, token, requesterID string) error

	// Plan change requests
	RequestPlanChange(ctx context.Context, userID string, req models.PlanChangeRequestBody) (*models.PlanChangeRequest, error)
	ListOwnPlanRequests(ctx context.Context, userID string) ([]models.PlanChangeRequest, error)

	// Admin / account management
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdatePlanRole(ctx context.Context, actor *models.User, targetID string, req models.UpdatePlanRoleRequest) (*models.User, string, error)
	DeleteUser(ctx context.Context, targetID string) error
	ListPlanRequests(ctx context.Context, status string) ([]models.PlanChangeRequest, error)
	ResolvePlanRequest(ctx context.Context, reviewer *models.User, requestID string, req models.ResolvePlanRequestBody) (*models.PlanChangeRequest, error)
}

// Token lifetimes: a day at login and registration, a week when a token
// is reissued after the holder's own role/plan change.
const (
	loginTokenDuration   = 24 * time.Hour
	reissueTokenDuration = 7 * 24 * time.Hour
)

// DefaultService implements the Service interface
type DefaultService struct {
	repo          repository.Repository
	jwtSecret     []byte
	publicBaseURL string
	notifier      Notifier
	logger        *zap.Logger
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(repo repository.Repository, jwtSecret, publicBaseURL string, notifier Notifier, logger *zap.Logger) *DefaultService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &DefaultService{
		repo:          repo,
		jwtSecret:     []byte(jwtSecret),
		publicBaseURL: publicBaseURL,
		notifier:      notifier,
		logger:        logger,
	}
}

// Claims is the JWT payload. The embedded token version ties a token to
// the role it was issued under: bumping the stored version invalidates
// every outstanding token for the user.
type Claims struct {
	Role         string `json:"role"`
	TokenVersion int    `json:"ver"`
	jwt.RegisteredClaims
}

// Authentication methods

func (s *DefaultService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     models.RoleUser,
		Plan:     models.PlanBasic,
	}

	// Every account starts with a default board.
	board := &models.Board{
		Name:    fmt.Sprintf("%s's board", req.Username),
		Content: json.RawMessage(`{}`),
	}

	if err := s.repo.CreateUserWithBoard(ctx, user, board); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: username %q is already taken", ErrConflict, req.Username)
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	token, err := s.generateToken(user, loginTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	return &models.AuthResponse{
		Status:    "success",
		UserID:    user.ID,
		Username:  user.Username,
		Plan:      user.Plan,
		BoardID:   board.ID,
		Token:     token,
		ExpiresIn: int(loginTokenDuration.Seconds()),
	}, nil
}

func (s *DefaultService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.repo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	if user == nil {
		return nil, fmt.Errorf("%w: invalid username or password", ErrUnauthenticated)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid username or password", ErrUnauthenticated)
	}

	token, err := s.generateToken(user, loginTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	resp := &models.AuthResponse{
		Status:    "success",
		UserID:    user.ID,
		Username:  user.Username,
		Plan:      user.Plan,
		Token:     token,
		ExpiresIn: int(loginTokenDuration.Seconds()),
	}

	// Clients open the caller's earliest board after login.
	board, err := s.repo.GetEarliestBoard(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("error getting default board: %w", err)
	}
	if board != nil {
		resp.BoardID = board.ID
	}

	return resp, nil
}

// Authenticate verifies a bearer token and returns the current account
// state. Plan and role always come from the store, never from claims, so
// plan limits react immediately to upgrades. A token whose embedded
// version no longer matches the stored one is rejected.
func (s *DefaultService) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: unknown account", ErrUnauthenticated)
	}

	if claims.TokenVersion != user.TokenVersion {
		return nil, fmt.Errorf("%w: token has been invalidated", ErrUnauthenticated)
	}

	return user, nil
}

// Helper methods

func (s *DefaultService) generateToken(user *models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *DefaultService) parseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: invalid signing method", ErrUnauthenticated)
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthenticated)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%w: invalid token claims", ErrUnauthenticated)
	}

	return claims, nil
}
