package biz

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"moviereview/internal/conf"
	"moviereview/internal/pkg/auth"
)

// RegisterInput is the registration payload.
type RegisterInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// UpdateProfileInput changes the display name and optionally the picture.
type UpdateProfileInput struct {
	Name  string `validate:"required"`
	Image *Image `validate:"-"`
}

// Session is an issued bearer token.
type Session struct {
	Token string
	User  *User
}

// UserUseCase handles identity: registration, login, profile and the admin login.
type UserUseCase struct {
	repo   UserRepo
	tokens TokenIssuer
	images ImageHost
	admin  *conf.Auth
	log    *log.Helper
	now    func() time.Time
}

// NewUserUseCase creates a new UserUseCase instance
func NewUserUseCase(repo UserRepo, tokens TokenIssuer, images ImageHost, admin *conf.Auth, logger log.Logger) *UserUseCase {
	return &UserUseCase{
		repo:   repo,
		tokens: tokens,
		images: images,
		admin:  admin,
		log:    log.NewHelper(logger),
		now:    time.Now,
	}
}

// Register creates a user with a hashed password and returns a session for it.
func (uc *UserUseCase) Register(ctx context.Context, in *RegisterInput) (*Session, error) {
	normalized := RegisterInput{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Password: in.Password,
	}
	if err := validate.StructCtx(ctx, normalized); err != nil {
		return nil, validationError(err)
	}

	hashed, err := auth.HashPassword(normalized.Password)
	if err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	user := &User{
		ID:           NewID(),
		Name:         normalized.Name,
		Email:        normalized.Email,
		PasswordHash: hashed,
		JoinDate:     now,
	}
	if err := uc.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	token, err := uc.tokens.Issue(user.ID, auth.RoleUser)
	if err != nil {
		return nil, err
	}
	uc.log.WithContext(ctx).Infof("user %s registered", user.ID)
	return &Session{Token: token, User: user}, nil
}

// Login verifies email and password. Unknown email and wrong password are
// reported identically.
func (uc *UserUseCase) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, InvalidArgument("email and password are required")
	}

	user, err := uc.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := uc.tokens.Issue(user.ID, auth.RoleUser)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}

// AdminLogin compares the credential against the configured admin account and
// issues an admin token.
func (uc *UserUseCase) AdminLogin(ctx context.Context, email, password string) (string, error) {
	if uc.admin == nil || uc.admin.AdminEmail == "" || uc.admin.AdminPassword == "" {
		return "", ErrInvalidCredentials
	}
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(uc.admin.AdminEmail)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(uc.admin.AdminPassword)) == 1
	if !emailOK || !passwordOK {
		uc.log.WithContext(ctx).Warn("rejected admin login")
		return "", ErrInvalidCredentials
	}
	return uc.tokens.Issue(uc.admin.AdminEmail, auth.RoleAdmin)
}

// GetProfile returns the user identified by userID.
func (uc *UserUseCase) GetProfile(ctx context.Context, userID string) (*User, error) {
	if !ValidID(userID) {
		return nil, ErrUserNotFound
	}
	return uc.repo.GetUser(ctx, userID)
}

// UpdateProfile renames the user and, when an image is supplied, replaces the
// profile picture with the hosted upload.
func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID string, in *UpdateProfileInput) (*User, error) {
	name := strings.TrimSpace(in.Name)
	if err := validate.StructCtx(ctx, UpdateProfileInput{Name: name}); err != nil {
		return nil, validationError(err)
	}
	user, err := uc.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = name
	if in.Image != nil && in.Image.Body != nil {
		url, err := uc.images.Upload(ctx, "profiles", in.Image)
		if err != nil {
			return nil, err
		}
		user.ProfilePicture = &url
	}
	if err := uc.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
