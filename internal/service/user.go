package service

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"moviereview/internal/biz"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthReply struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *UserProfile `json:"user,omitempty"`
}

type GetProfileRequest struct{}

// UpdateProfileRequest carries the multipart "name" and optional "image" parts.
type UpdateProfileRequest struct {
	Name  string     `json:"name"`
	Image *biz.Image `json:"-"`
}

type ProfileReply struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *UserProfile `json:"user"`
}

type AddToWatchlistRequest struct {
	MovieID string `json:"movieId"`
}

// WatchlistItem is one watchlist entry with its resolved movie. Movie is null
// when the movie no longer exists.
type WatchlistItem struct {
	ID                 string    `json:"id"`
	Movie              *Movie    `json:"movie"`
	DateAdded          time.Time `json:"dateAdded"`
	AddedToWatchlistAt time.Time `json:"addedToWatchlistAt"`
	LastUpdated        time.Time `json:"lastUpdated"`
}

type AddToWatchlistReply struct {
	Success       bool           `json:"success"`
	Message       string         `json:"message"`
	WatchlistItem *WatchlistItem `json:"watchlistItem"`
}

type ListWatchlistRequest struct {
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
}

type WatchlistOwner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type WatchlistSort struct {
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
}

type ListWatchlistReply struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	Watchlist  []*WatchlistItem    `json:"watchlist"`
	Pagination WatchlistPagination `json:"pagination"`
	Sort       WatchlistSort       `json:"sort"`
	User       *WatchlistOwner     `json:"user"`
}

type RemoveFromWatchlistRequest struct {
	MovieID string `json:"movieId"`
}

type RemoveFromWatchlistReply struct {
	Success      bool          `json:"success"`
	Message      string        `json:"message"`
	RemovedMovie *MovieSummary `json:"removedMovie"`
	RemovedAt    time.Time     `json:"removedAt"`
}

// UserService serves identity, the admin login and the caller's watchlist.
type UserService struct {
	users     *biz.UserUseCase
	watchlist *biz.WatchlistUseCase
	log       *log.Helper
}

// NewUserService creates a new UserService
func NewUserService(users *biz.UserUseCase, watchlist *biz.WatchlistUseCase, logger log.Logger) *UserService {
	return &UserService{
		users:     users,
		watchlist: watchlist,
		log:       log.NewHelper(logger),
	}
}

func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*AuthReply, error) {
	session, err := s.users.Register(ctx, &biz.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}
	return &AuthReply{
		Success: true,
		Message: "User registered successfully",
		Token:   session.Token,
		User:    userToDTO(session.User),
	}, nil
}

func (s *UserService) Login(ctx context.Context, req *LoginRequest) (*AuthReply, error) {
	session, err := s.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return &AuthReply{
		Success: true,
		Message: "Login successful",
		Token:   session.Token,
		User:    userToDTO(session.User),
	}, nil
}

func (s *UserService) AdminLogin(ctx context.Context, req *LoginRequest) (*AuthReply, error) {
	token, err := s.users.AdminLogin(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return &AuthReply{
		Success: true,
		Message: "Admin login successful",
		Token:   token,
	}, nil
}

func (s *UserService) GetProfile(ctx context.Context, _ *GetProfileRequest) (*ProfileReply, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileReply{
		Success: true,
		Message: "Profile retrieved successfully",
		User:    userToDTO(user),
	}, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*ProfileReply, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.users.UpdateProfile(ctx, userID, &biz.UpdateProfileInput{
		Name:  req.Name,
		Image: req.Image,
	})
	if err != nil {
		return nil, err
	}
	return &ProfileReply{
		Success: true,
		Message: "Profile updated successfully",
		User:    userToDTO(user),
	}, nil
}

func (s *UserService) AddToWatchlist(ctx context.Context, req *AddToWatchlistRequest) (*AddToWatchlistReply, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	if req.MovieID == "" {
		return nil, biz.InvalidArgument("movieId is required")
	}
	item, err := s.watchlist.AddToWatchlist(ctx, userID, req.MovieID)
	if err != nil {
		return nil, err
	}
	return &AddToWatchlistReply{
		Success:       true,
		Message:       "Movie added to watchlist successfully",
		WatchlistItem: watchlistItemToDTO(item),
	}, nil
}

func (s *UserService) ListWatchlist(ctx context.Context, req *ListWatchlistRequest) (*ListWatchlistReply, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	page, err := s.watchlist.ListWatchlist(ctx, &biz.WatchlistQuery{
		UserID:    userID,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Page:      req.Page,
		Limit:     req.Limit,
	})
	if err != nil {
		return nil, err
	}

	reply := &ListWatchlistReply{
		Success:    true,
		Message:    "Watchlist retrieved successfully",
		Watchlist:  make([]*WatchlistItem, 0, len(page.Items)),
		Pagination: watchlistPagination(page.Pagination),
		Sort: WatchlistSort{
			SortBy:    string(page.Sort.Field),
			SortOrder: sortOrder(page.Sort.Desc),
		},
		User: &WatchlistOwner{
			ID:    page.User.ID,
			Name:  page.User.Name,
			Email: page.User.Email,
		},
	}
	for _, item := range page.Items {
		reply.Watchlist = append(reply.Watchlist, watchlistItemToDTO(item))
	}
	return reply, nil
}

func (s *UserService) RemoveFromWatchlist(ctx context.Context, req *RemoveFromWatchlistRequest) (*RemoveFromWatchlistReply, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	removed, err := s.watchlist.RemoveFromWatchlist(ctx, userID, req.MovieID)
	if err != nil {
		return nil, err
	}
	return &RemoveFromWatchlistReply{
		Success: true,
		Message: "Movie removed from watchlist successfully",
		RemovedMovie: &MovieSummary{
			ID:          removed.MovieID,
			Title:       removed.Title,
			ReleaseYear: removed.ReleaseYear,
		},
		RemovedAt: removed.RemovedAt,
	}, nil
}

func watchlistItemToDTO(item *biz.WatchlistItem) *WatchlistItem {
	return &WatchlistItem{
		ID:                 item.Entry.ID,
		Movie:              movieToDTO(item.Movie),
		DateAdded:          item.Entry.DateAdded,
		AddedToWatchlistAt: item.Entry.CreatedAt,
		LastUpdated:        item.Entry.UpdatedAt,
	}
}
