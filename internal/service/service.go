package service

import (
	"context"

	"github.com/google/wire"

	"moviereview/internal/biz"
	"moviereview/internal/pkg/auth"
)

// ProviderSet is service providers.
var ProviderSet = wire.NewSet(NewMovieService, NewReviewService, NewUserService)

// Operation names, used by the server middleware selectors and in access logs.
const (
	OperationAdminLogin          = "/moviereview.v1.UserService/AdminLogin"
	OperationRegister            = "/moviereview.v1.UserService/Register"
	OperationLogin               = "/moviereview.v1.UserService/Login"
	OperationGetProfile          = "/moviereview.v1.UserService/GetProfile"
	OperationUpdateProfile       = "/moviereview.v1.UserService/UpdateProfile"
	OperationAddToWatchlist      = "/moviereview.v1.UserService/AddToWatchlist"
	OperationListWatchlist       = "/moviereview.v1.UserService/ListWatchlist"
	OperationRemoveFromWatchlist = "/moviereview.v1.UserService/RemoveFromWatchlist"
	OperationAddMovie            = "/moviereview.v1.MovieService/AddMovie"
	OperationUploadPoster        = "/moviereview.v1.MovieService/UploadPoster"
	OperationListMovies          = "/moviereview.v1.MovieService/ListMovies"
	OperationGetMovie            = "/moviereview.v1.MovieService/GetMovie"
	OperationSubmitReview        = "/moviereview.v1.ReviewService/SubmitReview"
)

// AdminOperations require a token with the admin role.
var AdminOperations = []string{
	OperationAddMovie,
	OperationUploadPoster,
}

// UserOperations require a token with the user role.
var UserOperations = []string{
	OperationGetProfile,
	OperationUpdateProfile,
	OperationAddToWatchlist,
	OperationListWatchlist,
	OperationRemoveFromWatchlist,
	OperationSubmitReview,
}

// currentUserID returns the subject of the caller's user token.
func currentUserID(ctx context.Context) (string, error) {
	claims, ok := auth.FromContext(ctx)
	if !ok || claims.Subject == "" || claims.Role != auth.RoleUser {
		return "", biz.ErrUnauthenticated
	}
	return claims.Subject, nil
}
