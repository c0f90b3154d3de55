package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/auth/jwt"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/middleware/selector"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	jwtv5 "github.com/golang-jwt/jwt/v5"

	"moviereview/internal/biz"
	"moviereview/internal/conf"
	"moviereview/internal/pkg/auth"
	"moviereview/internal/service"
)

const (
	maxMultipartMemory = 8 << 20
	maxImageBytes      = 5 << 20
)

// NewHTTPServer new an HTTP server.
func NewHTTPServer(
	c *conf.Server,
	tokens *auth.TokenManager,
	movieSvc *service.MovieService,
	reviewSvc *service.ReviewService,
	userSvc *service.UserService,
	logger log.Logger,
) *khttp.Server {
	protected := append(append([]string{}, service.AdminOperations...), service.UserOperations...)

	var opts = []khttp.ServerOption{
		khttp.Middleware(
			recovery.Recovery(),
			RequestID(),
			MaskInternal(),
			logging.Server(logger),
			selector.Server(
				jwt.Server(
					tokens.Keyfunc,
					jwt.WithSigningMethod(jwtv5.SigningMethodHS256),
					jwt.WithClaims(auth.NewClaims),
				),
			).Path(protected...).Build(),
			selector.Server(RequireAdmin()).Path(service.AdminOperations...).Build(),
		),
	}
	if c.HTTP != nil {
		if c.HTTP.Network != "" {
			opts = append(opts, khttp.Network(c.HTTP.Network))
		}
		if c.HTTP.Addr != "" {
			opts = append(opts, khttp.Address(c.HTTP.Addr))
		}
		if c.HTTP.Timeout != nil {
			opts = append(opts, khttp.Timeout(c.HTTP.Timeout.AsDuration()))
		}
	}
	srv := khttp.NewServer(opts...)
	srv.HandleFunc("/healthz", healthz)
	registerRoutes(srv, movieSvc, reviewSvc, userSvc)
	return srv
}

func registerRoutes(srv *khttp.Server, movieSvc *service.MovieService, reviewSvc *service.ReviewService, userSvc *service.UserService) {
	r := srv.Route("/")

	r.POST("/api/admin/login", route(service.OperationAdminLogin, http.StatusOK, bindBody[service.LoginRequest], userSvc.AdminLogin))

	r.POST("/api/movie/add", route(service.OperationAddMovie, http.StatusCreated, bindBody[service.AddMovieRequest], movieSvc.AddMovie))
	r.POST("/api/movie/poster", route(service.OperationUploadPoster, http.StatusCreated, bindPoster, movieSvc.UploadPoster))
	r.GET("/api/movie", route(service.OperationListMovies, http.StatusOK, bindQuery[service.ListMoviesRequest], movieSvc.ListMovies))
	r.GET("/api/movie/{id}", route(service.OperationGetMovie, http.StatusOK, bindVars[service.GetMovieRequest], movieSvc.GetMovie))

	r.POST("/api/review/submit", route(service.OperationSubmitReview, http.StatusCreated, bindBody[service.SubmitReviewRequest], reviewSvc.SubmitReview))

	r.POST("/api/user/register", route(service.OperationRegister, http.StatusCreated, bindBody[service.RegisterRequest], userSvc.Register))
	r.POST("/api/user/login", route(service.OperationLogin, http.StatusOK, bindBody[service.LoginRequest], userSvc.Login))
	r.GET("/api/user/profile", route(service.OperationGetProfile, http.StatusOK, nil, userSvc.GetProfile))
	r.POST("/api/user/update-profile", route(service.OperationUpdateProfile, http.StatusOK, bindProfile, userSvc.UpdateProfile))
	r.POST("/api/user/watchlist", route(service.OperationAddToWatchlist, http.StatusCreated, bindBody[service.AddToWatchlistRequest], userSvc.AddToWatchlist))
	r.GET("/api/user/watchlist", route(service.OperationListWatchlist, http.StatusOK, bindQuery[service.ListWatchlistRequest], userSvc.ListWatchlist))
	r.DELETE("/api/user/watchlist/{movieId}", route(service.OperationRemoveFromWatchlist, http.StatusOK, bindVars[service.RemoveFromWatchlistRequest], userSvc.RemoveFromWatchlist))
}

// route decodes the request, runs it through the server middleware under
// operation and writes the reply with status.
func route[Req, Reply any](
	operation string,
	status int,
	bind func(khttp.Context, *Req) error,
	call func(context.Context, *Req) (*Reply, error),
) khttp.HandlerFunc {
	return func(ctx khttp.Context) error {
		var in Req
		if bind != nil {
			if err := bind(ctx, &in); err != nil {
				return err
			}
		}
		khttp.SetOperation(ctx, operation)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(ctx, req.(*Req))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(status, out)
	}
}

func bindBody[T any](ctx khttp.Context, in *T) error {
	return ctx.Bind(in)
}

func bindQuery[T any](ctx khttp.Context, in *T) error {
	return ctx.BindQuery(in)
}

func bindVars[T any](ctx khttp.Context, in *T) error {
	return ctx.BindVars(in)
}

func bindPoster(ctx khttp.Context, in *service.UploadPosterRequest) error {
	req := ctx.Request()
	if err := req.ParseMultipartForm(maxMultipartMemory); err != nil {
		return biz.InvalidArgument("expected a multipart form with an image part")
	}
	image, err := formImage(req, "image")
	if err != nil {
		return err
	}
	if image == nil {
		return biz.InvalidArgument("image is required")
	}
	in.Image = image
	return nil
}

// bindProfile accepts a multipart form (name, optional image) or a JSON body.
func bindProfile(ctx khttp.Context, in *service.UpdateProfileRequest) error {
	req := ctx.Request()
	if !strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/") {
		return ctx.Bind(in)
	}
	if err := req.ParseMultipartForm(maxMultipartMemory); err != nil {
		return biz.InvalidArgument("invalid multipart form")
	}
	in.Name = req.FormValue("name")
	image, err := formImage(req, "image")
	if err != nil {
		return err
	}
	in.Image = image
	return nil
}

// formImage reads the named file part into memory. A missing part yields nil.
func formImage(req *http.Request, field string) (*biz.Image, error) {
	file, header, err := req.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, biz.InvalidArgument("invalid %s part", field)
	}
	defer file.Close()

	body, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxImageBytes {
		return nil, biz.InvalidArgument("%s must be at most %d bytes", field, maxImageBytes)
	}
	return &biz.Image{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        int64(len(body)),
		Body:        bytes.NewReader(body),
	}, nil
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
