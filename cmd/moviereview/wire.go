//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"

	"moviereview/internal/biz"
	"moviereview/internal/conf"
	"moviereview/internal/data"
	"moviereview/internal/pkg/auth"
	"moviereview/internal/server"
	"moviereview/internal/service"
)

// wireApp init kratos application.
func wireApp(*conf.Server, *conf.Data, *conf.Auth, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(
		server.ProviderSet,
		data.ProviderSet,
		biz.ProviderSet,
		service.ProviderSet,
		auth.NewTokenManager,
		wire.Bind(new(biz.TokenIssuer), new(*auth.TokenManager)),
		newApp,
	))
}
