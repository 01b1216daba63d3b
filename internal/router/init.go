package router

import (
	"github.com/oksasatya/go-portfolio-tracker/internal/application"
	"github.com/oksasatya/go-portfolio-tracker/internal/container"
	handlers "github.com/oksasatya/go-portfolio-tracker/internal/interface/http"
	"github.com/oksasatya/go-portfolio-tracker/internal/router/modules"
)

type AuthModuleDeps struct {
	Service *application.AuthService
	Handler *handlers.AuthHandler
}

func buildAuthDeps(c *container.Container, notifier *application.Notifier) AuthModuleDeps {
	service := application.NewAuthService(c.Users, c.JWT, notifier, c.Logger)
	return AuthModuleDeps{Service: service, Handler: handlers.NewAuthHandler(service)}
}

type PortfolioModuleDeps struct {
	Service *application.PortfolioService
	Handler *handlers.PortfolioHandler
}

func buildPortfolioDeps(c *container.Container) PortfolioModuleDeps {
	service := application.NewPortfolioService(c.Portfolio, c.Prices, c.Uploader, c.Logger)
	return PortfolioModuleDeps{Service: service, Handler: handlers.NewPortfolioHandler(service)}
}

type TransactionModuleDeps struct {
	Service *application.TransactionService
	Handler *handlers.TransactionHandler
}

func buildTransactionDeps(c *container.Container, notifier *application.Notifier) TransactionModuleDeps {
	service := application.NewTransactionService(c.Portfolio, c.Users, c.Search, notifier, c.Logger)
	return TransactionModuleDeps{Service: service, Handler: handlers.NewTransactionHandler(service)}
}

// InitModules builds services and handlers from the container and registers
// every module with the registry. Call once during startup.
func InitModules(r *Registry, c *container.Container) {
	notifier := application.NewNotifier(c.Publisher, c.Config, c.Logger)
	limits := modules.Limits{
		Redis:  c.Redis,
		Auth:   c.Config.RateLimitAuth,
		User:   c.Config.RateLimitUser,
		Window: c.Config.RateLimitWindow,
	}

	auth := buildAuthDeps(c, notifier)
	portfolio := buildPortfolioDeps(c)
	transactions := buildTransactionDeps(c, notifier)

	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(c.Checks)))
	r.Add(modules.NewAuthModule(auth.Handler, limits))
	r.Add(modules.NewPortfolioModule(portfolio.Handler, auth.Service, limits))
	r.Add(modules.NewTransactionModule(transactions.Handler, auth.Service, limits))
	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(limits))
	}
}
