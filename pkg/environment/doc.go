// Package environment carries the deployment environment (development,
// staging, production) through process configuration, request contexts and
// structured logs.
//
// The environment decides production-only behaviour such as the Secure flag on
// session and federation cookies:
//
//	env := environment.Parse(cfg.Env)
//	sessions := session.New(session.WithSecureCookies(env.IsProduction()), ...)
//
// Middleware attaches the value to every request context and LoggerExtractor
// exposes it to the logger decorator:
//
//	r.Use(environment.Middleware(env))
//	log := logger.New(logger.WithContextExtractors(environment.LoggerExtractor()))
package environment
