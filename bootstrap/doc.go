// Package bootstrap runs a finite client task with uniform lifecycle
// management: logger initialization, optional telemetry export, start of the
// document-store component, a startup summary, signal-driven cancellation and
// graceful shutdown.
//
//	cfg, err := config.Load("cradle")
//	app, err := bootstrap.NewApp(cfg)
//	err = app.RunTask(ctx, func(ctx context.Context, app *bootstrap.App) error {
//	    resp, err := app.Request().WithPath("/_all_dbs").Execute(ctx)
//	    ...
//	})
package bootstrap
