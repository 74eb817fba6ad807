package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/flosch/pongo2/v6"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/ttm-go/tweetmd/config"
	"github.com/ttm-go/tweetmd/markdown"
	"github.com/ttm-go/tweetmd/notes"
	"github.com/ttm-go/tweetmd/thread"
	"github.com/ttm-go/tweetmd/tweet"
)

//go:embed templates/*
var TemplateFS embed.FS

var cmdServe = &cli.Command{
	Name:  "serve",
	Usage: "run an HTTP service that renders tweets to Markdown and HTML",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "bind",
			Usage:   "local IP/port to bind to",
			Value:   ":8300",
			EnvVars: []string{"TWEETMD_BIND"},
		},
		&cli.StringFlag{
			Name:    "bearer-token",
			Usage:   "Twitter API bearer token, or a TTM service key",
			EnvVars: []string{"TTM_API_KEY", "TWITTER_BEARER_TOKEN"},
		},
	},
	Action: runServe,
}

// The middleware registers its collectors globally, so it is built once per
// process.
var metricsMiddleware = sync.OnceValue(func() echo.MiddlewareFunc {
	return echoprometheus.NewMiddleware("tweetmd")
})

type Server struct {
	echo     *echo.Echo
	httpd    *http.Server
	fetcher  thread.Fetcher
	settings *config.Settings
	logger   *slog.Logger
}

func runServe(cctx *cli.Context) error {
	settings, err := loadSettings(cctx)
	if err != nil {
		return err
	}
	f, err := newFetcher(settings)
	if err != nil {
		return err
	}
	shutdownOTEL, err := configOTEL("tweetmd")
	if err != nil {
		return err
	}
	defer shutdownOTEL()

	srv, err := NewServer(f, settings, slog.Default())
	if err != nil {
		return err
	}
	httpAddress := cctx.String("bind")

	// httpd
	var (
		httpTimeout        = 1 * time.Minute
		httpMaxHeaderBytes = 1 * (1024 * 1024)
	)
	srv.httpd = &http.Server{
		Handler:        srv,
		Addr:           httpAddress,
		WriteTimeout:   httpTimeout,
		ReadTimeout:    httpTimeout,
		MaxHeaderBytes: httpMaxHeaderBytes,
	}

	// Start the server
	slog.Info("starting server", "bind", httpAddress)
	go func() {
		if err := srv.httpd.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				slog.Error("HTTP server shutting down unexpectedly", "err", err)
			}
		}
	}()

	// Wait for a signal to exit.
	slog.Info("registering OS exit signal handler")
	quit := make(chan struct{})
	exitSignals := make(chan os.Signal, 1)
	signal.Notify(exitSignals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-exitSignals
		slog.Info("received OS exit signal", "signal", sig)

		// Shut down the HTTP server
		if err := srv.Shutdown(); err != nil {
			slog.Error("HTTP server shutdown error", "err", err)
		}

		// Trigger the return that causes an exit.
		close(quit)
	}()
	<-quit
	slog.Info("graceful shutdown complete")
	return nil
}

// NewServer wires up routes. Rendering never writes to disk: asset
// downloads are turned off for every request.
func NewServer(f thread.Fetcher, settings *config.Settings, logger *slog.Logger) (*Server, error) {
	renderer, err := NewRenderer(TemplateFS, "templates")
	if err != nil {
		return nil, err
	}
	s := *settings
	s.DownloadAssets = false

	e := echo.New()
	srv := &Server{
		echo:     e,
		fetcher:  f,
		settings: &s,
		logger:   logger.With("system", "serve"),
	}

	e.HideBanner = true
	e.Renderer = renderer
	e.HTTPErrorHandler = srv.errorHandler
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())
	e.Use(otelecho.Middleware("tweetmd"))
	e.Use(metricsMiddleware())
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		HSTSMaxAge:         31536000, // 365 days
	}))

	e.GET("/_health", srv.HandleHealthCheck)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/", srv.WebHome)
	e.GET("/v1/markdown", srv.HandleMarkdown)
	e.GET("/v1/html", srv.HandleHTML)
	return srv, nil
}

type GenericStatus struct {
	Daemon  string `json:"daemon"`
	Status  string `json:"status"`
	Message string `json:"msg,omitempty"`
}

func (srv *Server) errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	var errorMessage string
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		errorMessage = fmt.Sprintf("%s", he.Message)
	}
	if code >= 500 {
		srv.logger.Warn("tweetmd-http-internal-error", "err", err)
	}
	if c.Response().Committed {
		return
	}
	if strings.HasPrefix(c.Path(), "/v1/") {
		c.JSON(code, GenericStatus{Daemon: "tweetmd", Status: "error", Message: errorMessage})
		return
	}
	data := pongo2.Context{
		"statusCode":   code,
		"errorMessage": errorMessage,
	}
	c.Render(code, "error.html", data)
}

func (srv *Server) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	srv.echo.ServeHTTP(rw, req)
}

func (srv *Server) Shutdown() error {
	slog.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.httpd.Shutdown(ctx)
}

func (srv *Server) HandleHealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, GenericStatus{Status: "ok", Daemon: "tweetmd"})
}

func (srv *Server) WebHome(c echo.Context) error {
	info := pongo2.Context{
		"modes": []string{markdown.ModeNormal.String(), markdown.ModeEmbed.String()},
	}
	return c.Render(http.StatusOK, "home.html", info)
}

// statusForError maps fetch and render failures onto HTTP errors.
func statusForError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, tweet.ErrMalformedInput), errors.Is(err, markdown.ErrMissingPreviousAuthor):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, tweet.ErrPostUnavailable):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, tweet.ErrThreadBroken):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, tweet.ErrAuth), errors.Is(err, tweet.ErrConnectivity):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (srv *Server) render(c echo.Context) (string, error) {
	ctx := c.Request().Context()

	raw := c.QueryParam("url")
	if raw == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "url query parameter is required")
	}
	id, err := notes.ResolveID(raw)
	if err != nil {
		return "", statusForError(err)
	}
	mode, err := markdown.ParseMode(c.QueryParam("mode"))
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	threaded := false
	if v := c.QueryParam("thread"); v != "" {
		threaded, err = strconv.ParseBool(v)
		if err != nil {
			return "", echo.NewHTTPError(http.StatusBadRequest, "thread must be a boolean")
		}
	}

	r := &markdown.Renderer{
		Settings: srv.settings,
		Fetcher:  srv.fetcher,
		Logger:   srv.logger,
	}
	var md string
	if threaded {
		chain, err := thread.BuildChain(ctx, id, srv.fetcher, srv.settings.CondensedThread)
		if err != nil {
			return "", statusForError(err)
		}
		md, err = markdown.RenderChain(ctx, r, chain)
		if err != nil {
			return "", statusForError(err)
		}
	} else {
		post, err := srv.fetcher.FetchPost(ctx, id)
		if err != nil {
			return "", statusForError(err)
		}
		md, err = r.Render(ctx, post, mode, nil)
		if err != nil {
			return "", statusForError(err)
		}
	}
	return markdown.CollapseBlankLines(md), nil
}

func (srv *Server) HandleMarkdown(c echo.Context) error {
	md, err := srv.render(c)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
}

func (srv *Server) HandleHTML(c echo.Context) error {
	md, err := srv.render(c)
	if err != nil {
		return err
	}
	body, err := markdown.ToHTML(md)
	if err != nil {
		return err
	}
	info := pongo2.Context{
		"url":  c.QueryParam("url"),
		"body": body,
	}
	return c.Render(http.StatusOK, "preview.html", info)
}

// Renderer executes pongo2 templates loaded once from fsys.
type Renderer struct {
	templates map[string]*pongo2.Template
}

func NewRenderer(fsys fs.FS, dir string) (*Renderer, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	r := &Renderer{templates: make(map[string]*pongo2.Template)}
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		b, err := fs.ReadFile(fsys, dir+"/"+ent.Name())
		if err != nil {
			return nil, err
		}
		tpl, err := pongo2.FromString(string(b))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", ent.Name(), err)
		}
		r.templates[ent.Name()] = tpl
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("no such template: %s", name)
	}
	ctx, ok := data.(pongo2.Context)
	if !ok {
		ctx = pongo2.Context{}
	}
	return tpl.ExecuteWriter(ctx, w)
}
