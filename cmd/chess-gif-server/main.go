package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Mego/chess-gif/internal/config"
	"github.com/Mego/chess-gif/internal/gamereader"
	"github.com/Mego/chess-gif/internal/gifcache"
	"github.com/Mego/chess-gif/internal/obslog"
	"github.com/Mego/chess-gif/pkg/board"
	"github.com/Mego/chess-gif/pkg/chessgif"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()

	var cache *gifcache.Cache
	if cfg.RedisURL != "" {
		cache, err = gifcache.New(cfg.RedisURL, time.Duration(cfg.CacheTTLSec)*time.Second)
		if err != nil {
			logger.Fatal("cache init failed", zap.Error(err))
		}
		defer cache.Close()
	}

	h := &handler{cfg: cfg, cache: cache, logger: logger}
	srv := &fasthttp.Server{
		Handler:            h.handle,
		Name:               "chess-gif",
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       30 * time.Second,
		MaxRequestBodySize: 1 << 20,
	}

	go func() {
		logger.Info("listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(cfg.ListenAddr); err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down")
	if err := srv.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

type handler struct {
	cfg    *config.AppConfig
	cache  *gifcache.Cache
	logger *zap.Logger
}

func (h *handler) handle(ctx *fasthttp.RequestCtx) {
	reqID := uuid.NewString()
	start := time.Now()
	logger := h.logger.With(zap.String("req_id", reqID), zap.ByteString("path", ctx.Path()))

	switch string(ctx.Path()) {
	case "/game.gif":
		h.handleGame(ctx, logger)
	case "/position.png":
		h.handlePosition(ctx, logger)
	case "/healthz":
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	default:
		ctx.Error("not found", fasthttp.StatusNotFound)
	}
	logger.Info("request",
		zap.Int("status", ctx.Response.StatusCode()),
		zap.Duration("elapsed", time.Since(start)))
}

func (h *handler) options(ctx *fasthttp.RequestCtx) chessgif.Options {
	opts := chessgif.Options{
		SquareSize:   h.cfg.SquareSize,
		DelayCS:      h.cfg.DelayCS,
		FinalDelayCS: h.cfg.FinalDelayCS,
		LoopCount:    h.cfg.LoopCount,
		Coordinates:  h.cfg.Coordinates,
		ThemeFile:    h.cfg.ThemeFile,
		Workers:      h.cfg.RenderWorkers,
	}
	args := ctx.QueryArgs()
	if args.Has("flip") {
		opts.Flipped = args.GetBool("flip")
	}
	if args.Has("coords") {
		opts.Coordinates = args.GetBool("coords")
	}
	if n, err := strconv.Atoi(string(args.Peek("square"))); err == nil && n > 0 {
		opts.SquareSize = n
	}
	return opts
}

func (h *handler) handleGame(ctx *fasthttp.RequestCtx, logger *zap.Logger) {
	args := ctx.QueryArgs()
	pgn := string(args.Peek("pgn"))
	movesParam := string(args.Peek("moves"))
	if pgn == "" && movesParam == "" && ctx.IsPost() {
		pgn = string(ctx.PostBody())
	}
	if pgn == "" && movesParam == "" {
		ctx.Error("missing pgn or moves", fasthttp.StatusBadRequest)
		return
	}

	var (
		positions []*board.Position
		metas     []*board.MoveMeta
		err       error
	)
	if movesParam != "" {
		moves := strings.FieldsFunc(movesParam, func(r rune) bool { return r == ',' || r == ' ' })
		if len(moves) > h.cfg.MaxRequestPlys {
			ctx.Error("too many plies", fasthttp.StatusBadRequest)
			return
		}
		positions, metas, err = gamereader.FromMoves(moves, board.Standard)
	} else {
		positions, metas, err = gamereader.FromPGN(pgn)
	}
	if err != nil {
		writeRenderError(ctx, logger, err)
		return
	}
	if len(positions) > h.cfg.MaxRequestPlys {
		ctx.Error("too many plies", fasthttp.StatusBadRequest)
		return
	}

	opts := h.options(ctx)
	key := gifcache.Key("game", movesParam, pgn,
		strconv.FormatBool(opts.Flipped), strconv.FormatBool(opts.Coordinates),
		strconv.Itoa(opts.SquareSize), strconv.Itoa(opts.DelayCS),
		strconv.Itoa(opts.FinalDelayCS), strconv.Itoa(opts.LoopCount))

	if h.cache != nil {
		if cached, cerr := h.cache.Get(ctx, key); cerr == nil && cached != nil {
			ctx.SetContentType("image/gif")
			ctx.SetBody(cached)
			return
		} else if cerr != nil {
			logger.Warn("cache get", zap.Error(cerr))
		}
	}

	gif, err := chessgif.RenderGame(positions, metas, opts)
	if err != nil {
		writeRenderError(ctx, logger, err)
		return
	}
	if h.cache != nil {
		if cerr := h.cache.Set(ctx, key, gif); cerr != nil {
			logger.Warn("cache set", zap.Error(cerr))
		}
	}
	ctx.SetContentType("image/gif")
	ctx.SetBody(gif)
}

func (h *handler) handlePosition(ctx *fasthttp.RequestCtx, logger *zap.Logger) {
	args := ctx.QueryArgs()
	fen := string(args.Peek("fen"))
	if fen == "" {
		ctx.Error("missing fen", fasthttp.StatusBadRequest)
		return
	}
	variant, err := board.ParseVariant(string(args.Peek("variant")))
	if err != nil {
		ctx.Error("unknown variant", fasthttp.StatusBadRequest)
		return
	}
	pos, err := board.ParseFEN(fen, variant)
	if err != nil {
		writeRenderError(ctx, logger, err)
		return
	}
	png, err := chessgif.RenderPosition(pos, nil, h.options(ctx))
	if err != nil {
		writeRenderError(ctx, logger, err)
		return
	}
	ctx.SetContentType("image/png")
	ctx.SetBody(png)
}

func writeRenderError(ctx *fasthttp.RequestCtx, logger *zap.Logger, err error) {
	var rerr *chessgif.RenderError
	status := fasthttp.StatusBadRequest
	if errors.As(err, &rerr) && rerr.Code != chessgif.CodeInvalidInput {
		// Asset and format-limit failures are server-side problems.
		status = fasthttp.StatusInternalServerError
	}
	if status == fasthttp.StatusInternalServerError {
		logger.Error("render failed", zap.Error(err))
	} else {
		logger.Info("rejected", zap.Error(err))
	}
	ctx.Error(err.Error(), status)
}
