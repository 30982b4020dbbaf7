package main

import (
	"net/http"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mk-yl/convocation-portal/internal/repository"
	"github.com/Mk-yl/convocation-portal/internal/service"
	"github.com/Mk-yl/convocation-portal/internal/workflow"
	"github.com/Mk-yl/convocation-portal/pkg/config"
	"github.com/Mk-yl/convocation-portal/pkg/logger"
	"github.com/Mk-yl/convocation-portal/pkg/storage"
)

type globalFlags struct {
	upstream string
	outDir   string
	verbose  bool
	json     bool
}

// services are built once per invocation from the resolved configuration.
type services struct {
	cfg          *config.Config
	logger       *zap.Logger
	convocations *repository.ConvocationRepository
	references   *service.ReferenceService
	exports      *service.ExportService
	storage      *storage.LocalStorage
}

type commandContext struct {
	flags *globalFlags

	once sync.Once
	svc  *services
	err  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) services() (*services, error) {
	c.once.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			c.err = err
			return
		}
		if upstream := strings.TrimSpace(c.flags.upstream); upstream != "" {
			cfg.Upstream.BaseURL = strings.TrimRight(upstream, "/")
		}
		if out := strings.TrimSpace(c.flags.outDir); out != "" {
			cfg.Downloads.Dir = out
		}

		logr, err := logger.NewConsole(c.flags.verbose)
		if err != nil {
			c.err = err
			return
		}
		store, err := storage.NewLocalStorage(cfg.Downloads.Dir)
		if err != nil {
			c.err = err
			return
		}

		upstream := repository.NewUpstreamClient(cfg.Upstream.BaseURL, &http.Client{}, nil, logr)
		c.svc = &services{
			cfg:    cfg,
			logger: logr,
			convocations: repository.NewConvocationRepository(upstream, repository.ConvocationTimeouts{
				Default:  cfg.Upstream.Timeout,
				Generate: cfg.Upstream.GenerateTimeout,
				Download: cfg.Upstream.DownloadTimeout,
				Email:    cfg.Upstream.EmailTimeout,
			}),
			references: service.NewReferenceService(repository.NewReferenceRepository(upstream, cfg.Upstream.Timeout), nil, nil, logr),
			exports:    service.NewExportService(store, logr, nil, nil),
			storage:    store,
		}
	})
	return c.svc, c.err
}

// stageEnv routes notifications to the terminal and the debug log.
func (c *commandContext) stageEnv(cmd *cobra.Command, svc *services) workflow.Env {
	return workflow.Env{
		Notifier: workflow.Fanout(newPrinter(cmd.ErrOrStderr()), workflow.NewLogNotifier(svc.logger)),
		Logger:   svc.logger,
	}
}
