package main

import (
	"context"
	"io"
	"time"

	"github.com/spf13/viper"
	"gorm.io/gorm"

	"memorial/internal/config"
	"memorial/internal/database"
	"memorial/internal/submissions"
	"memorial/pkg/cache"
	"memorial/pkg/imageproc"
	"memorial/pkg/logger"
	"memorial/pkg/mailer"
	"memorial/pkg/oembed"
	"memorial/pkg/storage"
	"memorial/pkg/utils"
)

// app bundles what every command needs: config, database, media storage
// and the submission service on top of them.
type app struct {
	conf  *config.Config
	viper *viper.Viper
	db    *gorm.DB
	store storage.Storage
	pages *cache.MemoryCache
	subs  *submissions.Service
}

func loadApp(ctx context.Context) *app {
	v := config.Load(configFile)
	conf := config.AppConfig

	db := database.InitDB(conf.Database, conf.Server.Env)

	store, err := storage.New(ctx, storage.Options{
		Backend:   conf.Media.Backend,
		Root:      conf.Media.Root,
		URL:       conf.Media.URL,
		Bucket:    conf.Media.Bucket,
		ProjectID: conf.Media.ProjectID,
	})
	if err != nil {
		logger.LogFatal("Media storage init failed: %v", err)
	}

	pages := cache.New(cache.Options{
		Enabled:     conf.Cache.Enabled,
		MaxCapacity: conf.Cache.MaxCapacity,
		TTL:         utils.ParseDuration(conf.Cache.TTL, cache.DefaultTTL),
	})

	// A nil *Resolver must not end up inside the interface.
	var embedder submissions.Embedder
	if conf.Embed.Enabled {
		embedder = oembed.NewResolver(oembed.Options{
			Timeout:  utils.ParseDuration(conf.Embed.Timeout, oembed.DefaultTimeout),
			MaxWidth: conf.Embed.MaxWidth,
		})
	}

	notifier := &mailer.Sendmail{
		To:      conf.Notification.Email,
		From:    conf.Notification.From,
		Command: conf.Notification.Command,
		Timeout: utils.ParseDuration(conf.Notification.Timeout, mailer.DefaultTimeout),
	}

	subs := submissions.NewService(submissions.Options{
		DB:       db,
		Storage:  store,
		Embedder: embedder,
		Notifier: notifier,
		Images: imageproc.Options{
			MaxDimension: conf.Media.MaxDimension,
			Quality:      conf.Media.JPEGQuality,
		},
		BaseURL:  conf.GetBaseUrl(),
		OnChange: pages.Purge,
	})

	return &app{conf: conf, viper: v, db: db, store: store, pages: pages, subs: subs}
}

func (a *app) Close() {
	if c, ok := a.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logger.LogWarn("Closing media storage: %v", err)
		}
	}
	if err := database.Close(a.db); err != nil {
		logger.LogWarn("Closing database: %v", err)
	}
}

// cliContext bounds one-shot commands.
func cliContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, 5*time.Minute)
}
