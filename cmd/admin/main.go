package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"cmsTheme/internal/config"
	"cmsTheme/internal/database"
	"cmsTheme/internal/tasks"
)

func main() {
	var (
		migrate       = flag.Bool("migrate", false, "执行数据库迁移")
		syncSlug      = flag.String("sync", "", "从蓝图目录同步指定 slug 的主题")
		tenant        = flag.Uint("tenant", 0, "同步目标租户 ID（0 表示中心站点）")
		activate      = flag.Bool("activate", false, "同步后激活主题")
		publish       = flag.Uint("publish", 0, "发布指定 ID 的主题")
		recompilePage = flag.Uint("recompile-page", 0, "重编译指定 ID 的页面")
		recompilePart = flag.Uint("recompile-part", 0, "重编译指定 ID 的主题部件")
	)
	flag.Parse()

	if !*migrate && strings.TrimSpace(*syncSlug) == "" && *publish == 0 && *recompilePage == 0 && *recompilePart == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if *migrate {
		db, err := database.InitDatabase(cfg.Database)
		if err != nil {
			log.Fatalf("init database: %v", err)
		}
		if err := database.Migrate(db); err != nil {
			log.Fatalf("auto migrate: %v", err)
		}
		fmt.Println("数据库迁移完成")
	}

	if strings.TrimSpace(*syncSlug) == "" && *publish == 0 && *recompilePage == 0 && *recompilePart == 0 {
		return
	}

	client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr()})
	defer func() {
		_ = client.Close()
	}()
	dispatcher := tasks.NewDispatcher(client)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	correlationID := uuid.NewString()
	if err := enqueue(ctx, dispatcher, request{
		syncSlug:      strings.TrimSpace(*syncSlug),
		tenant:        *tenant,
		activate:      *activate,
		publish:       *publish,
		recompilePage: *recompilePage,
		recompilePart: *recompilePart,
	}, correlationID); err != nil {
		log.Fatalf("enqueue: %v", err)
	}
	fmt.Printf("任务已投递，correlation_id=%s\n", correlationID)
}

type request struct {
	syncSlug      string
	tenant        uint
	activate      bool
	publish       uint
	recompilePage uint
	recompilePart uint
}

func enqueue(ctx context.Context, d *tasks.Dispatcher, req request, correlationID string) error {
	var errs []error
	if req.syncSlug != "" {
		payload := tasks.ThemeSyncPayload{Slug: req.syncSlug, Activate: req.activate, CorrelationID: correlationID}
		if req.tenant != 0 {
			tenantID := req.tenant
			payload.TenantID = &tenantID
		}
		errs = append(errs, d.SyncTheme(ctx, payload))
	}
	if req.publish != 0 {
		errs = append(errs, d.PublishTheme(ctx, req.publish, correlationID))
	}
	if req.recompilePage != 0 {
		errs = append(errs, d.RecompilePage(ctx, req.recompilePage, correlationID))
	}
	if req.recompilePart != 0 {
		errs = append(errs, d.RecompileThemePart(ctx, req.recompilePart, correlationID))
	}
	return errors.Join(errs...)
}
