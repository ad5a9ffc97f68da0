package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/configs"
	database "github.com/princekumar-dev/MSEC-Academics-sub001/internals/databases"
	dispatchsvc "github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/dispatch/service"
	importctrl "github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/imports/controller"
	importsvc "github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/imports/service"
	marksheetctrl "github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/controller"
	marksheetrepo "github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/repository"
	"github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/scheduler"
	marksvc "github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/marksheets/marksheet/service"
	notifctrl "github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/notifications/controller"
	notifrepo "github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/notifications/repository"
	notifsvc "github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/notifications/service"
	rendersvc "github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/render/service"
	userctrl "github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/users/controller"
	userrepo "github.com/princekumar-dev/MSEC-Academics-sub001/internals/features/users/repository"
	middlewares "github.com/princekumar-dev/MSEC-Academics-sub001/internals/middlewares"
	routes "github.com/princekumar-dev/MSEC-Academics-sub001/internals/route"
)

func main() {
	configs.LoadEnv()

	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		ProxyHeader:           fiber.HeaderXForwardedFor,
		BodyLimit:             16 * 1024 * 1024, // Excel uploads
	})

	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())

	// Request-ID + timing
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		start := time.Now()
		err := c.Next()
		log.Printf("[REQ] id=%s %s %s status=%d dur=%s", id, c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start))
		return err
	})

	middlewares.SetupMiddlewares(app)

	database.ConnectDB()
	database.EnsureIndexes()

	// ===================== REPOSITORIES =====================
	marksheets := marksheetrepo.NewMarksheetRepository(database.DB, database.ColMarksheets)
	users := userrepo.NewUserRepository(database.DB, database.ColUsers)
	notifications := notifrepo.NewNotificationRepository(database.DB, database.ColNotifications, database.ColSubscriptions)

	// ===================== SERVICES =====================
	push := notifsvc.NewPushService(notifications, configs.VAPIDPublicKey, configs.VAPIDPrivateKey, configs.VAPIDSubscriber)
	transport := dispatchsvc.NewTwilioTransport(configs.TwilioAccountSID, configs.TwilioAuthToken, configs.TwilioWhatsAppNumber)
	renderer := rendersvc.NewPDFService(
		configs.GetEnv("DOCUMENTS_DIR", "./public/documents"),
		configs.GetEnv("BASE_URL", "http://localhost:3000"),
		uint64(configs.GetEnvInt("RENDER_CACHE_CAPACITY", 512)),
		configs.GetEnvDuration("RENDER_CACHE_TTL", 30*time.Minute),
	)
	lifecycle := marksvc.NewLifecycleService(marksheets, push, users, renderer)
	dispatch := marksvc.NewDispatchService(marksheets, transport, push, renderer)
	importer := importsvc.NewImportService(lifecycle)

	// ===================== SCHEDULER =====================
	dispatchScheduler := scheduler.NewDispatchScheduler(marksheets, dispatch, push,
		scheduler.WithIntervals(
			configs.GetEnv("SCHEDULER_UPCOMING_SPEC", "@every 10m"),
			configs.GetEnv("SCHEDULER_DUE_SPEC", "@every 5m"),
		),
	)
	if configs.GetEnvBool("SCHEDULER_ENABLED", true) {
		if err := dispatchScheduler.Start(); err != nil {
			log.Fatalf("❌ Failed to start dispatch scheduler: %v", err)
		}
	} else {
		log.Println("⚠️ Dispatch scheduler disabled via SCHEDULER_ENABLED")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	routes.SetupRoutes(app, routes.Controllers{
		Auth:         userctrl.NewAuthController(users),
		Marksheet:    marksheetctrl.NewMarksheetController(marksheets, lifecycle, users),
		Dispatch:     marksheetctrl.NewDispatchController(lifecycle, dispatch, users),
		Scheduler:    marksheetctrl.NewSchedulerController(dispatchScheduler),
		Import:       importctrl.NewImportController(importer, users),
		Notification: notifctrl.NewNotificationController(notifications),
	})

	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dispatchScheduler.Stop(ctx)
	_ = app.ShutdownWithContext(ctx)
	renderer.Close()
	database.Disconnect()
}
