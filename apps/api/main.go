package main

import (
	"context"
	"fmt"
	"log"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/kadai/apps/api/echo"
	"github.com/trezcool/kadai/core"
	"github.com/trezcool/kadai/core/attendance"
	"github.com/trezcool/kadai/core/chart"
	"github.com/trezcool/kadai/core/homework"
	"github.com/trezcool/kadai/core/lesson"
	"github.com/trezcool/kadai/services/logger"
	"github.com/trezcool/kadai/services/messaging"
	"github.com/trezcool/kadai/services/scheduler"
	"github.com/trezcool/kadai/storage/database"
	"github.com/trezcool/kadai/storage/database/inmem"
	"github.com/trezcool/kadai/storage/database/sqlx"
)

type repositories struct {
	chart    chart.Repository
	lesson   lesson.Repository
	homework homework.Repository
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	loc, err := conf.Location()
	if err != nil {
		log.Fatalf("loading timezone %q: %v", conf.Timezone, err)
	}

	// set up logger
	local, err := logsvc.NewLocalLogger("api", conf.Debug)
	if err != nil {
		log.Fatalf("setting up logger: %v", err)
	}
	logger := logsvc.NewRollbarLogger(local, conf)
	logger.Enable(!conf.Debug)
	defer logger.Sync()

	if !conf.Debug && conf.Line.ChannelSecret == "" {
		logger.Fatal("line.channelSecret is required outside debug mode")
	}

	// set up DB
	repos, closeDB, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = closeDB(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	// set up services
	var messenger core.Messenger
	if conf.Debug {
		messenger = msgsvc.NewConsoleService(logger)
	} else {
		messenger = msgsvc.NewLineService(conf)
	}

	chartSvc := chart.NewService(repos.chart, chart.DefaultTimetable)
	lessonSvc := lesson.NewService(repos.lesson)
	homeworkSvc := homework.NewService(repos.homework)
	attendanceSvc := attendance.NewService(attendance.Options{
		Slots:          repos.chart,
		Lessons:        lessonSvc,
		Messenger:      messenger,
		Logger:         logger,
		Timetable:      chartSvc.Timetable(),
		Location:       loc,
		PresentKeyword: conf.Attendance.PresentKeyword,
		ReplyTimeout:   conf.Line.ReplyTimeout,
	})

	if conf.Database.Engine == database.EngineInMemory {
		if err = chartSvc.Seed(context.Background()); err != nil {
			logger.Fatal(fmt.Sprintf("seeding chart: %v", err), err)
		}
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	// =========================================================================
	// Start Due-Date Sweeper

	sweeper := homework.NewSweeper(repos.homework, logger, loc)
	sched := schedsvc.NewScheduler(logger, loc)
	err = sched.Every(conf.Sweeper.Schedule, "sweep", conf.Sweeper.Timeout, func(ctx context.Context) error {
		res, err := sweeper.Sweep(ctx)
		if res.MarkedLate > 0 || res.Malformed > 0 {
			logger.Info("swept homeworks", map[string]interface{}{
				"checked":     res.Checked,
				"marked_late": res.MarkedLate,
				"malformed":   res.Malformed,
			})
		}
		return err
	})
	if err != nil {
		logger.Fatal(fmt.Sprintf("scheduling sweeper: %v", err), err)
	}
	sched.Start()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			HomeworkSvc:   homeworkSvc,
			LessonSvc:     lessonSvc,
			ChartSvc:      chartSvc,
			AttendanceSvc: attendanceSvc,
			Validate:      validate,
			Translator:    translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
	}

	// give outstanding requests and the running sweep a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()

	if err = sched.Stop(ctx); err != nil {
		logger.Error(fmt.Sprintf("could not stop sweeper gracefully: %v", err), err)
	}

	// asking listener to shutdown and shed load
	if err = server.Shutdown(ctx); err != nil {
		logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

		if err = server.Close(); err != nil {
			logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
		}
	}
}

func setUpDB(conf *core.Config) (repositories, func() error, error) {
	if conf.Database.Engine == database.EngineInMemory {
		db := inmemdb.Open()
		return repositories{
			chart:    inmemdb.NewChartRepository(db),
			lesson:   inmemdb.NewLessonRepository(db),
			homework: inmemdb.NewHomeworkRepository(db),
		}, func() error { return nil }, nil
	}

	db, err := openDB(conf)
	if err != nil {
		return repositories{}, nil, err
	}
	return repositories{
		chart:    sqlxrepos.NewChartRepository(db),
		lesson:   sqlxrepos.NewLessonRepository(db),
		homework: sqlxrepos.NewHomeworkRepository(db),
	}, db.Close, nil
}

func openDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
