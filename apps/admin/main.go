package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	_ "time/tzdata"

	"github.com/trezcool/kadai/core"
	"github.com/trezcool/kadai/core/attendance"
	"github.com/trezcool/kadai/core/chart"
	"github.com/trezcool/kadai/core/homework"
	"github.com/trezcool/kadai/core/lesson"
	"github.com/trezcool/kadai/services/logger"
	"github.com/trezcool/kadai/services/messaging"
	"github.com/trezcool/kadai/storage/database"
	"github.com/trezcool/kadai/storage/database/inmem"
	"github.com/trezcool/kadai/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	loc, err := conf.Location()
	if err != nil {
		log.Fatalf("loading timezone %q: %v", conf.Timezone, err)
	}

	local, err := logsvc.NewLocalLogger("admin", true)
	if err != nil {
		log.Fatalf("setting up logger: %v", err)
	}
	logger := logsvc.NewRollbarLogger(local, conf)
	logger.Enable(false)

	var (
		db         *sql.DB
		chartRepo  chart.Repository
		lessonRepo lesson.Repository
		hwRepo     homework.Repository
	)
	if conf.Database.Engine == database.EngineInMemory {
		mem := inmemdb.Open()
		chartRepo = inmemdb.NewChartRepository(mem)
		lessonRepo = inmemdb.NewLessonRepository(mem)
		hwRepo = inmemdb.NewHomeworkRepository(mem)
	} else {
		sqlxDB, err := database.Open(conf)
		if err != nil {
			log.Fatalf("opening database: %v", err)
		}
		defer func() { _ = sqlxDB.Close() }()
		if err = database.Ping(sqlxDB, 10); err != nil {
			log.Fatalf("pinging database: %v", err)
		}
		db = sqlxDB.DB
		chartRepo = sqlxrepos.NewChartRepository(sqlxDB)
		lessonRepo = sqlxrepos.NewLessonRepository(sqlxDB)
		hwRepo = sqlxrepos.NewHomeworkRepository(sqlxDB)
	}

	lessonSvc := lesson.NewService(lessonRepo)

	// start CLI
	cli := commandLine{
		db:       db,
		out:      os.Stdout,
		chartSvc: chart.NewService(chartRepo, chart.DefaultTimetable),
		sweeper:  homework.NewSweeper(hwRepo, logger, loc),
		attendanceSvc: attendance.NewService(attendance.Options{
			Slots:          chartRepo,
			Lessons:        lessonSvc,
			Messenger:      msgsvc.NewConsoleService(logger),
			Logger:         logger,
			Location:       loc,
			PresentKeyword: conf.Attendance.PresentKeyword,
		}),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
