package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/skinior/skinior-api/internal/logger"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = time.Second

// gormLogger sends GORM output through the service logger so SQL warnings
// share the structured format of everything else.
type gormLogger struct {
	log           *logger.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func newGormLogger(log *logger.Logger) *gormLogger {
	if log == nil {
		log = logger.Nop()
	}
	return &gormLogger{
		log:           log.With("component", "gorm"),
		level:         gormlogger.Warn,
		slowThreshold: slowQueryThreshold,
	}
}

func (g *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

func (g *gormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if g.level >= gormlogger.Info {
		g.log.Info(fmt.Sprintf(msg, data...))
	}
}

func (g *gormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if g.level >= gormlogger.Warn {
		g.log.Warn(fmt.Sprintf(msg, data...))
	}
}

func (g *gormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if g.level >= gormlogger.Error {
		g.log.Error(fmt.Sprintf(msg, data...))
	}
}

// Trace skips record-not-found errors; repositories map those to their own sentinels.
func (g *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && g.level >= gormlogger.Error && !errors.Is(err, gormlogger.ErrRecordNotFound):
		query, rows := fc()
		g.log.Error("sql query failed", "error", err, "elapsed_ms", elapsed.Milliseconds(), "rows", rows, "sql", query)
	case g.slowThreshold > 0 && elapsed > g.slowThreshold && g.level >= gormlogger.Warn:
		query, rows := fc()
		g.log.Warn("slow sql query", "elapsed_ms", elapsed.Milliseconds(), "threshold_ms", g.slowThreshold.Milliseconds(), "rows", rows, "sql", query)
	case g.level >= gormlogger.Info:
		query, rows := fc()
		g.log.Debug("sql query", "elapsed_ms", elapsed.Milliseconds(), "rows", rows, "sql", query)
	}
}
