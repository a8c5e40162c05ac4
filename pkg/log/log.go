// Package log 基于 zerolog 的全局日志，控制台始终输出，可选 lumberjack 文件轮转.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/sujaykar/echovault/pkg/configs"
)

var (
	logger zerolog.Logger
	once   sync.Once
)

// Logger 返回全局 logger，首次调用时按配置初始化.
func Logger() *zerolog.Logger {
	once.Do(setup)

	return &logger
}

func setup() {
	cfg := configs.GetConfig()

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level))
	if err != nil {
		fmt.Fprintf(os.Stderr, "unknown log level %q, using info\n", cfg.Log.Level)

		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)

	// 控制台输出始终开启，时间戳用 Kitchen 格式便于人读
	writers := []io.Writer{zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
		w.TimeFormat = time.Kitchen
	})}

	if cfg.Log.EnableFile {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.Log.FilePath,
			MaxSize:    cfg.Log.MaxSize,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAge,
			Compress:   cfg.Log.Compress,
		})
	}

	builder := zerolog.New(io.MultiWriter(writers...)).With()

	if cfg.Server.Debug {
		builder = builder.Caller().Stack()

		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	logger = builder.Timestamp().Logger()
	zlog.Logger = logger
}

// GinWriter 把 gin 的文本日志行转发为 zerolog 事件.
type GinWriter struct {
	logger *zerolog.Logger
	level  zerolog.Level
}

// NewGinWriter 构造按固定级别转发的 writer.
func NewGinWriter(logger *zerolog.Logger, level zerolog.Level) *GinWriter {
	return &GinWriter{logger: logger, level: level}
}

func (w *GinWriter) Write(p []byte) (int, error) {
	w.logger.WithLevel(w.level).Msg(strings.TrimSpace(string(p)))

	return len(p), nil
}
