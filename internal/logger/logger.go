package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Options struct {
	Module string
	Level  string
	Pretty bool
	// 額外輸出, 例如 KafkaLogWriter
	Writers []io.Writer
}

// ParseLevel 無法解析時使用 info
func ParseLevel(raw string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil || raw == "" {
		return zerolog.InfoLevel
	}
	return level
}

// SetLevel 等級設在全域, 設定檔重新讀取時可以直接調整
func SetLevel(raw string) zerolog.Level {
	level := ParseLevel(raw)
	zerolog.SetGlobalLevel(level)
	return level
}

// New stdout 為主要輸出, LOG_PRETTY 時改用 ConsoleWriter
func New(opts Options) *zerolog.Logger {
	SetLevel(opts.Level)

	var out io.Writer = os.Stdout
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	if len(opts.Writers) > 0 {
		out = zerolog.MultiLevelWriter(append([]io.Writer{out}, opts.Writers...)...)
	}

	ctx := zerolog.New(out).With().Timestamp()
	if opts.Module != "" {
		ctx = ctx.Str("module", opts.Module)
	}
	logger := ctx.Logger()
	return &logger
}
