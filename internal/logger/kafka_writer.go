package logger

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/infra/producer"
	"github.com/segmentio/kafka-go"
)

// KafkaLogWriter 把 zerolog 的每一行 log 送到 kafka
// key 為遞增序號, 讓 log 平均分配到各分區
type KafkaLogWriter struct {
	w       producer.Writer
	logID   atomic.Uint64
	timeout time.Duration
}

func NewKafkaLogWriter(w producer.Writer) *KafkaLogWriter {
	return &KafkaLogWriter{w: w, timeout: 5 * time.Second}
}

func (kw *KafkaLogWriter) Write(p []byte) (n int, err error) {
	if kw == nil || kw.w == nil {
		return 0, fmt.Errorf("kafka log writer is not init")
	}

	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, kw.logID.Add(1))

	// zerolog 會重複使用 buffer
	ctx, cancel := context.WithTimeout(context.Background(), kw.timeout)
	defer cancel()
	err = kw.w.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: bytes.Clone(p),
	})
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

func (kw *KafkaLogWriter) Close() error {
	return kw.w.Close()
}
