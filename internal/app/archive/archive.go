/*
Package archive stores conversation transcripts before their source rows are
purged. Deletion is fail-closed: when the sink rejects a transcript the
caller must keep the rows.
*/
package archive

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"teamchat/internal/configs"
)

// Sink is a write-once transcript store. Put returns the location of the
// stored object for audit logging.
type Sink interface {
	Put(ctx context.Context, key string, body io.Reader) (string, error)
}

// NewSink picks the object store when one is configured and falls back to
// the local filesystem otherwise. Development runs without S3; every other
// environment requires it at config load time.
func NewSink(ctx context.Context, cfg configs.AppConfig, logger zerolog.Logger) (Sink, error) {
	if cfg.S3Configured() {
		return NewS3Sink(ctx, cfg)
	}
	logger.Warn().Str("dir", cfg.ArchiveDir).Msg("object store not configured, archiving transcripts to local disk")
	return NewLocalSink(cfg.ArchiveDir), nil
}

// TranscriptKey builds the object key for one archived conversation.
func TranscriptKey(prefix, kind, conversationID string, at time.Time) string {
	return fmt.Sprintf("%s/%s_%s_%s.txt", prefix, kind, conversationID, at.UTC().Format("20060102T150405Z"))
}
