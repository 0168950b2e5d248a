package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klauspost/compress/zstd"

	"github.com/FAb114/factusystem-reports/internal/core/id"
	"github.com/FAb114/factusystem-reports/internal/domain/audit"
	"github.com/FAb114/factusystem-reports/pkg/logger"
)

// CompressionAlgo specifies the compression algorithm used for detail payloads.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// auditCompressThreshold: detail payloads above this size are zstd-compressed.
const auditCompressThreshold = 10 * 1024

// AuditStore persists audit entries into sys_audit.
//
// Record is fire-and-forget: the insert runs on its own goroutine with a
// short timeout, and failures are logged, never surfaced. It implements
// audit.Recorder.
type AuditStore struct {
	pool    *pgxpool.Pool
	encoder *zstd.Encoder
}

// NewAuditStore creates a new audit store.
func NewAuditStore(pool *pgxpool.Pool) (*AuditStore, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	return &AuditStore{pool: pool, encoder: encoder}, nil
}

// Record implements audit.Recorder.
func (s *AuditStore) Record(ctx context.Context, e audit.Entry) {
	// Detach from the request: a canceled report generation must not lose
	// its audit entry, and a slow insert must not block the response.
	ctx = context.WithoutCancel(ctx)

	go func() {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := s.insert(ctx, e); err != nil {
			logger.Warn(ctx, "audit insert failed",
				"action", e.Action,
				"module", e.Module,
				"error", err,
			)
		}
	}()
}

func (s *AuditStore) insert(ctx context.Context, e audit.Entry) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}

	var compressed []byte
	algo := CompressionNone
	if len(details) > auditCompressThreshold {
		compressed = s.encoder.EncodeAll(details, nil)
		details = nil
		algo = CompressionZstd
	}

	sql := `
		INSERT INTO sys_audit (
			id, action, module, user_id,
			details, details_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = s.pool.Exec(ctx, sql,
		id.New(), e.Action, e.Module, e.UserID,
		details, compressed, algo, time.Now().UTC(),
	)
	return err
}

// Compile-time check that AuditStore implements audit.Recorder.
var _ audit.Recorder = (*AuditStore)(nil)
