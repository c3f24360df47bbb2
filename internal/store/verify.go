package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"

	"github.com/dbsmedya/mitobreak/internal/report"
)

// VerificationMethod defines how stored calls are compared to local ones.
type VerificationMethod string

const (
	// MethodCount compares row counts.
	MethodCount VerificationMethod = "count"
	// MethodSHA256 compares a digest of the ordered rows.
	MethodSHA256 VerificationMethod = "sha256"
	// MethodSkip skips verification.
	MethodSkip VerificationMethod = "skip"
)

// VerifyResult holds the outcome of verifying one sample.
type VerifyResult struct {
	Sample       string
	Method       VerificationMethod
	LocalCount   int64
	StoredCount  int64
	LocalHash    string
	StoredHash   string
	Match        bool
	ErrorMessage string
}

// VerifyCalls checks that the stored calls of sample equal calls, compared
// the way SaveCalls stores them.
func (s *Store) VerifyCalls(ctx context.Context, sample string, calls []report.Call, method VerificationMethod) (*VerifyResult, error) {
	if method == "" {
		method = MethodCount
	}
	calls = report.Coalesce(calls)
	result := &VerifyResult{Sample: sample, Method: method, LocalCount: int64(len(calls))}

	switch method {
	case MethodSkip:
		result.Match = true
		return result, nil
	case MethodCount:
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE sample = ?", s.table)
		if err := s.db.QueryRowContext(ctx, query, sample).Scan(&result.StoredCount); err != nil {
			return nil, fmt.Errorf("failed to count stored calls: %w", err)
		}
		result.Match = result.StoredCount == result.LocalCount
	case MethodSHA256:
		stored, n, err := s.storedDigest(ctx, sample)
		if err != nil {
			return nil, err
		}
		result.StoredHash, result.StoredCount = stored, n
		result.LocalHash = CallsDigest(calls)
		result.Match = result.StoredCount == result.LocalCount && result.StoredHash == result.LocalHash
	default:
		return nil, fmt.Errorf("unsupported verification method: %s", method)
	}

	if !result.Match {
		if result.StoredCount != result.LocalCount {
			result.ErrorMessage = fmt.Sprintf("count mismatch: local=%d, stored=%d", result.LocalCount, result.StoredCount)
		} else {
			result.ErrorMessage = fmt.Sprintf("hash mismatch: local=%s, stored=%s", result.LocalHash[:16], result.StoredHash[:16])
		}
		s.logger.Errorw("verification failed", "sample", sample, "reason", result.ErrorMessage)
	}
	return result, nil
}

func (s *Store) storedDigest(ctx context.Context, sample string) (string, int64, error) {
	query := fmt.Sprintf(
		"SELECT start_pos, end_pos, support FROM %s WHERE sample = ? ORDER BY start_pos, end_pos, support DESC", s.table)
	rows, err := s.db.QueryContext(ctx, query, sample)
	if err != nil {
		return "", 0, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	h := sha256.New()
	var n int64
	for rows.Next() {
		var c report.Call
		if err := rows.Scan(&c.Start, &c.End, &c.Count); err != nil {
			return "", 0, fmt.Errorf("failed to scan row: %w", err)
		}
		writeCall(h, c)
		n++
	}
	if err := rows.Err(); err != nil {
		return "", 0, fmt.Errorf("error iterating rows: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// CallsDigest returns the SHA256 of the coalesced calls in breakpoint-table
// order.
func CallsDigest(calls []report.Call) string {
	h := sha256.New()
	for _, c := range report.Coalesce(calls) {
		writeCall(h, c)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// writeCall hashes one row as start=..\x00end=..\x00support=..\n.
func writeCall(h hash.Hash, c report.Call) {
	fmt.Fprintf(h, "start=%d\x00end=%d\x00support=%d\n", c.Start, c.End, c.Count)
}
