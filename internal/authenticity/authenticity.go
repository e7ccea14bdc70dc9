package authenticity

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/sha3"

	"github.com/primeinsights/proof-engine/internal/adapters"
	apperrors "github.com/primeinsights/proof-engine/internal/errors"
	"github.com/primeinsights/proof-engine/internal/monitoring"
	"github.com/primeinsights/proof-engine/internal/types"
)

// Verifier computes the binary authenticity signal: the submission
// link must hash to the proof key, and the submitted archive must
// match the reference hash the attestation service holds for that key.
type Verifier struct {
	client *adapters.TEEClient
	logger *monitoring.Logger
}

func NewVerifier(client *adapters.TEEClient, logger *monitoring.Logger) *Verifier {
	return &Verifier{client: client, logger: logger}
}

// Verify returns 1 when the local archive hash equals the reference
// hash, 0 when it does not. A link/key mismatch or a missing archive
// is a fatal error, not a zero score.
func (v *Verifier) Verify(ctx context.Context, request types.ProofRequest) (int, error) {
	linkHash := hashString(request.SubmissionLink)
	if linkHash != request.ProofKey {
		return 0, apperrors.NewConfigError(
			fmt.Sprintf("submission link hash %s does not match proof key %s", linkHash, request.ProofKey), nil)
	}

	referenceHash, err := v.client.GetProofHash(ctx, request.ProofKey)
	if err != nil {
		return 0, err
	}
	v.logger.Info("fetched reference data hash", "proof_key", request.ProofKey)

	localHash, err := hashFile(request.InputZipFilepath)
	if err != nil {
		return 0, err
	}
	v.logger.Info("computed local archive hash", "hash", localHash)

	if localHash == referenceHash {
		return 1, nil
	}
	return 0, nil
}

func hashString(value string) string {
	sum := sha3.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", apperrors.NewConfigError(fmt.Sprintf("input archive %s not found", path), err)
	}
	defer f.Close()

	hasher := sha3.New256()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", apperrors.NewInternalError(fmt.Sprintf("hashing %s", path), err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
