package encoding

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/primeinsights/proof-engine/internal/errors"
	"github.com/primeinsights/proof-engine/internal/types"
)

// The score record is a fixed-order hex string: one byte per score,
// all metadata bytes first, then all validation bytes, each rendered
// as two lowercase hex characters. For the 8 recognized categories
// that is 32 characters. The format is consumed on-chain; its shape
// must not change.

// Quantize maps a [0,1] score onto a single byte. Out-of-range inputs
// are clamped rather than rejected.
func Quantize(score float64) int {
	q := int(math.Floor(score * 255))
	if q < 0 {
		return 0
	}
	if q > 255 {
		return 255
	}
	return q
}

// Encode packs ordered score pairs into the hex record.
func Encode(pairs []types.ScorePair) (string, error) {
	metadata := make([]int, len(pairs))
	validation := make([]int, len(pairs))
	for i, pair := range pairs {
		metadata[i] = Quantize(pair.MetadataScore)
		validation[i] = Quantize(pair.ValidationScore)
	}

	packedMetadata, err := PackBytes(metadata)
	if err != nil {
		return "", err
	}
	packedValidation, err := PackBytes(validation)
	if err != nil {
		return "", err
	}
	if len(packedMetadata) != len(packedValidation) {
		return "", apperrors.NewCodecError(
			fmt.Sprintf("block length mismatch: metadata %d chars, validation %d chars",
				len(packedMetadata), len(packedValidation)))
	}
	return packedMetadata + packedValidation, nil
}

// PackBytes renders byte values as contiguous lowercase hex pairs.
func PackBytes(values []int) (string, error) {
	var sb strings.Builder
	sb.Grow(len(values) * 2)
	for _, v := range values {
		if v < 0 || v > 255 {
			return "", apperrors.NewCodecError(fmt.Sprintf("value %d out of byte range", v))
		}
		fmt.Fprintf(&sb, "%02x", v)
	}
	return sb.String(), nil
}

// Decode unpacks a hex record back into score pairs. Decoding is lossy
// with respect to absence: a category that was never scored and a
// category that scored zero both come back as (0, 0).
func Decode(packed string) ([]types.ScorePair, error) {
	if len(packed)%4 != 0 {
		return nil, apperrors.NewCodecError(
			fmt.Sprintf("record length %d is not a multiple of 4", len(packed)))
	}

	half := len(packed) / 2
	metadata, err := unpackBytes(packed[:half])
	if err != nil {
		return nil, err
	}
	validation, err := unpackBytes(packed[half:])
	if err != nil {
		return nil, err
	}

	pairs := make([]types.ScorePair, len(metadata))
	for i := range pairs {
		pairs[i] = types.ScorePair{
			MetadataScore:   float64(metadata[i]) / 255,
			ValidationScore: float64(validation[i]) / 255,
		}
	}
	return pairs, nil
}

func unpackBytes(packed string) ([]int, error) {
	values := make([]int, 0, len(packed)/2)
	for i := 0; i+2 <= len(packed); i += 2 {
		v, err := strconv.ParseUint(packed[i:i+2], 16, 8)
		if err != nil {
			return nil, apperrors.NewCodecError(
				fmt.Sprintf("invalid hex pair %q at offset %d: %v", packed[i:i+2], i, err))
		}
		values = append(values, int(v))
	}
	return values, nil
}
