package types

// RawRow is a single source record: CSV header field name mapped to
// its raw string value.
type RawRow map[string]string

// ScorePair carries the two encoded signals for one category, both in
// [0,1]. MetadataScore is computed from structural statistics of the
// rows; ValidationScore from the external semantic evaluation.
type ScorePair struct {
	MetadataScore   float64 `json:"metadata_score"`
	ValidationScore float64 `json:"validation_score"`
}

// ProofRequest represents the request structure for the proof endpoint
type ProofRequest struct {
	InputDir         string `json:"input_dir" binding:"required"`
	InputZipFilepath string `json:"input_zip_filepath"`
	ProofKey         string `json:"proof_key" binding:"required"`
	SubmissionLink   string `json:"submission_link" binding:"required"`
	UserID           string `json:"user_id" binding:"required"`
}

// ProofResponse is the attestation object returned to the caller.
// Metadata carries the packed category score record consumed by the
// on-chain verifier.
type ProofResponse struct {
	DlpID        int                  `json:"dlp_id"`
	Authenticity int                  `json:"authenticity"`
	Ownership    int                  `json:"ownership"`
	Uniqueness   int                  `json:"uniqueness"`
	Quality      map[string]ScorePair `json:"quality"`
	Metadata     string               `json:"metadata"`
}
