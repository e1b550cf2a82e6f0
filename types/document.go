package types

// DocumentKind selects which document the generator produces.
type DocumentKind string

const (
	DocumentCoverLetter DocumentKind = "cover_letter"
	DocumentColdMessage DocumentKind = "cold_message"
)

// Tone adjusts the wording of generated documents.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
	ToneEnthusiastic Tone = "enthusiastic"
)

// DocumentRequest holds the caller-supplied generation options.
type DocumentRequest struct {
	JobID             string
	Kind              DocumentKind
	Tone              Tone
	Language          string
	AdditionalContext string
}

// GenerationMetadata describes how a document was produced.
type GenerationMetadata struct {
	TokensUsed       int    `json:"tokens_used"`
	Model            string `json:"model"`
	GenerationTimeMS int    `json:"generation_time_ms"`
	Tone             Tone   `json:"tone"`
	Language         string `json:"language"`
}

// GeneratedDocument is the generator output.
type GeneratedDocument struct {
	Kind     DocumentKind       `json:"kind"`
	Content  string             `json:"content"`
	Metadata GenerationMetadata `json:"metadata"`
	// ApplicationID is set when the content was stored on the matching application.
	ApplicationID string `json:"application_id,omitempty"`
}
