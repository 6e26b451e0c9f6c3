package config

const (
	// MaxRequestBodyBytes caps JSON request bodies. 1MB is generous for a
	// draft payload with snippets and metadata.
	MaxRequestBodyBytes = 1 << 20

	// MaxSubjectLength is the maximum length for draft subjects.
	// Short and descriptive, same ceiling the email channel imposes.
	MaxSubjectLength = 255

	// MaxNoteLength caps a single note or learning note.
	MaxNoteLength = 10000
)
