package config

const (
	// MaxTitleLength is the maximum length for document titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxTitleLength = 255

	// MaxBulletContentLength caps a single bullet's HTML content.
	MaxBulletContentLength = 64 << 10

	// MaxUploadSize is the largest media file accepted for upload.
	MaxUploadSize = 50 << 20

	// MaxImportSize is the largest OPML or Markdown file accepted for import.
	MaxImportSize = 5 << 20

	// MaxOperationsPerRequest bounds one batch of outline operations.
	MaxOperationsPerRequest = 500
)

// MaxMediaDimension bounds the width and height of a displayed attachment.
const MaxMediaDimension = 4096
