package domain

// FileType represents the allowed file types for ingestion.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypePNG FileType = "png"
	FileTypeJPG FileType = "jpg"
)

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"png":  FileTypePNG,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
}

// ContentTypes maps FileType to its MIME content type.
var ContentTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypePNG: "image/png",
	FileTypeJPG: "image/jpeg",
}
