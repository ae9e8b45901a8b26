package core

import (
	"context"
	"mime"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// extensionCategories maps filename extensions to attachment categories
var extensionCategories = map[string]AttachmentCategory{
	".exe": AttachmentExecutable,
	".bat": AttachmentExecutable,
	".cmd": AttachmentExecutable,
	".com": AttachmentExecutable,
	".msi": AttachmentExecutable,
	".pif": AttachmentExecutable,
	".scr": AttachmentExecutable,
	".dll": AttachmentExecutable,

	".js":  AttachmentScript,
	".vbs": AttachmentScript,
	".ps1": AttachmentScript,
	".sh":  AttachmentScript,
	".py":  AttachmentScript,
	".wsf": AttachmentScript,
	".hta": AttachmentScript,

	".zip": AttachmentArchive,
	".rar": AttachmentArchive,
	".7z":  AttachmentArchive,
	".tar": AttachmentArchive,
	".gz":  AttachmentArchive,
	".iso": AttachmentArchive,

	".pdf":  AttachmentDocument,
	".doc":  AttachmentDocument,
	".docx": AttachmentDocument,
	".xls":  AttachmentDocument,
	".xlsx": AttachmentDocument,
	".ppt":  AttachmentDocument,
	".pptx": AttachmentDocument,
	".txt":  AttachmentDocument,
	".rtf":  AttachmentDocument,
	".odt":  AttachmentDocument,
}

// mimeExtensions maps a declared MIME type to the filename extensions it
// conventionally carries. A fixed table keeps mismatch detection
// deterministic across hosts (the system mime database varies).
var mimeExtensions = map[string][]string{
	"application/pdf":          {".pdf"},
	"application/x-msdownload": {".exe", ".dll"},
	"application/x-msdos-program": {".exe", ".com"},
	"application/x-ms-installer":  {".msi"},
	"application/zip":             {".zip"},
	"application/x-rar-compressed": {".rar"},
	"application/x-7z-compressed":  {".7z"},
	"application/x-tar":            {".tar"},
	"application/gzip":             {".gz"},
	"application/msword":           {".doc"},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {".docx"},
	"application/vnd.ms-excel": {".xls"},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {".xlsx"},
	"application/vnd.ms-powerpoint": {".ppt"},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {".pptx"},
	"application/javascript": {".js"},
	"text/javascript":        {".js"},
	"text/plain":             {".txt"},
	"text/rtf":               {".rtf"},
	"image/jpeg":             {".jpg", ".jpeg"},
	"image/png":              {".png"},
	"image/gif":              {".gif"},
}

// AttachmentDetector classifies attachments from metadata alone. An
// optional deep scanner enriches the finding when configured; its absence
// never blocks metadata classification.
type AttachmentDetector struct {
	scanner AttachmentScanner
	logger  *zap.Logger
}

// NewAttachmentDetector creates a new attachment classifier
func NewAttachmentDetector(scanner AttachmentScanner, logger *zap.Logger) *AttachmentDetector {
	return &AttachmentDetector{
		scanner: scanner,
		logger:  logger,
	}
}

// Category implements Detector
func (d *AttachmentDetector) Category() Category {
	return CategoryAttachment
}

// Available implements Detector. Metadata classification has no external
// dependency, so the detector always runs.
func (d *AttachmentDetector) Available() error {
	return nil
}

// Evaluate implements Detector
func (d *AttachmentDetector) Evaluate(ctx context.Context, email *Email) (*Finding, error) {
	finding := &AttachmentFinding{
		Count:                len(email.Attachments),
		SuspiciousExtensions: []string{},
		Files:                make([]AttachmentFileInfo, 0, len(email.Attachments)),
	}

	suspicious := make(map[string]struct{})

	for _, att := range email.Attachments {
		ext := attachmentExtension(att.Filename)
		category := categoryForExtension(ext)

		info := AttachmentFileInfo{
			Filename:            att.Filename,
			SizeBytes:           att.SizeBytes,
			DeclaredContentType: att.DeclaredContentType,
			Extension:           ext,
			Category:            category,
			ContentTypeMismatch: contentTypeMismatch(ext, att.DeclaredContentType),
		}

		finding.TotalSizeBytes += att.SizeBytes
		switch category {
		case AttachmentExecutable:
			finding.HasExecutables = true
			suspicious[ext] = struct{}{}
		case AttachmentScript:
			finding.HasScripts = true
			suspicious[ext] = struct{}{}
		}
		if info.ContentTypeMismatch {
			finding.HasMismatch = true
			if ext != "" {
				suspicious[ext] = struct{}{}
			}
		}

		finding.Files = append(finding.Files, info)
	}

	for ext := range suspicious {
		finding.SuspiciousExtensions = append(finding.SuspiciousExtensions, ext)
	}
	sort.Strings(finding.SuspiciousExtensions)

	d.deepScan(ctx, email, finding)

	return &Finding{Category: CategoryAttachment, Attachment: finding}, nil
}

// deepScan runs the optional scanning capability over each attachment.
// Scanner failures degrade the note, never the finding.
func (d *AttachmentDetector) deepScan(ctx context.Context, email *Email, finding *AttachmentFinding) {
	if d.scanner == nil {
		finding.DeepScanNote = "capability not configured"
		return
	}

	for i := range email.Attachments {
		verdict, err := d.scanner.Scan(ctx, &email.Attachments[i])
		if err != nil {
			d.logger.Warn("Deep attachment scan failed",
				zap.String("filename", email.Attachments[i].Filename),
				zap.Error(err))
			finding.DeepScanNote = "scan failed: " + err.Error()
			return
		}
		if verdict.Malicious {
			finding.HasExecutables = true
			finding.DeepScanNote = verdict.Detail
		}
	}
	finding.DeepScanPerformed = true
}

// attachmentExtension returns the lowercased last dot segment of filename
func attachmentExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

func categoryForExtension(ext string) AttachmentCategory {
	if cat, ok := extensionCategories[ext]; ok {
		return cat
	}
	return AttachmentOther
}

// contentTypeMismatch reports whether the declared MIME type conventionally
// maps to a different extension than the filename carries. Unknown types
// and extensionless filenames never mismatch.
func contentTypeMismatch(ext, declaredType string) bool {
	if ext == "" || declaredType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(declaredType)
	if err != nil {
		return false
	}
	expected, ok := mimeExtensions[strings.ToLower(mediaType)]
	if !ok {
		return false
	}
	for _, e := range expected {
		if e == ext {
			return false
		}
	}
	return true
}
