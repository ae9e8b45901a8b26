package core

// Category identifies one risk category evaluated by exactly one detector
type Category int

const (
	CategoryContent Category = iota
	CategorySubject
	CategorySender
	CategoryURL
	CategoryAttachment

	categoryCount
)

// String returns the wire name of the category
func (c Category) String() string {
	switch c {
	case CategoryContent:
		return "content"
	case CategorySubject:
		return "subject"
	case CategorySender:
		return "sender"
	case CategoryURL:
		return "url"
	case CategoryAttachment:
		return "attachment"
	default:
		return "unknown"
	}
}

// Finding is the evaluated result of one detector. Exactly one of the
// payload pointers is set, matching the Category.
type Finding struct {
	Category   Category
	Content    *ContentFinding
	Subject    *SubjectFinding
	Sender     *SenderFinding
	URL        *URLFinding
	Attachment *AttachmentFinding
}

// ContentFinding is the body detector output
type ContentFinding struct {
	Probability float64  `json:"probability"`
	Suspicious  bool     `json:"suspicious"`
	Keywords    []string `json:"suspicious_keywords"`
	HasHTML     bool     `json:"has_html"`
	HasImages   bool     `json:"has_images"`
	BodyLength  int      `json:"body_length"`
	WordCount   int      `json:"word_count"`
}

// SubjectFinding is the subject detector output
type SubjectFinding struct {
	Probability          float64  `json:"probability"`
	Suspicious           bool     `json:"suspicious"`
	UppercaseRatio       float64  `json:"uppercase_ratio"`
	Keywords             []string `json:"suspicious_keywords"`
	Length               int      `json:"length"`
	ExcessivePunctuation bool     `json:"excessive_punctuation"`
}

// SenderFinding is the sender detector output
type SenderFinding struct {
	Probability     float64 `json:"probability"`
	Suspicious      bool    `json:"suspicious"`
	Address         string  `json:"address"`
	DisplayName     string  `json:"display_name,omitempty"`
	HasDisplayName  bool    `json:"has_display_name"`
	Valid           bool    `json:"valid"`
	LocalPart       string  `json:"local_part,omitempty"`
	Domain          string  `json:"domain,omitempty"`
	ReplyTo         string  `json:"reply_to,omitempty"`
	ReplyToMismatch bool    `json:"reply_to_mismatch"`
	TrustedDomain   bool    `json:"trusted_domain"`
}

// FlaggedURL is a distinct URL that triggered at least one heuristic rule
type FlaggedURL struct {
	URL     string   `json:"url"`
	Reasons []string `json:"reasons"`
}

// URLFinding is the URL heuristic detector output
type URLFinding struct {
	HasSubjectURLs  bool         `json:"has_subject_urls"`
	HasBodyURLs     bool         `json:"has_body_urls"`
	SubjectURLCount int          `json:"subject_url_count"`
	BodyURLCount    int          `json:"body_url_count"`
	Flagged         []FlaggedURL `json:"flagged_urls"`
}

// AttachmentCategory classifies one attachment by its filename extension
type AttachmentCategory string

const (
	AttachmentExecutable AttachmentCategory = "executable"
	AttachmentScript     AttachmentCategory = "script"
	AttachmentArchive    AttachmentCategory = "archive"
	AttachmentDocument   AttachmentCategory = "document"
	AttachmentOther      AttachmentCategory = "other"
)

// AttachmentFileInfo is the per-file breakdown of the attachment classifier
type AttachmentFileInfo struct {
	Filename            string             `json:"filename"`
	SizeBytes           int64              `json:"size"`
	DeclaredContentType string             `json:"content_type"`
	Extension           string             `json:"extension"`
	Category            AttachmentCategory `json:"category"`
	ContentTypeMismatch bool               `json:"content_type_mismatch"`
}

// AttachmentFinding is the attachment classifier output
type AttachmentFinding struct {
	Count                int                  `json:"count"`
	TotalSizeBytes       int64                `json:"total_size"`
	HasExecutables       bool                 `json:"has_executables"`
	HasScripts           bool                 `json:"has_scripts"`
	HasMismatch          bool                 `json:"has_content_type_mismatch"`
	SuspiciousExtensions []string             `json:"suspicious_extensions"`
	Files                []AttachmentFileInfo `json:"files"`
	DeepScanPerformed    bool                 `json:"deep_scan_performed"`
	DeepScanNote         string               `json:"deep_scan_note,omitempty"`
}
