package intake

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/aggarwalhardik2005/forensic-ledger-guardian-sub002/internal/domain"
)

// allowedMIMETypes is the fixed intake allow-list. Anything else is rejected
// before the file touches storage or the ledger.
var allowedMIMETypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/jpg":       {},
	"video/mp4":       {},
	"video/mkv":       {},
	"video/webm":      {},
	"application/pdf": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"audio/mpeg": {},
	"audio/wav":  {},
}

func Validate(mimeType string) error {
	if _, ok := allowedMIMETypes[strings.ToLower(strings.TrimSpace(mimeType))]; !ok {
		return domain.ErrInvalidMimeType
	}
	return nil
}

// HashHex digests the untouched original bytes. Always computed before
// encryption so the digest certifies content independent of any key.
func HashHex(plaintext []byte) string {
	sum := sha256.Sum256(plaintext)
	return hex.EncodeToString(sum[:])
}

var (
	crlfQuotes   = regexp.MustCompile(`[\r\n"]`)
	unsafeChars  = regexp.MustCompile(`[/\\<>:;|?*\x00-\x1F]`)
	hasExtension = regexp.MustCompile(`\.[a-zA-Z0-9]{1,8}$`)
)

// SanitizeFilename strips header-injection and path characters from a
// client-supplied name before it is echoed in a Content-Disposition header.
func SanitizeFilename(name string) string {
	clean := crlfQuotes.ReplaceAllString(name, "")
	clean = unsafeChars.ReplaceAllString(clean, "_")
	return strings.TrimSpace(clean)
}

// DownloadFilename picks the attachment name for a retrieval response,
// falling back to the evidence ID with a generic extension.
func DownloadFilename(pinnedName, evidenceID string) string {
	name := SanitizeFilename(pinnedName)
	if name == "" {
		name = SanitizeFilename(evidenceID)
	}
	if !hasExtension.MatchString(name) {
		name += ".bin"
	}
	return name
}
