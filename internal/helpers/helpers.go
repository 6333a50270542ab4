package helpers

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const PackageFolder = "packages"

func IsPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLower := regexp.MustCompile(`[a-z]`).MatchString(password)
	hasUpper := regexp.MustCompile(`[A-Z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`\d`).MatchString(password)
	hasSpecial := regexp.MustCompile(`[@$!%*?&]`).MatchString(password)
	return hasLower && hasUpper && hasNumber && hasSpecial
}

// GenerateResetToken returns the raw token (mailed to the user, seen exactly
// once) and its sha256 hex (the only form that is persisted).
func GenerateResetToken() (raw string, hashed string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate reset token: %v", err)
	}
	raw = hex.EncodeToString(buf)
	return raw, HashResetToken(raw), nil
}

// HashResetToken hashes a presented raw token for lookup. Raw tokens are
// never compared or stored directly.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// MaskEmail hides most of the local part, e.g. "jo****@example.com". Short
// local parts keep fewer characters; at least one is always masked.
func MaskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return email
	}
	keep := 2
	if keep >= at {
		keep = at - 1
	}
	return email[:keep] + "****" + email[at:]
}

func UploadImages(ctx context.Context, cld *cloudinary.Cloudinary, imageRefs []string, folder string) ([]string, error) {
	var urls []string
	for _, ref := range imageRefs {
		if strings.TrimSpace(ref) == "" {
			continue
		}
		uploadResult, err := cld.Upload.Upload(ctx, ref, uploader.UploadParams{
			Folder: folder,
			Tags:   []string{"tripora"},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to upload image %s: %v", ref, err)
		}
		urls = append(urls, uploadResult.SecureURL)
	}
	return urls, nil
}
