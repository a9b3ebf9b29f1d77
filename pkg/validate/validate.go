// Package validate holds the checks run on user input before a request is
// sent. Every failure is a validation CLIError naming the offending field.
package validate

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	clierrors "github.com/campuscoders/campus-cli/pkg/errors"
	"github.com/gabriel-vasile/mimetype"
)

const (
	UsernameMinLength = 3
	UsernameMaxLength = 20
	PasswordMinLength = 6
	BioMaxLength      = 150

	// MaxMediaSize is the largest image accepted for posts and avatars.
	MaxMediaSize = 5 * 1024 * 1024
)

// AllowedMediaTypes are the image types the backend accepts.
var AllowedMediaTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Username accepts 3 to 20 letters, digits or underscores.
func Username(username string) error {
	n := utf8.RuneCountInString(username)
	if n < UsernameMinLength || n > UsernameMaxLength {
		return clierrors.ValidationError("username",
			fmt.Sprintf("Username must be between %d and %d characters", UsernameMinLength, UsernameMaxLength))
	}
	if !usernamePattern.MatchString(username) {
		return clierrors.ValidationError("username", "Username can only contain letters, numbers, and underscores")
	}
	return nil
}

func Password(password string) error {
	if utf8.RuneCountInString(password) < PasswordMinLength {
		return clierrors.ValidationError("password",
			fmt.Sprintf("Password must be at least %d characters long", PasswordMinLength))
	}
	return nil
}

func Email(email string) error {
	if !emailPattern.MatchString(email) {
		return clierrors.ValidationError("email", "Please enter a valid email address")
	}
	return nil
}

// Profile checks the onboarding form. It reports every problem at once.
func Profile(gender, course, year, bio string) error {
	var errs []error
	if strings.TrimSpace(gender) == "" {
		errs = append(errs, clierrors.ValidationError("gender", "Gender is required"))
	}
	if strings.TrimSpace(course) == "" {
		errs = append(errs, clierrors.ValidationError("course", "Course is required"))
	}
	if strings.TrimSpace(year) == "" {
		errs = append(errs, clierrors.ValidationError("year", "Year is required"))
	}
	if utf8.RuneCountInString(bio) > BioMaxLength {
		errs = append(errs, clierrors.ValidationError("bio",
			fmt.Sprintf("Bio must be less than %d characters", BioMaxLength)))
	}
	return errors.Join(errs...)
}

// Comment rejects blank comments.
func Comment(text string) error {
	if strings.TrimSpace(text) == "" {
		return clierrors.ValidationError("text", "Comment cannot be empty")
	}
	return nil
}

// Post requires a caption or at least one image.
func Post(caption string, media []string) error {
	if strings.TrimSpace(caption) == "" && len(media) == 0 {
		return clierrors.ValidationError("post", "Add caption or images")
	}
	for _, path := range media {
		if err := MediaFile(path); err != nil {
			return err
		}
	}
	return nil
}

// MediaFile checks that path is an image of an allowed type within the size
// limit. The type is sniffed from the content, not the extension.
func MediaFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return clierrors.FileNotFoundError(path)
		}
		return clierrors.NewCLIError(clierrors.ErrorTypeValidation, fmt.Sprintf("cannot read %s", path), err)
	}
	if info.IsDir() {
		return clierrors.ValidationError("file", fmt.Sprintf("%s is a directory", path))
	}
	if info.Size() > MaxMediaSize {
		return clierrors.ValidationError("file",
			fmt.Sprintf("File size must be less than %dMB", MaxMediaSize/1024/1024))
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return clierrors.NewCLIError(clierrors.ErrorTypeValidation, fmt.Sprintf("cannot read %s", path), err)
	}
	for _, allowed := range AllowedMediaTypes {
		if mtype.Is(allowed) {
			return nil
		}
	}
	return clierrors.ValidationError("file",
		fmt.Sprintf("File type must be: %s", strings.Join(AllowedMediaTypes, ", ")))
}
