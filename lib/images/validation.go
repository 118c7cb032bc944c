package images

import (
	"fmt"
	"regexp"
)

const maxPropertyKeyLen = 255

var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// reservedIDs are path segments the registry routes under /images itself.
var reservedIDs = map[string]struct{}{
	"detail": {},
}

// ValidateID checks an id that addresses an existing image or is supplied on create.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	if IsReservedID(id) {
		return fmt.Errorf("%w: %q", ErrReservedID, id)
	}
	return nil
}

// IsReservedID reports whether id would address a registry route instead of an image.
func IsReservedID(id string) bool {
	_, ok := reservedIDs[id]
	return ok
}

// Validate checks the caller-controlled fields of a record before it is sent
// to the registry. Empty ID and Status are allowed: the service fills them in.
func Validate(img *Image) error {
	if img.ID != "" {
		if err := ValidateID(img.ID); err != nil {
			return err
		}
	}
	return validateFields(img.Status, img.SizeBytes, img.Properties, img.Source)
}

// ValidateUpdate checks the fields present in an update.
func ValidateUpdate(u *Update) error {
	var size int64
	if u.SizeBytes != nil {
		size = *u.SizeBytes
	}
	var src string
	if u.Source != nil {
		src = *u.Source
	}
	return validateFields(u.Status, size, u.Properties, src)
}

func validateFields(status Status, size int64, props map[string]string, source string) error {
	if status != "" && !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if size < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	for key := range props {
		if key == "" || len(key) > maxPropertyKeyLen {
			return fmt.Errorf("%w: key %q", ErrInvalidProperty, key)
		}
	}
	if _, err := NormalizeSource(source); err != nil {
		return err
	}
	return nil
}

// Normalize returns a copy of img with Source in canonical form and an empty
// Properties map replaced by nil. The record must already have passed Validate.
func Normalize(img *Image) (*Image, error) {
	out := img.Clone()
	src, err := NormalizeSource(img.Source)
	if err != nil {
		return nil, err
	}
	out.Source = src
	if len(out.Properties) == 0 {
		out.Properties = nil
	}
	return out, nil
}

// NormalizeUpdate is Normalize for updates.
func NormalizeUpdate(u *Update) (*Update, error) {
	out := u.Clone()
	if u.Source != nil {
		src, err := NormalizeSource(*u.Source)
		if err != nil {
			return nil, err
		}
		out.Source = &src
	}
	if len(out.Properties) == 0 {
		out.Properties = nil
	}
	return out, nil
}
