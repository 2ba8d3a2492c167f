package settings

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to errors returned by this package.
const (
	ErrorCodeBadInput   = "SETTINGS_BAD_INPUT"
	ErrorCodeNotFound   = "SETTINGS_NOT_FOUND"
	ErrorCodeRender     = "SETTINGS_RENDER"
	ErrorCodePersist    = "SETTINGS_PERSIST"
	ErrorCodeNotify     = "SETTINGS_NOTIFY"
	ErrorCodeDuplicate  = "SETTINGS_DUPLICATE_TAB"
	ErrorCodeDefinition = "SETTINGS_DEFINITION"
)

func badInput(message string, metadata map[string]any) error {
	err := goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorCodeBadInput)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func notFound(message string, metadata map[string]any) error {
	err := goerrors.New(message, goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode(ErrorCodeNotFound)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func duplicateTab(id string) error {
	return goerrors.New("settings tab already registered", goerrors.CategoryConflict).
		WithCode(http.StatusConflict).
		WithTextCode(ErrorCodeDuplicate).
		WithMetadata(map[string]any{"tab": id})
}

func wrapOperation(source error, message, textCode string, metadata map[string]any) error {
	err := goerrors.Wrap(source, goerrors.CategoryOperation, message).
		WithCode(http.StatusInternalServerError).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// keepRich leaves errors that already carry a category untouched so
// validation failures from the saver reach the host unchanged.
func keepRich(source error, message, textCode string, metadata map[string]any) error {
	var richErr *goerrors.Error
	if goerrors.As(source, &richErr) {
		return source
	}
	return wrapOperation(source, message, textCode, metadata)
}
